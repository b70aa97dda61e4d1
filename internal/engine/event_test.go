package engine

import "testing"

func TestEventInvokeOrder(t *testing.T) {
	var e EventWithArg[string]
	var got []string
	e.AddListener(func(s string) { got = append(got, "a:"+s) })
	e.AddListener(nil)
	e.AddListener(func(s string) { got = append(got, "b:"+s) })

	if e.Len() != 2 {
		t.Fatalf("nil listener should be ignored, count = %d", e.Len())
	}

	e.Invoke("delivered")
	if len(got) != 2 || got[0] != "a:delivered" || got[1] != "b:delivered" {
		t.Errorf("unexpected payloads %v", got)
	}

	e.Clear()
	e.Invoke("collected")
	if len(got) != 2 {
		t.Error("cleared event should not call listeners")
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	c.Advance(50)
	c.AdvanceSeconds(0.5)

	if got := c.NowMillis(); got != 650 {
		t.Errorf("NowMillis = %v, want 650", got)
	}

	c.Set(0)
	if c.NowMillis() != 0 {
		t.Error("Set should overwrite the current time")
	}
}
