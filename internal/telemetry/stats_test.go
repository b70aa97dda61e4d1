package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want Summary
	}{
		{"empty", nil, Summary{}},
		{"single", []float64{3}, Summary{Count: 1, Mean: 3, P50: 3, P90: 3, Max: 3}},
		{"unsorted", []float64{5, 1, 4, 2, 3}, Summary{Count: 5, Mean: 3, StdDev: math.Sqrt(2.5), P50: 3, P90: 5, Max: 5}},
		{"ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, Summary{Count: 10, Mean: 5.5, StdDev: math.Sqrt(82.5 / 9), P50: 5, P90: 9, Max: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.in)
			if got.Count != tt.want.Count {
				t.Fatalf("count = %d, want %d", got.Count, tt.want.Count)
			}
			check := func(field string, got, want float64) {
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			check("mean", got.Mean, tt.want.Mean)
			check("std", got.StdDev, tt.want.StdDev)
			check("p50", got.P50, tt.want.P50)
			check("p90", got.P90, tt.want.P90)
			check("max", got.Max, tt.want.Max)
		})
	}
}

func TestSummarizeLeavesInputAlone(t *testing.T) {
	in := []float64{3, 1, 2}
	Summarize(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Errorf("input reordered: %v", in)
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(4, 0.5)

	for tick := uint64(1); tick <= 3; tick++ {
		c.Sample(float64(tick), time.Millisecond)
		if c.ShouldFlush(tick) {
			t.Fatalf("flushed early at tick %d", tick)
		}
	}
	c.Sample(4, 3*time.Millisecond)
	c.RecordGrab()
	c.RecordDelivery()
	c.RecordPrizeOut()
	c.RecordCandyEjected()
	c.RecordCandyEjected()
	if !c.ShouldFlush(4) {
		t.Fatal("window of 4 ticks should flush at tick 4")
	}

	stats := c.Flush(4, WorldState{StarsInPlay: 19, Bodies: 38, Sleeping: 10, Score: 1, ClawState: "MANUAL_HORIZONTAL"})
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 4 || stats.SimTimeSec != 2 {
		t.Errorf("window = %d..%d at %vs", stats.WindowStartTick, stats.WindowEndTick, stats.SimTimeSec)
	}
	if stats.Grabs != 1 || stats.Deliveries != 1 || stats.PrizesOut != 1 || stats.CandiesEjected != 2 {
		t.Errorf("event counts = %+v", stats)
	}
	if stats.KEMean != 2.5 || stats.KEMax != 4 {
		t.Errorf("ke mean %v max %v", stats.KEMean, stats.KEMax)
	}
	if stats.TickMsMean != 1.5 {
		t.Errorf("tick ms mean = %v, want 1.5", stats.TickMsMean)
	}
	if stats.StarsInPlay != 19 || stats.ClawState != "MANUAL_HORIZONTAL" {
		t.Errorf("world state not carried: %+v", stats)
	}

	if c.ShouldFlush(7) {
		t.Error("next window should start at tick 4")
	}
	next := c.Flush(8, WorldState{})
	if next.WindowStartTick != 4 || next.Grabs != 0 || next.KEMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestNewCollectorClampsWindow(t *testing.T) {
	if got := NewCollector(0, 1).WindowTicks(); got != 1 {
		t.Errorf("window ticks = %d, want 1", got)
	}
}
