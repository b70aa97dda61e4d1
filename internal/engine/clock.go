package engine

import "time"

// Clock reports wall-clock time in milliseconds. Animation timers and the
// clean-release timeout read it instead of the simulation delta.
type Clock interface {
	NowMillis() float64
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) NowMillis() float64 {
	return float64(time.Since(c.start).Microseconds()) / 1000.0
}

// ManualClock only moves when advanced. Headless runs advance it by the
// frame duration so timers keep their real-time pacing at any speed.
type ManualClock struct {
	now float64
}

func NewManualClock(startMillis float64) *ManualClock {
	return &ManualClock{now: startMillis}
}

func (c *ManualClock) NowMillis() float64 {
	return c.now
}

func (c *ManualClock) Advance(ms float64) {
	c.now += ms
}

// AdvanceSeconds is a convenience for advancing by a simulation step.
func (c *ManualClock) AdvanceSeconds(s float32) {
	c.now += float64(s) * 1000.0
}

func (c *ManualClock) Set(ms float64) {
	c.now = ms
}
