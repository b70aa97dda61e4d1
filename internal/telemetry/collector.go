package telemetry

import "time"

// Delivery is one star dropped into the chute by the claw.
type Delivery struct {
	Tick       uint64  `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time"`
	Round      int     `csv:"round"`
	Prize      string  `csv:"prize"`
	Score      int     `csv:"score"`
}

// RoundRecord is one coin's worth of play: drop, grab attempt, return.
type RoundRecord struct {
	Round       int     `csv:"round"`
	StartTick   uint64  `csv:"start_tick"`
	EndTick     uint64  `csv:"end_tick"`
	DurationSec float64 `csv:"duration_sec"`
	Target      string  `csv:"target"`
	Grabbed     string  `csv:"grabbed"`
	Delivered   bool    `csv:"delivered"`
	TimedOut    bool    `csv:"timed_out"`
	StarsInPlay int     `csv:"stars_in_play"`
	CoinsLeft   int     `csv:"coins_left"`
}

// WorldState is what the caller reads off the world when a window closes.
type WorldState struct {
	StarsInPlay int
	Bodies      int
	Sleeping    int
	Score       int
	ClawState   string
}

// Collector accumulates per-tick samples and events within a window of
// ticks and produces WindowStats.
type Collector struct {
	windowTicks uint64
	dt          float32

	windowStartTick uint64

	kineticEnergy []float64
	tickMs        []float64

	grabs          int
	deliveries     int
	prizesOut      int
	candiesEjected int
}

// NewCollector creates a collector flushing every windowTicks ticks of dt
// seconds each.
func NewCollector(windowTicks int, dt float32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks:   uint64(windowTicks),
		dt:            dt,
		kineticEnergy: make([]float64, 0, windowTicks),
		tickMs:        make([]float64, 0, windowTicks),
	}
}

// Sample records one tick.
func (c *Collector) Sample(kineticEnergy float64, tickDuration time.Duration) {
	c.kineticEnergy = append(c.kineticEnergy, kineticEnergy)
	c.tickMs = append(c.tickMs, float64(tickDuration.Microseconds())/1000)
}

func (c *Collector) RecordGrab() {
	c.grabs++
}

func (c *Collector) RecordDelivery() {
	c.deliveries++
}

// RecordPrizeOut records a star leaving the cabinet through the chute.
func (c *Collector) RecordPrizeOut() {
	c.prizesOut++
}

func (c *Collector) RecordCandyEjected() {
	c.candiesEjected++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets the counters for the next window.
func (c *Collector) Flush(currentTick uint64, state WorldState) WindowStats {
	ke := Summarize(c.kineticEnergy)
	tick := Summarize(c.tickMs)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		StarsInPlay: state.StarsInPlay,
		Bodies:      state.Bodies,
		Sleeping:    state.Sleeping,
		Score:       state.Score,
		ClawState:   state.ClawState,

		Grabs:          c.grabs,
		Deliveries:     c.deliveries,
		PrizesOut:      c.prizesOut,
		CandiesEjected: c.candiesEjected,

		KEMean: ke.Mean,
		KEStd:  ke.StdDev,
		KEP90:  ke.P90,
		KEMax:  ke.Max,

		TickMsMean: tick.Mean,
		TickMsP90:  tick.P90,
	}

	c.windowStartTick = currentTick
	c.kineticEnergy = c.kineticEnergy[:0]
	c.tickMs = c.tickMs[:0]
	c.grabs = 0
	c.deliveries = 0
	c.prizesOut = 0
	c.candiesEjected = 0

	return stats
}

func (c *Collector) WindowTicks() uint64 {
	return c.windowTicks
}

// SimTime converts a tick count to simulated seconds.
func (c *Collector) SimTime(tick uint64) float64 {
	return float64(tick) * float64(c.dt)
}
