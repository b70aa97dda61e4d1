package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clawmachine/internal/claw"
	"clawmachine/internal/components"
	"clawmachine/internal/config"
	"clawmachine/internal/engine"
	"clawmachine/internal/telemetry"
	"clawmachine/internal/world"
)

// Options configures a headless run.
type Options struct {
	Rounds    int
	MaxTicks  int // 0 = until the bot is done
	OutputDir string
	LogStats  bool
	// BuyCandy spends the delivered stars on candy once the rounds are over.
	BuyCandy bool
}

// Result summarises a headless run.
type Result struct {
	Ticks        uint64
	Rounds       int
	Delivered    int
	Collected    int
	Candies      int
	RoundSeconds telemetry.Summary
	Snapshot     string
}

func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("ticks", r.Ticks),
		slog.Int("rounds", r.Rounds),
		slog.Int("delivered", r.Delivered),
		slog.Int("collected", r.Collected),
		slog.Int("candies", r.Candies),
		slog.Any("round_seconds", r.RoundSeconds),
	)
}

// Headless runs the machine without a window on a manual clock, with the
// bot at the controls and telemetry written to disk.
type Headless struct {
	cfg   *config.Config
	opts  Options
	clock *engine.ManualClock

	World   *world.World
	Session *Session
	Bot     *Bot

	collector *telemetry.Collector
	output    *telemetry.OutputManager

	rounds    []telemetry.RoundRecord
	result    Result
	candyDone bool
	err       error
}

func NewHeadless(cfg *config.Config, opts Options) (*Headless, error) {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	clock := engine.NewManualClock(0)
	w := world.New(cfg, clock)
	s := NewSession(w, cfg.Session.Coins)

	maxTicks := cfg.Bot.MaxTicksPerRound
	if maxTicks <= 0 {
		maxTicks = 3600
	}

	h := &Headless{
		cfg:       cfg,
		opts:      opts,
		clock:     clock,
		World:     w,
		Session:   s,
		Bot:       NewBot(s, opts.Rounds, maxTicks),
		collector: telemetry.NewCollector(cfg.Telemetry.WindowTicks, cfg.Derived.DT32),
		output:    output,
	}
	h.wire()
	return h, nil
}

func (h *Headless) wire() {
	w := h.World
	w.Claw.OnGrab.AddListener(func(claw.Grab) {
		h.collector.RecordGrab()
	})
	w.Claw.OnDelivered.AddListener(func(d claw.ObjectDelivered) {
		h.collector.RecordDelivery()
		h.result.Delivered++
		h.keep(h.output.WriteDelivery(telemetry.Delivery{
			Tick:       w.Ticks(),
			SimTimeSec: h.collector.SimTime(w.Ticks()),
			Round:      h.Bot.Round(),
			Prize:      d.Name,
			Score:      d.Total,
		}))
	})
	w.OnPrizeCollected.AddListener(func(world.PrizeCollected) {
		h.collector.RecordPrizeOut()
		h.result.Collected++
	})
	w.Dispenser.OnCandyEjected.AddListener(func(*components.Rigidbody) {
		h.collector.RecordCandyEjected()
		h.result.Candies++
	})
	h.Bot.OnRoundEnd.AddListener(func(r telemetry.RoundRecord) {
		h.rounds = append(h.rounds, r)
		h.keep(h.output.WriteRound(r))
	})
}

// keep remembers the first output error; the run stops on it.
func (h *Headless) keep(err error) {
	if err != nil && h.err == nil {
		h.err = err
	}
}

// Step advances the run by one fixed tick.
func (h *Headless) Step() {
	dt := h.cfg.Derived.DT32
	if !h.Bot.Done() {
		h.Bot.Step(dt)
	} else if h.opts.BuyCandy {
		h.driveCandy()
	}

	h.clock.Advance(h.cfg.Derived.DTMs)
	start := time.Now()
	h.World.Tick(dt)
	h.Session.Update()
	h.collector.Sample(float64(h.World.KineticEnergy()), time.Since(start))

	if tick := h.World.Ticks(); h.collector.ShouldFlush(tick) {
		h.flush(tick)
	}
}

func (h *Headless) flush(tick uint64) {
	w := h.World
	stats := h.collector.Flush(tick, telemetry.WorldState{
		StarsInPlay: w.StarsInPlay(),
		Bodies:      len(w.Physics.Bodies()),
		Sleeping:    w.SleepingBodies(),
		Score:       h.Session.Score(),
		ClawState:   w.Claw.State().String(),
	})
	if h.opts.LogStats {
		stats.LogStats()
	}
	h.keep(h.output.WriteTelemetry(stats))
}

// driveCandy spends delivered stars on candy, one at a time.
func (h *Headless) driveCandy() {
	d := h.World.Dispenser
	if h.candyDone || d.IsDispensing() {
		return
	}
	if h.Session.Score() == 0 || len(d.Candies()) == 0 {
		h.candyDone = true
		return
	}
	if !d.HasCoin() && !h.Session.InsertCandyCoin() {
		h.candyDone = true
		return
	}
	if !h.Session.DispenseCandy() {
		h.candyDone = true
	}
}

// Done reports whether the bot has finished and any candy has been bought.
func (h *Headless) Done() bool {
	if !h.Bot.Done() {
		return false
	}
	return !h.opts.BuyCandy || h.candyDone
}

// Run steps until the run is done, MaxTicks is reached or ctx is cancelled.
func (h *Headless) Run(ctx context.Context) (Result, error) {
	for !h.Done() {
		if err := ctx.Err(); err != nil {
			res := h.finish()
			return res, err
		}
		if h.opts.MaxTicks > 0 && int(h.World.Ticks()) >= h.opts.MaxTicks {
			slog.Info("max ticks reached", "tick", h.World.Ticks())
			break
		}
		h.Step()
		if h.err != nil {
			break
		}
	}
	res := h.finish()
	return res, h.err
}

// finish flushes the last partial window and saves a snapshot of the
// final state.
func (h *Headless) finish() Result {
	tick := h.World.Ticks()
	if h.collector.ShouldFlush(tick) || tick%h.collector.WindowTicks() != 0 {
		h.flush(tick)
	}

	durations := make([]float64, 0, len(h.rounds))
	for _, r := range h.rounds {
		durations = append(durations, r.DurationSec)
	}
	h.result.Ticks = tick
	h.result.Rounds = len(h.rounds)
	h.result.RoundSeconds = telemetry.Summarize(durations)

	if dir := h.output.Dir(); dir != "" {
		path, err := world.SaveSnapshot(h.World.Snapshot(), dir)
		h.keep(err)
		h.result.Snapshot = path
	}

	slog.Info("headless run finished", "result", h.result, "world", h.World)
	return h.result
}

// Rounds returns the records of finished rounds.
func (h *Headless) Rounds() []telemetry.RoundRecord {
	return h.rounds
}

func (h *Headless) Close() error {
	return h.output.Close()
}
