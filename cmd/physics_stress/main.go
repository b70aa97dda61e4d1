// Stress test timing World.Tick as the number of stars in the cabinet grows.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"clawmachine/internal/config"
	"clawmachine/internal/engine"
	"clawmachine/internal/telemetry"
	"clawmachine/internal/world"
)

func main() {
	ticks := flag.Int("ticks", 600, "Ticks to time per population")
	flag.Parse()

	// Only warnings, the world logs every reset at info.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	testCounts := []int{10, 20, 40, 80, 160}
	for _, count := range testCounts {
		if err := stress(count, *ticks); err != nil {
			fmt.Fprintf(os.Stderr, "%4d stars: %v\n", count, err)
			os.Exit(1)
		}
	}
}

func stress(count, ticks int) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	cfg.Stars.Count = count

	clock := engine.NewManualClock(0)
	w := world.New(cfg, clock)
	dt := cfg.Derived.DT32

	samples := make([]float64, 0, ticks)
	start := time.Now()
	for i := 0; i < ticks; i++ {
		clock.Advance(cfg.Derived.DTMs)
		tickStart := time.Now()
		w.Tick(dt)
		samples = append(samples, float64(time.Since(tickStart).Microseconds())/1000)
	}
	total := time.Since(start)

	s := telemetry.Summarize(samples)
	fmt.Printf("%4d stars: %8v total | tick mean %6.3f ms p90 %6.3f ms max %6.3f ms | %3d asleep | KE %.4f\n",
		count, total.Round(time.Microsecond), s.Mean, s.P90, s.Max, w.SleepingBodies(), w.KineticEnergy())
	return nil
}
