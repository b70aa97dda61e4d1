package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"clawmachine/internal/config"
	"clawmachine/internal/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run scripted rounds without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and final snapshot")
	maxTicks := flag.Int("max-ticks", 0, "Stop a headless run after N ticks (0 = when the bot is done)")
	rounds := flag.Int("rounds", 0, "Headless rounds to play (0 = use config)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = use config)")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	logStats := flag.Bool("log-stats", false, "Log every telemetry window")
	noCandy := flag.Bool("no-candy", false, "Do not spend delivered stars on candy after a headless run")

	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Set up slog before anything logs
	handlerOpts := &slog.HandlerOptions{Level: level}
	if *headless {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)))
	}

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	if !*headless {
		game.New(cfg).Run()
		return
	}

	n := cfg.Bot.Rounds
	if *rounds > 0 {
		n = *rounds
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h, err := game.NewHeadless(cfg, game.Options{
		Rounds:    n,
		MaxTicks:  *maxTicks,
		OutputDir: *outputDir,
		LogStats:  *logStats,
		BuyCandy:  !*noCandy,
	})
	if err != nil {
		slog.Error("failed to start headless run", "error", err)
		os.Exit(1)
	}
	defer h.Close()

	slog.Info("starting headless simulation",
		"seed", cfg.Simulation.Seed,
		"rounds", n,
		"max_ticks", *maxTicks,
		"output_dir", *outputDir,
	)

	if _, err := h.Run(ctx); err != nil {
		slog.Error("headless run failed", "error", err)
		h.Close()
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q: %w", s, err)
	}
	return level, nil
}
