package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Counts at window end
	StarsInPlay int    `csv:"stars_in_play"`
	Bodies      int    `csv:"bodies"`
	Sleeping    int    `csv:"sleeping"`
	Score       int    `csv:"score"`
	ClawState   string `csv:"claw_state"`

	// Events during window
	Grabs          int `csv:"grabs"`
	Deliveries     int `csv:"deliveries"`
	PrizesOut      int `csv:"prizes_out"`
	CandiesEjected int `csv:"candies_ejected"`

	// Kinetic energy of awake dynamic bodies, one sample per tick
	KEMean float64 `csv:"ke_mean"`
	KEStd  float64 `csv:"ke_std"`
	KEP90  float64 `csv:"ke_p90"`
	KEMax  float64 `csv:"ke_max"`

	// Wall time spent in World.Tick
	TickMsMean float64 `csv:"tick_ms_mean"`
	TickMsP90  float64 `csv:"tick_ms_p90"`
}

// Summary describes a set of samples.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P90    float64
	Max    float64
}

// Summarize computes the mean, sample standard deviation and empirical
// quantiles of values. An empty slice gives the zero Summary.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Count: n,
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:   floats.Max(sorted),
	}
	if n > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("n", s.Count),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.StdDev),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("max", s.Max),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("stars_in_play", s.StarsInPlay),
		slog.Int("bodies", s.Bodies),
		slog.Int("sleeping", s.Sleeping),
		slog.Int("score", s.Score),
		slog.String("claw_state", s.ClawState),
		slog.Int("grabs", s.Grabs),
		slog.Int("deliveries", s.Deliveries),
		slog.Int("prizes_out", s.PrizesOut),
		slog.Int("candies_ejected", s.CandiesEjected),
		slog.Float64("ke_mean", s.KEMean),
		slog.Float64("ke_std", s.KEStd),
		slog.Float64("ke_p90", s.KEP90),
		slog.Float64("ke_max", s.KEMax),
		slog.Float64("tick_ms_mean", s.TickMsMean),
		slog.Float64("tick_ms_p90", s.TickMsP90),
	)
}

// LogStats logs the headline numbers of a window.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"stars_in_play", s.StarsInPlay,
		"sleeping", s.Sleeping,
		"score", s.Score,
		"ke_mean", s.KEMean,
		"tick_ms", s.TickMsMean,
	)
}
