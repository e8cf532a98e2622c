package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated fluid simulation statistics for a time
// window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Tick activity during the window
	Ticks        int  `csv:"ticks"`
	SettledTicks int  `csv:"settled_ticks"`
	Settled      bool `csv:"settled"` // grid state at window end

	// Scan and commit load
	ScannedMean float64 `csv:"scanned_mean"`
	ChangedMean float64 `csv:"changed_mean"`
	ChangedMax  int     `csv:"changed_max"`
	Emptied     int     `csv:"emptied"`
	Drained     int     `csv:"drained"`

	// Per-tick |delta sum| before commit; ~0 when the scan conserves
	DriftMean float64 `csv:"drift_mean"`
	DriftP95  float64 `csv:"drift_p95"`
	DriftMax  float64 `csv:"drift_max"`

	// Pool operations
	Fills      int `csv:"fills"`
	FillCells  int `csv:"fill_cells"`
	Clears     int `csv:"clears"`
	ClearCells int `csv:"clear_cells"`

	// Conservation ledger
	WeightAdded   float64 `csv:"weight_added"`
	WeightRemoved float64 `csv:"weight_removed"`
	ResidueCulled float64 `csv:"residue_culled"`
	TotalWeight   float64 `csv:"total_weight"`
	LedgerDrift   float64 `csv:"ledger_drift"`

	// Gauges sampled at window end
	UnstableCells int `csv:"unstable_cells"`
}

// Summary holds distribution statistics for a sample set.
type Summary struct {
	Mean float64
	Std  float64
	P50  float64
	P95  float64
	Max  float64
}

// Summarize computes mean, sample standard deviation, and empirical
// quantiles. The input is copied before sorting. Returns the zero
// Summary for an empty sample set.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if n == 1 {
		std = 0
	}
	return Summary{
		Mean: mean,
		Std:  std,
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:  sorted[n-1],
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("ticks", s.Ticks),
		slog.Int("settled_ticks", s.SettledTicks),
		slog.Bool("settled", s.Settled),
		slog.Float64("scanned_mean", s.ScannedMean),
		slog.Float64("changed_mean", s.ChangedMean),
		slog.Int("changed_max", s.ChangedMax),
		slog.Int("emptied", s.Emptied),
		slog.Int("drained", s.Drained),
		slog.Float64("drift_mean", s.DriftMean),
		slog.Float64("drift_p95", s.DriftP95),
		slog.Float64("drift_max", s.DriftMax),
		slog.Int("fills", s.Fills),
		slog.Int("fill_cells", s.FillCells),
		slog.Int("clears", s.Clears),
		slog.Int("clear_cells", s.ClearCells),
		slog.Float64("weight_added", s.WeightAdded),
		slog.Float64("weight_removed", s.WeightRemoved),
		slog.Float64("residue_culled", s.ResidueCulled),
		slog.Float64("total_weight", s.TotalWeight),
		slog.Float64("ledger_drift", s.LedgerDrift),
		slog.Int("unstable_cells", s.UnstableCells),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"ticks", s.Ticks,
		"settled", s.Settled,
		"scanned_mean", s.ScannedMean,
		"changed_mean", s.ChangedMean,
		"changed_max", s.ChangedMax,
		"emptied", s.Emptied,
		"drained", s.Drained,
		"drift_max", s.DriftMax,
		"fills", s.Fills,
		"clears", s.Clears,
		"weight_added", s.WeightAdded,
		"weight_removed", s.WeightRemoved,
		"residue_culled", s.ResidueCulled,
		"total_weight", s.TotalWeight,
		"ledger_drift", s.LedgerDrift,
		"unstable_cells", s.UnstableCells,
	)
}
