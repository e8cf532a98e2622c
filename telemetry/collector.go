// Package telemetry tracks fluid simulation health: windowed tick
// statistics, a weight conservation ledger, event detection, and
// performance timing, with CSV output for offline analysis.
package telemetry

import (
	"math"

	"seep/fluid"
)

// Collector folds per-tick simulation stats into time windows and
// produces a WindowStats on each flush.
type Collector struct {
	windowSec   float64
	windowTicks int
	interval    float64

	windowStartTick int

	// Accumulators for the current window.
	ticks        int
	settledTicks int
	lastSettled  bool

	scanned    int
	changed    int
	changedMax int
	emptied    int
	drained    int

	driftSamples []float64

	fills      int
	fillCells  int
	clears     int
	clearCells int

	ledger WeightLedger
}

// NewCollector creates a stats collector.
// windowSec: how long each stats window lasts in simulation seconds.
// interval: seconds per simulation tick (used for tick-to-time conversion).
func NewCollector(windowSec, interval float64) *Collector {
	ticksPerWindow := 1
	if interval > 0 {
		ticksPerWindow = int(windowSec / interval)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowSec:   windowSec,
		windowTicks: ticksPerWindow,
		interval:    interval,
	}
}

// RecordTick folds one simulation tick into the current window.
func (c *Collector) RecordTick(st fluid.TickStats) {
	c.ticks++
	c.scanned += st.Scanned
	c.changed += st.Changed
	if st.Changed > c.changedMax {
		c.changedMax = st.Changed
	}
	c.emptied += st.Emptied
	c.drained += st.Drained
	c.driftSamples = append(c.driftSamples, math.Abs(st.DeltaSum))
	c.ledger.Culled += st.Residue
	if st.Settled {
		c.settledTicks++
	}
	c.lastSettled = st.Settled
}

// RecordWeightAdded records fluid injected from outside the simulation,
// such as a pour tool or an emitter.
func (c *Collector) RecordWeightAdded(amount float64) {
	c.ledger.Added += amount
}

// RecordWeightRemoved records fluid withdrawn from outside the
// simulation, such as a drain tool or a block placed over water.
func (c *Collector) RecordWeightRemoved(amount float64) {
	c.ledger.Removed += amount
}

// RecordFill records a pool fill and the net weight it introduced.
// weightDelta can be negative when the fill evicted more stale fluid
// than it placed.
func (c *Collector) RecordFill(cells int, weightDelta float64) {
	c.fills++
	c.fillCells += cells
	c.recordDelta(weightDelta)
}

// RecordClear records a pool clear and the net weight change.
func (c *Collector) RecordClear(cells int, weightDelta float64) {
	c.clears++
	c.clearCells += cells
	c.recordDelta(weightDelta)
}

func (c *Collector) recordDelta(delta float64) {
	if delta >= 0 {
		c.ledger.Added += delta
	} else {
		c.ledger.Removed -= delta
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// HasSamples reports whether the current window recorded any ticks. The
// loop uses it to flush a short final window when the grid settles.
func (c *Collector) HasSamples() bool { return c.ticks > 0 }

// Flush produces a WindowStats for the window ending at currentTick and
// resets the accumulators. totalWeight and unstableCells are gauges the
// caller samples from the grid at flush time; totalWeight also closes
// the conservation ledger and opens the next one.
func (c *Collector) Flush(currentTick int, totalWeight float64, unstableCells int) WindowStats {
	drift := Summarize(c.driftSamples)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.interval,

		Ticks:        c.ticks,
		SettledTicks: c.settledTicks,
		Settled:      c.lastSettled,

		Emptied: c.emptied,
		Drained: c.drained,

		DriftMean: drift.Mean,
		DriftP95:  drift.P95,
		DriftMax:  drift.Max,

		Fills:      c.fills,
		FillCells:  c.fillCells,
		Clears:     c.clears,
		ClearCells: c.clearCells,

		WeightAdded:   c.ledger.Added,
		WeightRemoved: c.ledger.Removed,
		ResidueCulled: c.ledger.Culled,

		TotalWeight:   totalWeight,
		LedgerDrift:   c.ledger.Drift(totalWeight),
		UnstableCells: unstableCells,
	}
	if c.ticks > 0 {
		stats.ScannedMean = float64(c.scanned) / float64(c.ticks)
		stats.ChangedMean = float64(c.changed) / float64(c.ticks)
		stats.ChangedMax = c.changedMax
	}

	// Reset for the next window. lastSettled carries over: settledness
	// is a state, not a counter.
	c.windowStartTick = currentTick
	c.ticks = 0
	c.settledTicks = 0
	c.scanned = 0
	c.changed = 0
	c.changedMax = 0
	c.emptied = 0
	c.drained = 0
	c.driftSamples = c.driftSamples[:0]
	c.fills = 0
	c.fillCells = 0
	c.clears = 0
	c.clearCells = 0
	c.ledger = WeightLedger{Baseline: totalWeight}

	return stats
}

// Rebase restarts the conservation ledger from the given grid total.
// Call it after world generation or loading a save, before the first
// tick is recorded.
func (c *Collector) Rebase(totalWeight float64) {
	c.ledger = WeightLedger{Baseline: totalWeight}
}

// Ledger returns the current window's conservation ledger.
func (c *Collector) Ledger() WeightLedger { return c.ledger }

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int { return c.windowTicks }

// WeightLedger tracks the weight conservation identity for one window.
// At flush, the grid total should equal Baseline + Added - Removed -
// Culled; any difference is drift from unaccounted mutation or float
// error.
type WeightLedger struct {
	Baseline float64 // grid total when the window opened
	Added    float64 // weight injected by pours, emitters, and fills
	Removed  float64 // weight withdrawn by drains, clears, and evictions
	Culled   float64 // sub-threshold residue zeroed at commit
}

// Expected returns the grid total the ledger predicts.
func (l WeightLedger) Expected() float64 {
	return l.Baseline + l.Added - l.Removed - l.Culled
}

// Drift returns how far the actual grid total is from the prediction.
func (l WeightLedger) Drift(total float64) float64 {
	return total - l.Expected()
}
