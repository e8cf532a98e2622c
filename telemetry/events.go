package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// EventType identifies the type of detected event.
type EventType string

const (
	EventSettled      EventType = "settled"
	EventWake         EventType = "wake"
	EventMassDrain    EventType = "mass_drain"
	EventDriftAnomaly EventType = "drift_anomaly"
	EventSurge        EventType = "surge"
	EventChurn        EventType = "churn"
)

const (
	// Drops below this total are noise, not drains.
	minDrainPeak = 1.0
	// Windows of active churn with a pinned total before flagging.
	churnTrigger = 4
	// Activity floor for surge detection, in cells per tick.
	minSurgeCells = 64.0
)

// Event represents a notable moment detected from flushed window stats.
type Event struct {
	Type        EventType `csv:"type"`
	Tick        int       `csv:"tick"`
	Description string    `csv:"description"`
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Info("event",
		"type", string(e.Type),
		"tick", e.Tick,
		"description", e.Description,
	)
}

// EventDetector watches flushed windows for notable transitions in the
// fluid simulation.
type EventDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	wasSettled   bool
	sawActive    bool    // at least one active window seen
	peakWeight   float64 // recent peak total, for drain detection
	lastTotal    float64
	churnWindows int // consecutive active windows with a pinned total
}

// NewEventDetector creates a detector with the given history size.
func NewEventDetector(historySize int) *EventDetector {
	if historySize < 5 {
		historySize = 5 // minimum for surge baselines
	}
	return &EventDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window stats and returns any triggered events.
func (d *EventDetector) Check(stats WindowStats) []Event {
	var events []Event

	// Settle transitions. The startup flush does not count as a settle:
	// an active window must have come first.
	if d.sawActive && stats.Settled && !d.wasSettled {
		events = append(events, Event{
			Type:        EventSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("grid settled holding %.3f weight after %d ticks", stats.TotalWeight, stats.Ticks),
		})
	}
	if d.wasSettled && !stats.Settled {
		events = append(events, Event{
			Type:        EventWake,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("grid woke with %d unstable cells", stats.UnstableCells),
		})
	}

	if e := d.checkMassDrain(stats); e != nil {
		events = append(events, *e)
	}
	if e := d.checkDriftAnomaly(stats); e != nil {
		events = append(events, *e)
	}
	if e := d.checkSurge(stats); e != nil {
		events = append(events, *e)
	}
	if e := d.checkChurn(stats); e != nil {
		events = append(events, *e)
	}

	// Update history and state
	d.addToHistory(stats)
	d.wasSettled = stats.Settled
	if !stats.Settled && stats.Ticks > 0 {
		d.sawActive = true
	}
	if stats.TotalWeight > d.peakWeight {
		d.peakWeight = stats.TotalWeight
	}
	d.lastTotal = stats.TotalWeight

	return events
}

func (d *EventDetector) addToHistory(stats WindowStats) {
	d.history[d.historyIdx] = stats
	d.historyIdx = (d.historyIdx + 1) % d.historySize
	if d.historyIdx == 0 {
		d.historyFull = true
	}
}

func (d *EventDetector) getHistory() []WindowStats {
	if d.historyFull {
		return d.history
	}
	return d.history[:d.historyIdx]
}

// checkMassDrain fires when total weight falls more than 30% below its
// recent peak, then rebases the peak so one drain triggers once.
func (d *EventDetector) checkMassDrain(stats WindowStats) *Event {
	if d.peakWeight < minDrainPeak {
		return nil
	}

	drop := 1 - stats.TotalWeight/d.peakWeight
	if drop <= 0.30 {
		return nil
	}

	e := &Event{
		Type:        EventMassDrain,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("total weight fell %.0f%% from peak %.2f to %.2f", drop*100, d.peakWeight, stats.TotalWeight),
	}
	d.peakWeight = stats.TotalWeight
	return e
}

// checkDriftAnomaly fires when the window's conservation drift exceeds
// a tolerance scaled to the grid total.
func (d *EventDetector) checkDriftAnomaly(stats WindowStats) *Event {
	tol := driftTolerance(stats.TotalWeight)
	if math.Abs(stats.LedgerDrift) <= tol {
		return nil
	}

	return &Event{
		Type:        EventDriftAnomaly,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("ledger drift %.5f exceeds tolerance %.5f", stats.LedgerDrift, tol),
	}
}

// driftTolerance allows a fixed float32 accumulation floor plus a
// relative term that takes over on large grids.
func driftTolerance(total float64) float64 {
	const floor = 1e-3
	if rel := math.Abs(total) * 1e-4; rel > floor {
		return rel
	}
	return floor
}

// checkSurge fires when mean scan load more than doubles its rolling
// average: a disturbance woke a large area at once.
func (d *EventDetector) checkSurge(stats WindowStats) *Event {
	history := d.getHistory()
	if len(history) < 3 {
		return nil
	}

	var sum float64
	n := 0
	for _, h := range history {
		if h.Ticks == 0 {
			continue
		}
		sum += h.ScannedMean
		n++
	}
	if n < 3 {
		return nil
	}
	avg := sum / float64(n)

	if avg < 1 || stats.ScannedMean <= avg*2 || stats.ScannedMean < minSurgeCells {
		return nil
	}

	return &Event{
		Type:        EventSurge,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("scan load %.0f cells per tick is %.1fx the rolling average %.0f", stats.ScannedMean, stats.ScannedMean/avg, avg),
	}
}

// checkChurn fires once after several consecutive active windows whose
// totals barely move: cells trading weight without converging.
func (d *EventDetector) checkChurn(stats WindowStats) *Event {
	active := !stats.Settled && stats.Ticks > 0 && stats.ChangedMean > 0
	pinned := d.lastTotal > 0 && math.Abs(stats.TotalWeight-d.lastTotal) <= churnSpread(stats.TotalWeight)
	if !active || !pinned {
		d.churnWindows = 0
		return nil
	}

	d.churnWindows++
	if d.churnWindows != churnTrigger { // trigger exactly once per plateau
		return nil
	}

	return &Event{
		Type:        EventChurn,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d active windows with total weight pinned near %.2f", churnTrigger, stats.TotalWeight),
	}
}

func churnSpread(total float64) float64 {
	const floor = 1e-3
	if rel := math.Abs(total) * 1e-3; rel > floor {
		return rel
	}
	return floor
}
