package game

import (
	"log/slog"

	"seep/telemetry"
)

// flushTelemetry closes the stats window when due, logs it, feeds the
// event detector, and writes run output. A window with no recorded
// ticks is left open; the absolute tick clock keeps later windows
// consistent across idle gaps.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) || !g.collector.HasSamples() {
		return
	}

	grid := g.world.Grid()
	stats := g.collector.Flush(g.tick, grid.TotalWeight(), grid.UnstableCount())
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("telemetry write failed", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("perf write failed", "error", err)
	}

	for _, ev := range g.detector.Check(stats) {
		ev.LogEvent()
		if err := g.outputManager.WriteEvent(ev); err != nil {
			slog.Error("event write failed", "error", err)
		}
		if ev.Type == telemetry.EventSettled {
			g.saveSnapshot(ev)
		}
	}
}

// saveSnapshot writes the world into the run output directory, tagged
// with the event that triggered it.
func (g *Game) saveSnapshot(ev telemetry.Event) {
	path, err := g.outputManager.WriteSnapshot(g.world, g.tick, string(ev.Type))
	if err != nil {
		slog.Error("snapshot failed", "error", err, "tick", g.tick)
		return
	}
	if path != "" {
		slog.Info("snapshot written", "path", path, "tick", g.tick)
	}
}
