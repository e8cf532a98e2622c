package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seep/config"
	"seep/telemetry"
	"seep/world"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	os.Exit(m.Run())
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGame(opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessTicksAdvance(t *testing.T) {
	g := newHeadless(t, Options{})

	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}
	if g.Tick() != 10 {
		t.Fatalf("tick = %d after 10 updates, want 10", g.Tick())
	}

	g.stepsPerUpdate = 5
	g.UpdateHeadless()
	if g.Tick() != 15 {
		t.Fatalf("tick = %d with 5 steps per update, want 15", g.Tick())
	}
}

func TestTicksContinueWhenSettled(t *testing.T) {
	g := newHeadless(t, Options{})

	// Run long enough for generated pools to settle, then confirm the
	// tick clock still advances on the settled grid.
	for i := 0; i < 400; i++ {
		g.UpdateHeadless()
	}
	before := g.Tick()
	g.UpdateHeadless()
	if g.Tick() != before+1 {
		t.Fatalf("tick = %d after settled update, want %d", g.Tick(), before+1)
	}
}

func TestStatsCallbackReceivesWindows(t *testing.T) {
	g := newHeadless(t, Options{StatsWindowSec: 0.25})

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(ws telemetry.WindowStats) {
		windows = append(windows, ws)
	})

	g.spawnEmitter(100, g.surfaceY(100)+4)
	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}

	if len(windows) == 0 {
		t.Fatal("no stats windows delivered after 30 ticks")
	}
	first := windows[0]
	if first.WindowEndTick <= 0 {
		t.Errorf("WindowEndTick = %d, want > 0", first.WindowEndTick)
	}
	if first.Ticks <= 0 {
		t.Errorf("Ticks = %d, want > 0", first.Ticks)
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].WindowEndTick <= windows[i-1].WindowEndTick {
			t.Errorf("window %d ends at %d, not after %d", i, windows[i].WindowEndTick, windows[i-1].WindowEndTick)
		}
	}
}

func TestChunkCallbackReceivesDirtyChunks(t *testing.T) {
	g := newHeadless(t, Options{})

	var got []world.ChunkCoord
	g.SetChunkCallback(func(chunks []world.ChunkCoord) {
		got = append(got, chunks...)
	})

	g.spawnEmitter(64, g.surfaceY(64)+4)
	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}

	if len(got) == 0 {
		t.Fatal("no dirty chunks published")
	}
	cx := int32(64) / g.world.ChunkSize()
	found := false
	for _, c := range got {
		if c.X == cx {
			found = true
		}
		if c.X < 0 || c.Y < 0 {
			t.Errorf("chunk coord %+v out of range", c)
		}
	}
	if !found {
		t.Errorf("no published chunk in column %d where the emitter pours", cx)
	}
}

func TestRunOutputFiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Headless:       true,
		OutputDir:      dir,
		StatsWindowSec: 0.25,
		StepsPerUpdate: 10,
	}
	g, err := NewGame(opts)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	g.spawnEmitter(200, g.surfaceY(200)+4)
	for i := 0; i < 5; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "events.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing run output %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		t.Fatalf("telemetry.csv has %d lines, want header plus at least one window", len(lines))
	}
	if !strings.Contains(lines[0], "total_weight") {
		t.Errorf("telemetry.csv header missing total_weight: %q", lines[0])
	}
}

func TestLedgerTracksPouredWeight(t *testing.T) {
	g := newHeadless(t, Options{})

	baseline := g.world.Grid().TotalWeight()
	g.spawnEmitter(300, g.surfaceY(300)+4)

	// 2.0/s at 0.05s per tick pours 0.1 per tick.
	for i := 0; i < 20; i++ {
		g.UpdateHeadless()
	}

	added := g.collector.Ledger().Added
	if added < 1.9 || added > 2.1 {
		t.Errorf("ledger added = %.3f after 20 ticks, want about 2.0", added)
	}
	diff := g.world.Grid().TotalWeight() - baseline
	if diff < 1.5 {
		t.Errorf("grid gained %.3f weight, want most of the poured 2.0", diff)
	}
}
