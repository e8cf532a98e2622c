package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seep/config"
)

type fakeSaver struct {
	path string
}

func (f *fakeSaver) Save(path string) error {
	f.path = path
	return os.WriteFile(path, []byte("seep"), 0644)
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") returned error: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// Every method is a no-op on the nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("WritePerf on nil manager: %v", err)
	}
	if err := om.WriteEvent(Event{}); err != nil {
		t.Errorf("WriteEvent on nil manager: %v", err)
	}
	s := &fakeSaver{}
	if path, err := om.WriteSnapshot(s, 10, ""); err != nil || path != "" {
		t.Errorf("WriteSnapshot on nil manager = (%q, %v)", path, err)
	}
	if s.path != "" {
		t.Error("nil manager should not invoke the saver")
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil manager = %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesHeadersOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 20, Ticks: 20, TotalWeight: 5}); err != nil {
		t.Fatalf("first WriteTelemetry: %v", err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 40, Ticks: 18, TotalWeight: 5}); err != nil {
		t.Fatalf("second WriteTelemetry: %v", err)
	}
	if err := om.WritePerf(PerfStats{TicksPerSecond: 50}, 20); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteEvent(Event{Type: EventSettled, Tick: 40, Description: "rest"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") || !strings.Contains(lines[0], "ledger_drift") {
		t.Errorf("header row missing expected columns: %q", lines[0])
	}
	if strings.Contains(lines[1], "window_end") {
		t.Errorf("data row repeats the header: %q", lines[1])
	}

	data, err = os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 {
		t.Errorf("perf.csv has %d lines, want header + 1 row", len(lines))
	}

	data, err = os.ReadFile(filepath.Join(dir, "events.csv"))
	if err != nil {
		t.Fatalf("reading events.csv: %v", err)
	}
	if !strings.Contains(string(data), "settled") {
		t.Errorf("events.csv missing event row: %q", string(data))
	}
}

func TestOutputManagerSnapshotNaming(t *testing.T) {
	om, err := NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	s := &fakeSaver{}
	path, err := om.WriteSnapshot(s, 1234, "settled")
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if got := filepath.Base(path); got != "world_000001234_settled.bin" {
		t.Errorf("snapshot name = %q", got)
	}
	if s.path != path {
		t.Errorf("saver received %q, manager reported %q", s.path, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot file not written: %v", err)
	}

	path, err = om.WriteSnapshot(s, 60, "")
	if err != nil {
		t.Fatalf("untagged WriteSnapshot: %v", err)
	}
	if got := filepath.Base(path); got != "world_000000060.bin" {
		t.Errorf("untagged snapshot name = %q", got)
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	om, err := NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(om.Dir(), "config.yaml"))
	if err != nil {
		t.Fatalf("reading config.yaml: %v", err)
	}
	if !strings.Contains(string(data), "fluid:") {
		t.Errorf("config.yaml missing fluid section: %q", string(data))
	}
}
