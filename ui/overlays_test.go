package ui

import "testing"

func TestRegistryDefaults(t *testing.T) {
	reg := NewOverlayRegistry()

	all := reg.All()
	if len(all) != 5 {
		t.Fatalf("registry has %d overlays, want 5", len(all))
	}
	for _, desc := range all {
		if reg.IsEnabled(desc.ID) {
			t.Errorf("overlay %s enabled at startup", desc.ID)
		}
		if desc.Key == 0 || desc.KeyLabel == "" {
			t.Errorf("overlay %s has no hotkey", desc.ID)
		}
	}

	if got := reg.Categories(); len(got) != 2 || got[0] != "fluid" || got[1] != "debug" {
		t.Errorf("categories = %v, want [fluid debug]", got)
	}
	if got := reg.ByCategory("fluid"); len(got) != 3 {
		t.Errorf("fluid category has %d overlays, want 3", len(got))
	}
	if got := reg.ByCategory("debug"); len(got) != 2 {
		t.Errorf("debug category has %d overlays, want 2", len(got))
	}
}

func TestToggle(t *testing.T) {
	reg := NewOverlayRegistry()

	if !reg.Toggle(OverlayChunkGrid) {
		t.Fatal("first toggle should enable")
	}
	if !reg.IsEnabled(OverlayChunkGrid) {
		t.Fatal("chunk grid not enabled after toggle")
	}
	if reg.Toggle(OverlayChunkGrid) {
		t.Fatal("second toggle should disable")
	}
	if reg.Toggle("no_such_overlay") {
		t.Error("unknown overlay toggled on")
	}
}

func TestCellOverlaysAreExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	reg.Toggle(OverlayStability)
	reg.Toggle(OverlayDensity)

	if reg.IsEnabled(OverlayStability) {
		t.Error("stability still enabled after enabling density")
	}
	if !reg.IsEnabled(OverlayDensity) {
		t.Error("density not enabled")
	}

	reg.SetEnabled(OverlayPressure, true)
	if reg.IsEnabled(OverlayDensity) {
		t.Error("density still enabled after enabling pressure")
	}

	// The debug overlays are independent of the cell trio.
	reg.Toggle(OverlayFlowActivity)
	if !reg.IsEnabled(OverlayPressure) || !reg.IsEnabled(OverlayFlowActivity) {
		t.Error("independent overlays should coexist")
	}

	got := reg.EnabledOverlays()
	if len(got) != 2 || got[0] != OverlayPressure || got[1] != OverlayFlowActivity {
		t.Errorf("enabled = %v, want [pressure flow_activity]", got)
	}
}

func TestGet(t *testing.T) {
	reg := NewOverlayRegistry()

	desc, ok := reg.Get(OverlayDensity)
	if !ok {
		t.Fatal("density overlay not found")
	}
	if desc.Category != "fluid" || len(desc.Exclusive) != 2 {
		t.Errorf("density descriptor = %+v", desc)
	}
	if _, ok := reg.Get("no_such_overlay"); ok {
		t.Error("unknown overlay found")
	}
}
