package fluid

import (
	"math"
	"testing"
)

func TestUpdateAccumulatorGatesTicks(t *testing.T) {
	g := NewGrid(1, 2, DefaultParams())
	mustCell(t, g, 0, 1).AddWeight(1.0)
	s := NewSimulator(g)

	if _, ticked := s.Update(0.02); ticked {
		t.Error("ticked before the update interval elapsed")
	}
	if _, ticked := s.Update(0.02); ticked {
		t.Error("ticked at 0.04s with a 0.05s interval")
	}
	if _, ticked := s.Update(0.02); !ticked {
		t.Error("did not tick once the accumulated time crossed the interval")
	}

	for i := 0; i < 100 && s.Pending(); i++ {
		s.Update(0.05)
	}
	if s.Pending() {
		t.Fatal("simulation never settled")
	}
	if st, ticked := s.Update(0.05); ticked || !st.Settled {
		t.Errorf("settled simulator still ticking: ticked=%v settled=%v", ticked, st.Settled)
	}

	s.MarkDirty()
	if _, ticked := s.Update(0.05); !ticked {
		t.Error("MarkDirty did not wake the scheduler")
	}
}

// Cells outside the simulation window freeze at their last committed
// state and resume once the window covers them again.
func TestRegionFreezesOutsideCells(t *testing.T) {
	g := NewGrid(12, 6, DefaultParams())
	mustCell(t, g, 8, 5).AddWeight(1.0)

	s := NewSimulator(g)
	s.SetRegion(Region{MinX: 0, MinY: 0, MaxX: 4, MaxY: 6})
	for i := 0; i < 5; i++ {
		s.Step()
	}
	if w := mustCell(t, g, 8, 5).Weight(); w != 1.0 {
		t.Fatalf("cell outside region changed: weight %v, want frozen 1.0", w)
	}

	s.SetRegion(g.FullRegion())
	settle(t, s, 500)
	if w := mustCell(t, g, 8, 5).Weight(); w != 0 {
		t.Errorf("reloaded cell weight = %v, want drained to 0", w)
	}
	var floor float64
	for x := int32(0); x < 12; x++ {
		floor += float64(mustCell(t, g, x, 0).Weight())
	}
	if math.Abs(floor-1.0) > 0.01 {
		t.Errorf("floor holds %v, want ~1.0 after reload", floor)
	}
}

func TestChangeListenerFiresForCommittedCells(t *testing.T) {
	g := NewGrid(1, 3, DefaultParams())
	mustCell(t, g, 0, 2).AddWeight(1.0)

	type coord struct{ x, y int32 }
	var changed []coord
	s := NewSimulator(g)
	s.SetChangeListener(func(x, y int32) {
		changed = append(changed, coord{x, y})
	})
	s.Step()

	want := map[coord]bool{{0, 2}: true, {0, 1}: true}
	if len(changed) != 2 {
		t.Fatalf("got %d change notifications %v, want 2", len(changed), changed)
	}
	for _, c := range changed {
		if !want[c] {
			t.Errorf("unexpected change notification at (%d,%d)", c.x, c.y)
		}
	}
}

func TestMarkDirtyAt(t *testing.T) {
	g := NewGrid(2, 1, DefaultParams())
	s := NewSimulator(g)
	s.Step()
	if s.Pending() {
		t.Fatal("empty grid should settle immediately")
	}

	var notified int
	s.SetChangeListener(func(x, y int32) { notified++ })

	s.MarkDirtyAt(5, 5)
	if s.Pending() || notified != 0 {
		t.Error("out-of-bounds MarkDirtyAt should be ignored")
	}

	s.MarkDirtyAt(1, 0)
	if !s.Pending() {
		t.Error("MarkDirtyAt did not wake the scheduler")
	}
	if notified != 1 {
		t.Errorf("MarkDirtyAt sent %d notifications, want 1", notified)
	}
	if g.stable[g.index(1, 0)] {
		t.Error("MarkDirtyAt left the cell stable")
	}
}

func TestDisabledSimulationIsInert(t *testing.T) {
	p := DefaultParams()
	p.Enabled = false
	g := NewGrid(1, 2, p)
	mustCell(t, g, 0, 1).AddWeight(1.0)

	s := NewSimulator(g)
	if st := s.Step(); st.Scanned != 0 || st.Changed != 0 {
		t.Errorf("disabled Step did work: %+v", st)
	}
	if _, ticked := s.Update(1.0); ticked {
		t.Error("disabled Update ticked")
	}
	if w := mustCell(t, g, 0, 1).Weight(); w != 1.0 {
		t.Errorf("disabled simulation moved fluid: weight %v", w)
	}
}

// Down-flow culls faint horizontal seepage at commit; top-down keeps it.
func TestResidueCulling(t *testing.T) {
	g := NewGrid(2, 1, DefaultParams())
	mustCell(t, g, 0, 0).AddWeight(0.012)

	s := NewSimulator(g)
	st := s.Step()
	if st.Emptied != 1 {
		t.Errorf("emptied %d cells, want 1", st.Emptied)
	}
	if math.Abs(st.Residue-0.003) > 1e-5 {
		t.Errorf("culled residue %v, want ~0.003", st.Residue)
	}
	if w := mustCell(t, g, 1, 0).Weight(); w != 0 {
		t.Errorf("residue cell weight = %v, want culled to 0", w)
	}

	p := DefaultParams()
	p.TopDown = true
	g = NewGrid(2, 1, p)
	mustCell(t, g, 0, 0).AddWeight(0.012)

	s = NewSimulator(g)
	st = s.Step()
	if st.Emptied != 0 {
		t.Errorf("top-down emptied %d cells, want 0", st.Emptied)
	}
	if w := mustCell(t, g, 1, 0).Weight(); abs32(w-0.003) > 1e-5 {
		t.Errorf("top-down residue weight = %v, want kept at ~0.003", w)
	}
}

// In top-down mode the downward direction uses the same quarter rule as
// the sides instead of the gravity fill.
func TestTopDownUsesQuarterRuleDownward(t *testing.T) {
	p := DefaultParams()
	p.TopDown = true
	g := NewGrid(1, 2, p)
	mustCell(t, g, 0, 1).AddWeight(1.0)

	s := NewSimulator(g)
	s.Step()
	if w := mustCell(t, g, 0, 0).Weight(); abs32(w-0.25) > 1e-5 {
		t.Errorf("downward transfer = %v, want quarter of difference 0.25", w)
	}
	if w := mustCell(t, g, 0, 1).Weight(); abs32(w-0.75) > 1e-5 {
		t.Errorf("source weight = %v, want 0.75", w)
	}
}

// An overfilled cell with headroom above vents the excess upward through
// the pressure rule.
func TestOverfilledCellVentsUpward(t *testing.T) {
	g := NewGrid(1, 2, DefaultParams())
	mustCell(t, g, 0, 0).AddWeight(1.5)

	s := NewSimulator(g)
	s.Step()
	if w := mustCell(t, g, 0, 1).Weight(); abs32(w-0.49505) > 1e-4 {
		t.Errorf("vented weight = %v, want ~0.49505", w)
	}
	if w := mustCell(t, g, 0, 0).Weight(); abs32(w-1.00495) > 1e-4 {
		t.Errorf("source weight = %v, want ~1.00495", w)
	}
}

// A cell that drains to exactly zero in one tick wakes its neighbors.
func TestAbruptDrainWakesNeighbors(t *testing.T) {
	g := NewGrid(1, 3, DefaultParams())
	mustCell(t, g, 0, 2).AddWeight(1.0)

	s := NewSimulator(g)
	st := s.Step()
	if st.Drained != 1 {
		t.Errorf("drained %d cells, want 1 (the emptied source)", st.Drained)
	}
	if g.stable[g.index(0, 2)] {
		t.Error("drained cell left stable")
	}
}
