package fluid

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// basinGrid builds a grid with a solid floor and solid side walls,
// leaving the interior open.
func basinGrid(t *testing.T, width, height int32, p Params) *Grid {
	t.Helper()
	g := NewGrid(width, height, p)
	for x := int32(0); x < width; x++ {
		mustCell(t, g, x, 0).SetSolid()
	}
	for y := int32(0); y < height; y++ {
		mustCell(t, g, 0, y).SetSolid()
		mustCell(t, g, width-1, y).SetSolid()
	}
	return g
}

func TestFillFloodsBasinUpToMaxY(t *testing.T) {
	g := basinGrid(t, 7, 5, DefaultParams())
	f := NewPoolFiller(g)
	f.Fill(3, 2, 0.8, 2)

	for x := int32(1); x <= 5; x++ {
		if w := mustCell(t, g, x, 2).Weight(); abs32(w-0.8) > 1e-5 {
			t.Errorf("surface cell (%d,2) weight = %v, want 0.8", x, w)
		}
		// One row deeper carries one extra PressureWeight.
		if w := mustCell(t, g, x, 1).Weight(); abs32(w-0.81) > 1e-5 {
			t.Errorf("deep cell (%d,1) weight = %v, want 0.81", x, w)
		}
		if w := mustCell(t, g, x, 3).Weight(); w != 0 {
			t.Errorf("cell (%d,3) above maxY holds %v, want 0", x, w)
		}
		if g.fillKeys[g.index(x, 2)] == 0 {
			t.Errorf("filled cell (%d,2) not tagged with a fill key", x)
		}
		if g.fillKeys[g.index(x, 3)] != 0 {
			t.Errorf("cell (%d,3) above maxY tagged with a fill key", x)
		}
	}
}

// Refilling over an earlier pool evicts the stale fluid instead of
// stacking on top of it; untagged fluid is topped up.
func TestFillEvictsStaleAndTopsUpNatural(t *testing.T) {
	g := basinGrid(t, 7, 5, DefaultParams())
	f := NewPoolFiller(g)

	f.Fill(3, 2, 0.5, 2)
	f.Fill(3, 2, 0.7, 2)
	if w := mustCell(t, g, 4, 2).Weight(); abs32(w-0.7) > 1e-5 {
		t.Errorf("refilled cell weight = %v, want 0.7 (stale 0.5 evicted)", w)
	}

	g2 := basinGrid(t, 7, 5, DefaultParams())
	mustCell(t, g2, 2, 2).AddWeight(0.3)
	f2 := NewPoolFiller(g2)
	f2.Fill(3, 2, 0.5, 2)
	if w := mustCell(t, g2, 2, 2).Weight(); abs32(w-0.8) > 1e-5 {
		t.Errorf("untagged fluid cell weight = %v, want topped up to 0.8", w)
	}
}

func TestFillTypedStampsDensityAndColor(t *testing.T) {
	p := DefaultParams()
	p.Advanced = true
	g := basinGrid(t, 7, 5, p)
	cyan := Color{G: 255, B: 255, A: 255}

	f := NewPoolFiller(g)
	f.FillTyped(3, 2, 0.8, 2, cyan, 2)

	c := mustCell(t, g, 2, 1)
	if c.Density() != 2 {
		t.Errorf("filled cell density = %d, want 2", c.Density())
	}
	if c.Color() != cyan {
		t.Errorf("filled cell color = %+v, want %+v", c.Color(), cyan)
	}
}

// An open region larger than the iteration cap produces a partial fill
// and a warning rather than an unbounded flood.
func TestFillStopsAtIterationCap(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	g := NewGrid(150, 80, DefaultParams())
	f := NewPoolFiller(g)
	f.Fill(75, 40, 0.5, 79)

	filled := 0
	for i := range g.fillKeys {
		if g.fillKeys[i] != 0 {
			filled++
		}
	}
	if filled == 0 {
		t.Fatal("nothing filled")
	}
	if filled > maxFillIterations {
		t.Errorf("filled %d cells, above the %d iteration cap", filled, maxFillIterations)
	}
	if filled == 150*80 {
		t.Error("fill flooded the whole grid, expected a partial fill")
	}
	if !strings.Contains(buf.String(), "iteration cap") {
		t.Error("no iteration-cap warning logged")
	}
}

func TestClearRetractsPool(t *testing.T) {
	g := basinGrid(t, 7, 5, DefaultParams())
	f := NewPoolFiller(g)
	f.Fill(3, 2, 0.8, 2)
	f.Clear(3, 2)

	for x := int32(1); x <= 5; x++ {
		for y := int32(1); y <= 2; y++ {
			if w := mustCell(t, g, x, y).Weight(); w != 0 {
				t.Errorf("cleared cell (%d,%d) weight = %v, want 0", x, y, w)
			}
			if k := g.fillKeys[g.index(x, y)]; k != 0 {
				t.Errorf("cleared cell (%d,%d) still tagged %d", x, y, k)
			}
		}
	}
}

func TestPoolDisabledIsNoOp(t *testing.T) {
	p := DefaultParams()
	p.Enabled = false
	g := basinGrid(t, 7, 5, p)
	f := NewPoolFiller(g)
	f.Fill(3, 2, 0.8, 2)

	if w := mustCell(t, g, 3, 2).Weight(); w != 0 {
		t.Errorf("disabled fill added fluid: weight %v", w)
	}
}

func TestPoolModeMismatchPanics(t *testing.T) {
	basic := NewGrid(3, 3, DefaultParams())
	adv := DefaultParams()
	adv.Advanced = true
	advanced := NewGrid(3, 3, adv)

	mustPanic(t, "FillTyped on basic grid", func() {
		NewPoolFiller(basic).FillTyped(1, 1, 0.5, 0, Color{}, 2)
	})
	mustPanic(t, "Fill on advanced grid", func() {
		NewPoolFiller(advanced).Fill(1, 1, 0.5, 2)
	})
}

func BenchmarkFillWideBasin(b *testing.B) {
	g := NewGrid(256, 64, DefaultParams())
	for x := int32(0); x < 256; x++ {
		c, _ := g.At(x, 0)
		c.SetSolid()
	}
	for y := int32(0); y < 64; y++ {
		left, _ := g.At(0, y)
		left.SetSolid()
		right, _ := g.At(255, y)
		right.SetSolid()
	}
	f := NewPoolFiller(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Each fill evicts the previous iteration's tagged fluid.
		f.Fill(128, 20, 0.8, 20)
	}
}
