package renderer

import (
	"testing"

	"seep/fluid"
	"seep/world"
)

func TestFluidPixelEmptyAndSolid(t *testing.T) {
	w := world.New(32, 32, 16, fluid.DefaultParams())
	w.SetBlock(4, 4, world.BlockStone)
	grid := w.Grid()
	params := grid.Params()

	if px := fluidPixel(grid, params, 10, 10); px.A != 0 {
		t.Errorf("empty cell pixel alpha = %d, want 0", px.A)
	}
	if px := fluidPixel(grid, params, 4, 4); px.A != 0 {
		t.Errorf("solid cell pixel alpha = %d, want 0", px.A)
	}
	if px := fluidPixel(grid, params, -1, 0); px.A != 0 {
		t.Errorf("out of bounds pixel alpha = %d, want 0", px.A)
	}
}

func TestFluidPixelBasicWater(t *testing.T) {
	w := world.New(32, 32, 16, fluid.DefaultParams())
	if !w.AddFluid(8, 8, 0.5) {
		t.Fatal("AddFluid failed")
	}
	grid := w.Grid()
	px := fluidPixel(grid, grid.Params(), 8, 8)

	if px.R != waterBase.R || px.G != waterBase.G || px.B != waterBase.B {
		t.Errorf("basic fluid pixel = %+v, want water base color", px)
	}
	// Half full: alpha = 210 * (0.35 + 0.65*0.5)
	if px.A < 135 || px.A > 148 {
		t.Errorf("half-full alpha = %d, want about 142", px.A)
	}

	w.AddFluid(8, 8, 0.5)
	full := fluidPixel(grid, grid.Params(), 8, 8)
	if full.A <= px.A {
		t.Errorf("full cell alpha %d not above half-full %d", full.A, px.A)
	}
}

func TestFluidPixelAdvancedColor(t *testing.T) {
	params := fluid.DefaultParams()
	params.Advanced = true
	w := world.New(32, 32, 16, params)

	lava := fluid.Color{R: 207, G: 83, B: 20, A: 245}
	if !w.AddTypedFluid(8, 8, 0.5, 3, lava) {
		t.Fatal("AddTypedFluid failed")
	}

	grid := w.Grid()
	px := fluidPixel(grid, grid.Params(), 8, 8)
	if px.R != lava.R || px.G != lava.G || px.B != lava.B {
		t.Errorf("advanced pixel = %+v, want the cell's lava color", px)
	}
}

func TestFluidPixelOverfillDims(t *testing.T) {
	w := world.New(32, 32, 16, fluid.DefaultParams())
	w.AddFluid(8, 8, 2.0)
	grid := w.Grid()

	px := fluidPixel(grid, grid.Params(), 8, 8)
	if px.R != dim(waterBase.R, 32) || px.G != dim(waterBase.G, 32) || px.B != dim(waterBase.B, 32) {
		t.Errorf("overfilled pixel = %+v, want base dimmed by 32", px)
	}
	if px.A != waterBase.A {
		t.Errorf("overfilled alpha = %d, want full %d", px.A, waterBase.A)
	}
}

func TestDimClamps(t *testing.T) {
	if got := dim(20, 32); got != 0 {
		t.Errorf("dim(20, 32) = %d, want 0", got)
	}
	if got := dim(200, 32); got != 168 {
		t.Errorf("dim(200, 32) = %d, want 168", got)
	}
}

func BenchmarkBuildPixelsFullGrid(b *testing.B) {
	w := world.New(256, 128, 16, fluid.DefaultParams())
	for x := int32(0); x < 256; x++ {
		w.SetBlock(x, 0, world.BlockStone)
		for y := int32(1); y < 40; y++ {
			w.AddFluid(x, y, 0.9)
		}
	}
	f := NewFluidRenderer(w, 4)
	full := fluid.Region{MaxX: 256, MaxY: 128}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.buildPixels(full)
	}
}
