package renderer

import (
	"testing"

	"seep/fluid"
	"seep/world"
)

// newTestWorld builds a 64x48 world with a flat stone floor up to y=9
// and a grass cap at y=10 in column 5.
func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(64, 48, 16, fluid.DefaultParams())
	for x := int32(0); x < 64; x++ {
		for y := int32(0); y < 10; y++ {
			w.SetBlock(x, y, world.BlockStone)
		}
	}
	w.SetBlock(5, 10, world.BlockGrass)
	return w
}

func TestScanSurface(t *testing.T) {
	w := newTestWorld(t)
	tr := NewTerrainRenderer(w, 4)
	tr.scanSurface(0, w.Width())

	if got := tr.surface[5]; got != 10 {
		t.Errorf("surface[5] = %d, want 10 for the grass cap", got)
	}
	if got := tr.surface[6]; got != 9 {
		t.Errorf("surface[6] = %d, want 9 for the stone floor", got)
	}

	// Carve the whole column and rescan: no solid left.
	for y := int32(0); y < 10; y++ {
		w.SetBlock(20, y, world.BlockAir)
	}
	tr.scanSurface(20, 21)
	if got := tr.surface[20]; got != -1 {
		t.Errorf("surface[20] = %d after carving, want -1", got)
	}
}

func TestCellPixelSkyCaveAndBlocks(t *testing.T) {
	w := newTestWorld(t)
	tr := NewTerrainRenderer(w, 4)
	tr.scanSurface(0, w.Width())

	h := w.Height()

	// Air above the surface is transparent sky.
	if px := tr.cellPixel(6, 30, h); px.A != 0 {
		t.Errorf("sky pixel alpha = %d, want 0", px.A)
	}

	// An air pocket under the surface reads as cave backdrop.
	w.SetBlock(6, 4, world.BlockAir)
	if px := tr.cellPixel(6, 4, h); px.A != 255 || px.R >= 64 {
		t.Errorf("cave pixel = %+v, want opaque dark rock", px)
	}

	// Solid cells are opaque and keep their palette's dominant channel.
	grass := tr.cellPixel(5, 10, h)
	if grass.A != 255 {
		t.Errorf("grass alpha = %d, want 255", grass.A)
	}
	if grass.G <= grass.R || grass.G <= grass.B {
		t.Errorf("grass pixel = %+v, want green dominant", grass)
	}
	stone := tr.cellPixel(5, 9, h)
	if stone.A != 255 {
		t.Errorf("stone alpha = %d, want 255", stone.A)
	}
}

func TestBuildPixelsTopRowFirst(t *testing.T) {
	w := newTestWorld(t)
	tr := NewTerrainRenderer(w, 4)
	tr.scanSurface(0, w.Width())

	// 1 column, 2 rows spanning the floor top at y=9 and the air at
	// y=10 in column 0. Texture rows run top-down, so row 0 is y=10.
	px := tr.buildPixels(fluid.Region{MinX: 0, MinY: 9, MaxX: 1, MaxY: 11})
	if len(px) != 2 {
		t.Fatalf("got %d pixels, want 2", len(px))
	}
	if px[0].A != 0 {
		t.Errorf("top pixel (y=10, air) alpha = %d, want 0", px[0].A)
	}
	if px[1].A != 255 {
		t.Errorf("bottom pixel (y=9, stone) alpha = %d, want 255", px[1].A)
	}
}

func TestTexRectFlipsVertically(t *testing.T) {
	r := fluid.Region{MinX: 4, MinY: 8, MaxX: 12, MaxY: 16}
	rect := texRect(r, 48)

	if rect.X != 4 || rect.Y != 32 {
		t.Errorf("rect origin = (%v, %v), want (4, 32)", rect.X, rect.Y)
	}
	if rect.Width != 8 || rect.Height != 8 {
		t.Errorf("rect size = (%v, %v), want (8, 8)", rect.Width, rect.Height)
	}

	// The world's top chunk maps to texture row 0.
	top := texRect(fluid.Region{MinX: 0, MinY: 32, MaxX: 16, MaxY: 48}, 48)
	if top.Y != 0 {
		t.Errorf("top chunk maps to texture y = %v, want 0", top.Y)
	}
}

func TestShadeClamps(t *testing.T) {
	if got := shade(250, 8, 1.0); got != 255 {
		t.Errorf("shade(250, +8, 1.0) = %d, want clamp to 255", got)
	}
	if got := shade(4, -8, 1.0); got != 0 {
		t.Errorf("shade(4, -8, 1.0) = %d, want clamp to 0", got)
	}
	if full, dim := shade(100, 0, 1.0), shade(100, 0, 0.75); dim >= full {
		t.Errorf("depth shading did not darken: %d at 0.75 vs %d at 1.0", dim, full)
	}
}
