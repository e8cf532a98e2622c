package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/ui"
	"seep/world"
)

// Ticks a chunk stays in the flow activity overlay after its last
// change.
const activityFadeTicks = 60

// handleOverlayKeys toggles overlays from their registered hotkeys.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}
}

// drawOverlays paints the enabled debug overlays over the world.
func (g *Game) drawOverlays() {
	stability := g.overlays.IsEnabled(ui.OverlayStability)
	density := g.overlays.IsEnabled(ui.OverlayDensity)
	pressure := g.overlays.IsEnabled(ui.OverlayPressure)
	if stability || density || pressure {
		g.drawCellOverlay(stability, density, pressure)
	}

	if g.overlays.IsEnabled(ui.OverlayChunkGrid) {
		g.drawChunkGrid()
	}
	if g.overlays.IsEnabled(ui.OverlayFlowActivity) {
		g.drawFlowActivity()
	}
}

// drawCellOverlay tints visible fluid cells. The three cell overlays
// are mutually exclusive in the registry, so at most one branch draws.
func (g *Game) drawCellOverlay(stability, density, pressure bool) {
	grid := g.world.Grid()
	params := grid.Params()
	cs := g.cfg.Derived.CellSize32
	x0, y0, x1, y1 := g.visibleCells()

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c, ok := grid.At(x, y)
			if !ok || c.IsSolid() || c.Weight() <= 0 {
				continue
			}

			var col rl.Color
			switch {
			case pressure:
				excess := c.Weight() - params.MaxWeight
				if excess <= 0 {
					continue
				}
				a := excess * 300
				if a > 160 {
					a = 160
				}
				col = rl.Color{R: 214, G: 81, B: 255, A: uint8(40 + a)}
			case density:
				col = densityTint(c.Density())
			case stability:
				if c.Stable() {
					col = rl.Color{R: 80, G: 220, B: 120, A: 80}
				} else {
					col = rl.Color{R: 235, G: 84, B: 62, A: 110}
				}
			}
			g.drawCellRect(x, y, cs, col)
		}
	}
}

func densityTint(d uint8) rl.Color {
	switch d {
	case 0, world.WaterDensity:
		return rl.Color{R: 64, G: 129, B: 230, A: 90}
	case world.LavaDensity:
		return rl.Color{R: 230, G: 126, B: 34, A: 110}
	default:
		return rl.Color{R: 80, G: 200, B: 120, A: 90}
	}
}

// drawChunkGrid draws chunk boundary lines over the world.
func (g *Game) drawChunkGrid() {
	cs := g.cfg.Derived.CellSize32
	chunk := float32(g.world.ChunkSize()) * cs
	worldW := float32(g.world.Width()) * cs
	worldH := float32(g.world.Height()) * cs
	col := rl.Color{R: 255, G: 255, B: 255, A: 40}

	for x := float32(0); x <= worldW; x += chunk {
		sx, sy0 := g.camera.WorldToScreen(x, 0)
		_, sy1 := g.camera.WorldToScreen(x, worldH)
		rl.DrawLine(int32(sx), int32(sy0), int32(sx), int32(sy1), col)
	}
	for y := float32(0); y <= worldH; y += chunk {
		sx0, sy := g.camera.WorldToScreen(0, y)
		sx1, _ := g.camera.WorldToScreen(worldW, y)
		rl.DrawLine(int32(sx0), int32(sy), int32(sx1), int32(sy), col)
	}
}

// drawFlowActivity outlines chunks that changed recently, fading with
// age.
func (g *Game) drawFlowActivity() {
	cs := g.cfg.Derived.CellSize32
	worldH := g.world.Height()

	for c, last := range g.activity {
		age := g.tick - last
		if age < 0 || age > activityFadeTicks {
			continue
		}
		alpha := uint8(200 - 200*age/activityFadeTicks)

		r := g.world.ChunkRegion(c)
		px := float32(r.MinX) * cs
		py := float32(worldH-r.MaxY) * cs
		sx, sy := g.camera.WorldToScreen(px, py)
		w := float32(r.MaxX-r.MinX) * cs * g.camera.Zoom
		h := float32(r.MaxY-r.MinY) * cs * g.camera.Zoom

		rl.DrawRectangleLines(int32(sx), int32(sy), int32(w), int32(h),
			rl.Color{R: 255, G: 196, B: 0, A: alpha})
	}
}

// visibleCells returns the cell bounds the camera currently covers.
func (g *Game) visibleCells() (x0, y0, x1, y1 int32) {
	minX, minY, maxX, maxY := g.camera.VisibleWorldBounds()
	cs := g.cfg.Derived.CellSize32
	w, h := g.world.Width(), g.world.Height()

	x0 = clampi(int32(minX/cs), 0, w-1)
	x1 = clampi(int32(maxX/cs)+1, 0, w-1)
	// Pixel rows run top-down; cell rows bottom-up.
	y0 = clampi(h-1-int32(maxY/cs)-1, 0, h-1)
	y1 = clampi(h-1-int32(minY/cs), 0, h-1)
	return x0, y0, x1, y1
}

// drawCellRect fills one cell's screen rectangle.
func (g *Game) drawCellRect(x, y int32, cs float32, col rl.Color) {
	px := float32(x) * cs
	py := float32(g.world.Height()-1-y) * cs
	sx, sy := g.camera.WorldToScreen(px, py)
	size := int32(cs*g.camera.Zoom) + 1
	rl.DrawRectangle(int32(sx), int32(sy), size, size, col)
}

func clampi(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
