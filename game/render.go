package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/fluid"
	"seep/telemetry"
	"seep/ui"
)

const footerControls = "space pause | , . step | pgup/pgdn speed | 1-7 tools | [ ] brush | t tunables | i inspect | o panels | wheel zoom | home reset"

// Draw renders one frame and closes the perf sample Update opened.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()
	g.perfCollector.StartPhase(telemetry.PhaseRender)

	rl.BeginDrawing()

	g.background.Draw(g.viewDepth())
	g.terrain.Draw(g.camera)
	g.fluidR.Draw(g.camera)
	g.drawOverlays()
	g.drawDevices()
	g.drawBrushCursor()

	g.perfCollector.StartPhase(telemetry.PhaseUI)
	g.drawUI()

	rl.EndDrawing()
	g.perfCollector.EndTick()
}

// drawUI renders the HUD and whichever panels are open.
func (g *Game) drawUI() {
	grid := g.world.Grid()
	perf := g.perfCollector.Stats()

	g.hud.Draw(ui.HUDData{
		Title:         "Seep",
		Tick:          g.tick,
		Speed:         g.stepsPerUpdate,
		FPS:           int32(perf.FPS),
		Paused:        g.paused,
		Settled:       !g.world.Sim().Pending(),
		TotalWeight:   grid.TotalWeight(),
		UnstableCells: grid.UnstableCount(),
		Tool:          g.tool.String(),
		BrushRadius:   g.brushRad,
		ScreenWidth:   g.screenWidth,
		ScreenHeight:  g.screenHeight,
	})

	g.controlsHeight = g.controls.Draw(g.overlays)

	if g.tunables.IsVisible() {
		if p, changed := g.tunables.Draw(grid.Params()); changed {
			g.world.SetTunables(p)
		}
	}

	if g.showCellPanel {
		if info, ok := g.buildCellInfo(); ok {
			g.cellPanel.Draw(info)
		}
	}

	g.hud.DrawControls(g.screenWidth, g.screenHeight, footerControls)
}

// drawDevices marks every placed emitter and drain.
func (g *Game) drawDevices() {
	half := g.cfg.Derived.CellSize32 * g.camera.Zoom / 2

	eq := g.emitterFilter.Query()
	for eq.Next() {
		pos, em := eq.Get()
		sx, sy := g.cellScreenCenter(pos.X, pos.Y)
		col := rl.SkyBlue
		if !em.Color.IsZero() {
			col = rl.Color{R: em.Color.R, G: em.Color.G, B: em.Color.B, A: 255}
		}
		rl.DrawCircle(int32(sx), int32(sy), half+1, col)
		rl.DrawCircleLines(int32(sx), int32(sy), half+3, rl.White)
	}

	dq := g.drainFilter.Query()
	for dq.Next() {
		pos, _ := dq.Get()
		sx, sy := g.cellScreenCenter(pos.X, pos.Y)
		size := int32(half*2) + 2
		rl.DrawRectangle(int32(sx)-size/2, int32(sy)-size/2, size, size, rl.Color{R: 40, G: 40, B: 48, A: 255})
		rl.DrawRectangleLines(int32(sx)-size/2-2, int32(sy)-size/2-2, size+4, size+4, rl.White)
	}
}

// drawBrushCursor outlines the brush footprint at the hovered cell.
func (g *Game) drawBrushCursor() {
	if !g.hoverValid {
		return
	}
	sx, sy := g.cellScreenCenter(g.hoverX, g.hoverY)
	cs := g.cfg.Derived.CellSize32 * g.camera.Zoom
	col := rl.Color{R: 255, G: 255, B: 255, A: 120}

	switch g.tool {
	case ToolEmitter, ToolDrain, ToolPool:
		rl.DrawRectangleLines(int32(sx-cs/2), int32(sy-cs/2), int32(cs)+1, int32(cs)+1, col)
	default:
		rl.DrawCircleLines(int32(sx), int32(sy), (float32(g.brushRad)+0.5)*cs, col)
	}
}

// cellScreenCenter returns the screen position of a cell's center.
func (g *Game) cellScreenCenter(x, y int32) (float32, float32) {
	cs := g.cfg.Derived.CellSize32
	px := (float32(x) + 0.5) * cs
	py := (float32(g.world.Height()-1-y) + 0.5) * cs
	return g.camera.WorldToScreen(px, py)
}

// viewDepth maps the camera's vertical position to a 0..1 sky-to-cave
// blend for the background.
func (g *Game) viewDepth() float32 {
	h := g.cfg.Derived.WorldPixelH
	if h <= 0 {
		return 0
	}
	return g.camera.Y / h
}

// updateLoadedRegion keeps simulation focused on the chunks near the
// view, plus the configured margin.
func (g *Game) updateLoadedRegion() {
	minX, minY, maxX, maxY := g.camera.VisibleWorldBounds()
	cs := g.cfg.Derived.CellSize32
	h := g.world.Height()
	margin := int32(g.cfg.Render.LoadedMargin) * g.world.ChunkSize()

	g.world.SetLoadedRegion(fluid.Region{
		MinX: int32(minX/cs) - margin,
		MaxX: int32(maxX/cs) + 1 + margin,
		// Pixel rows run top-down; cell rows bottom-up.
		MinY: h - 1 - int32(maxY/cs) - margin,
		MaxY: h - int32(minY/cs) + margin,
	})
}
