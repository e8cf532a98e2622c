package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/world"
)

// Camera pan speed in world pixels per frame at zoom 1.
const panSpeed = 8.0

// Weight large enough to empty any cell in one erase.
const eraseAll = float32(1 << 20)

// handleInput processes keyboard and mouse for the frame.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if g.paused {
		if rl.IsKeyPressed(rl.KeyComma) {
			g.pendingSteps = 1
		}
		if rl.IsKeyPressed(rl.KeyPeriod) {
			g.pendingSteps = 10
		}
	}

	if rl.IsKeyPressed(rl.KeyPageUp) && g.stepsPerUpdate < 8 {
		g.stepsPerUpdate++
	}
	if rl.IsKeyPressed(rl.KeyPageDown) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}

	g.handleToolKeys()
	g.handleOverlayKeys()

	if rl.IsKeyPressed(rl.KeyT) {
		g.tunables.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyI) {
		g.showCellPanel = !g.showCellPanel
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	g.handleCamera()
	g.handleMouse()
}

// handleToolKeys maps the digit row to tools and the brackets to brush
// size.
func (g *Game) handleToolKeys() {
	keys := [...]int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive, rl.KeySix, rl.KeySeven}
	for i, k := range keys {
		if rl.IsKeyPressed(k) {
			g.tool = Tool(i)
			if p, ok := g.tool.preset(); ok {
				g.pourFluid = p
			}
		}
	}

	if rl.IsKeyPressed(rl.KeyLeftBracket) && g.brushRad > 0 {
		g.brushRad--
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) && g.brushRad < maxBrushRadius {
		g.brushRad++
	}
}

// handleCamera applies pan, zoom and reset controls.
func (g *Game) handleCamera() {
	pan := float32(panSpeed) / g.camera.Zoom
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-pan, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(pan, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -pan)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, pan)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouse tracks the hovered cell and applies the active tool.
func (g *Game) handleMouse() {
	x, y, ok := g.cellAtMouse()
	g.hoverX, g.hoverY, g.hoverValid = x, y, ok
	if !ok || g.pointerOverUI() {
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.applyTool(x, y, rl.IsMouseButtonPressed(rl.MouseButtonLeft))
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		if g.tool == ToolPool {
			g.clearPoolAt(x, y)
		} else {
			g.removeDeviceAt(x, y)
		}
	}
}

// cellAtMouse maps the mouse position to world cell coordinates.
func (g *Game) cellAtMouse() (int32, int32, bool) {
	m := rl.GetMousePosition()
	wx, wy := g.camera.ScreenToWorld(m.X, m.Y)
	if wx < 0 || wy < 0 {
		return 0, 0, false
	}

	cs := g.cfg.Derived.CellSize32
	cx := int32(wx / cs)
	// Pixel rows run top-down; cell rows bottom-up.
	cy := g.world.Height() - 1 - int32(wy/cs)
	if cx >= g.world.Width() || cy < 0 || cy >= g.world.Height() {
		return 0, 0, false
	}
	return cx, cy, true
}

// applyTool applies the active tool at (x, y). Continuous tools repeat
// while the button is held; placement tools fire only on the press.
func (g *Game) applyTool(x, y int32, pressed bool) {
	switch g.tool {
	case ToolWater, ToolLava:
		g.pourAt(x, y)
	case ToolStone:
		g.paintBlocks(x, y, world.BlockStone)
	case ToolErase:
		g.eraseAt(x, y)
	case ToolEmitter:
		if pressed {
			g.spawnEmitter(x, y)
		}
	case ToolDrain:
		if pressed {
			g.spawnDrain(x, y)
		}
	case ToolPool:
		if pressed {
			g.fillPoolAt(x, y)
		}
	}
}

// pourAt adds the active fluid in a filled circle around (x, y).
func (g *Game) pourAt(cx, cy int32) {
	amount := float32(g.cfg.Sandbox.PourAmount)
	advanced := g.world.Advanced()
	p := g.pourFluid

	forEachBrushCell(cx, cy, int32(g.brushRad), func(x, y int32) {
		var ok bool
		if advanced {
			ok = g.world.AddTypedFluid(x, y, amount, p.density, p.color)
		} else {
			ok = g.world.AddFluid(x, y, amount)
		}
		if ok {
			g.collector.RecordWeightAdded(float64(amount))
		}
	})
}

// paintBlocks sets solid blocks in the brush circle. Fluid displaced by
// a placed block leaves the world and is booked as removed.
func (g *Game) paintBlocks(cx, cy int32, b world.Block) {
	forEachBrushCell(cx, cy, int32(g.brushRad), func(x, y int32) {
		var displaced float64
		if c, ok := g.world.FluidBlock(x, y); ok && !c.IsSolid() && c.Weight() > 0 {
			displaced = float64(c.Weight())
		}
		if g.world.SetBlock(x, y, b) && displaced > 0 {
			g.collector.RecordWeightRemoved(displaced)
		}
	})
}

// eraseAt clears blocks and fluid in the brush circle.
func (g *Game) eraseAt(cx, cy int32) {
	forEachBrushCell(cx, cy, int32(g.brushRad), func(x, y int32) {
		if g.world.Block(x, y).Solid() {
			g.world.SetBlock(x, y, world.BlockAir)
			return
		}
		if removed := g.world.RemoveFluid(x, y, eraseAll); removed > 0 {
			g.collector.RecordWeightRemoved(float64(removed))
		}
	})
}

// fillPoolAt flood-fills standing fluid from (x, y) up to the clicked
// level.
func (g *Game) fillPoolAt(x, y int32) {
	grid := g.world.Grid()
	before := grid.TotalWeight()
	level := grid.Params().MaxWeight

	var cells int
	if g.world.Advanced() {
		p := g.pourFluid
		cells = g.world.Pool().FillTyped(x, y, level, p.density, p.color, y)
	} else {
		cells = g.world.Pool().Fill(x, y, level, y)
	}
	if cells == 0 {
		return
	}

	g.collector.RecordFill(cells, grid.TotalWeight()-before)
	g.world.UpdateFluid()
	if g.fluidR != nil {
		g.fluidR.MarkAllDirty()
	}
}

// clearPoolAt removes the connected pool under (x, y).
func (g *Game) clearPoolAt(x, y int32) {
	grid := g.world.Grid()
	before := grid.TotalWeight()

	cells := g.world.Pool().Clear(x, y)
	if cells == 0 {
		return
	}

	g.collector.RecordClear(cells, grid.TotalWeight()-before)
	g.world.UpdateFluid()
	if g.fluidR != nil {
		g.fluidR.MarkAllDirty()
	}
}

// forEachBrushCell visits the cells of a filled circle of radius r.
// Radius zero visits just the center.
func forEachBrushCell(cx, cy, r int32, fn func(x, y int32)) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			fn(cx+dx, cy+dy)
		}
	}
}

// pointerOverUI reports whether the mouse sits on a visible panel, so
// painting does not bleed through them.
func (g *Game) pointerOverUI() bool {
	m := rl.GetMousePosition()
	for _, r := range g.panelRects() {
		if m.X >= r.X && m.X < r.X+r.Width && m.Y >= r.Y && m.Y < r.Y+r.Height {
			return true
		}
	}
	return false
}

// panelRects returns the screen rectangles of the visible panels.
func (g *Game) panelRects() []rl.Rectangle {
	var rects []rl.Rectangle
	if g.controls.IsVisible() && g.controlsHeight > 0 {
		rects = append(rects, rl.Rectangle{
			X: panelPad, Y: 130,
			Width: controlsWidth, Height: float32(g.controlsHeight),
		})
	}
	if g.tunables.IsVisible() {
		rects = append(rects, rl.Rectangle{
			X: float32(g.screenWidth - tunablesWidth - panelPad), Y: panelPad,
			Width: tunablesWidth, Height: 420,
		})
	}
	if g.showCellPanel {
		rects = append(rects, rl.Rectangle{
			X: float32(g.screenWidth - cellPanelWidth - panelPad), Y: cellPanelY,
			Width: cellPanelWidth, Height: 190,
		})
	}
	return rects
}

// handleResize reacts to window size changes.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = int32(rl.GetScreenWidth())
	g.screenHeight = int32(rl.GetScreenHeight())

	g.camera.Resize(float32(g.screenWidth), float32(g.screenHeight))
	g.background.Resize(g.screenWidth, g.screenHeight)
	g.tunables.SetPosition(g.screenWidth-tunablesWidth-panelPad, panelPad)
	g.cellPanel.SetPosition(g.screenWidth-cellPanelWidth-panelPad, cellPanelY)
}
