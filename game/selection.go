package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/ui"
)

// buildCellInfo snapshots the hovered cell for the inspector panel.
func (g *Game) buildCellInfo() (ui.CellInfo, bool) {
	if !g.hoverValid {
		return ui.CellInfo{}, false
	}
	x, y := g.hoverX, g.hoverY
	grid := g.world.Grid()

	info := ui.CellInfo{
		X:      x,
		Y:      y,
		Block:  g.world.Block(x, y).String(),
		ChunkX: x / g.world.ChunkSize(),
		ChunkY: y / g.world.ChunkSize(),
		Device: g.deviceAt(x, y),
	}

	c, ok := grid.At(x, y)
	if !ok {
		return info, true
	}
	if c.IsSolid() {
		info.Solid = true
		return info, true
	}

	info.Weight = c.Weight()
	info.Capacity = grid.Params().MaxWeight
	info.Stable = c.Stable()
	info.Density = c.Density()
	info.FillKey = c.FillKey()

	if g.world.Advanced() {
		if col := c.Color(); !col.IsZero() {
			info.HasColor = true
			info.Color = rl.Color{R: col.R, G: col.G, B: col.B, A: col.A}
		}
	}
	return info, true
}
