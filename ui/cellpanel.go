package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CellInfo holds everything the cell panel shows about one world cell.
type CellInfo struct {
	X, Y     int32
	Block    string
	Solid    bool
	Weight   float32
	Capacity float32
	Stable   bool
	Density  uint8
	Color    rl.Color
	HasColor bool
	FillKey  uint16
	ChunkX   int32
	ChunkY   int32
	Device   string // e.g. "emitter 2.0/s", empty when the cell has none
}

// CellPanel renders details for the cell under the cursor.
type CellPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewCellPanel creates a cell panel.
func NewCellPanel(x, y, width int32) *CellPanel {
	return &CellPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *CellPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel.
func (p *CellPanel) Draw(info CellInfo) {
	r := p.renderer
	padding := r.Theme.Padding
	panelHeight := int32(190)

	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := p.y + padding

	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Cell (%d, %d)", info.X, info.Y))
	y += 2

	y = r.DrawLabelValue(x, y, "Block", info.Block)

	if info.Solid {
		y = r.DrawLabelValue(x, y, "Fluid", "blocked")
	} else {
		y = r.DrawLevelBar(x, y, "Weight", info.Weight, info.Capacity, p.width-padding*2)

		state := "empty"
		if info.Weight > 0 {
			state = "flowing"
			if info.Stable {
				state = "settled"
			}
		}
		y = r.DrawLabelValue(x, y, "State", state)
		y = r.DrawLabelValue(x, y, "Density", fmt.Sprintf("%d", info.Density))

		if info.HasColor {
			y = r.DrawColorSwatch(x, y, "Color", info.Color)
		}
		if info.FillKey != 0 {
			y = r.DrawLabelValue(x, y, "Pool key", fmt.Sprintf("%d", info.FillKey))
		}
	}

	y = r.DrawLabelValue(x, y, "Chunk", fmt.Sprintf("(%d, %d)", info.ChunkX, info.ChunkY))

	if info.Device != "" {
		r.DrawLabelValue(x, y, "Device", info.Device)
	}
}
