package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/fluid"
)

// TunablesPanel edits the live fluid parameters with raygui sliders.
// Edits take effect on the running simulation; the structural flags are
// not exposed here.
type TunablesPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewTunablesPanel creates a hidden tunables panel.
func NewTunablesPanel(x, y, width int32) *TunablesPanel {
	return &TunablesPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (t *TunablesPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Toggle switches panel visibility.
func (t *TunablesPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *TunablesPanel) IsVisible() bool {
	return t.visible
}

// Draw renders the sliders over the given parameters and returns the
// edited set plus whether any value changed this frame.
func (t *TunablesPanel) Draw(p fluid.Params) (fluid.Params, bool) {
	if !t.visible {
		return p, false
	}

	const panelHeight = 420
	t.renderer.DrawPanel(t.x, t.y, t.width, panelHeight)

	changed := false
	panelX := float32(t.x) + 10
	panelY := float32(t.y) + 10
	sliderW := float32(t.width) - 90

	rl.DrawText("Fluid Parameters", int32(panelX), int32(panelY), 16, rl.White)
	panelY += 28

	// Max weight slider
	rl.DrawText("Max weight (cell capacity)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newMax := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0.25", "4.0",
		p.MaxWeight, 0.25, 4.0,
	)
	rl.DrawText(fmt.Sprintf("%.2f", p.MaxWeight), int32(panelX+sliderW+8), int32(panelY+2), 14, rl.LightGray)
	if newMax != p.MaxWeight {
		p.MaxWeight = newMax
		changed = true
	}
	panelY += 33

	// Min weight slider
	rl.DrawText("Min weight (empty threshold)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newMin := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0.001", "0.05",
		p.MinWeight, 0.001, 0.05,
	)
	rl.DrawText(fmt.Sprintf("%.3f", p.MinWeight), int32(panelX+sliderW+8), int32(panelY+2), 14, rl.LightGray)
	if newMin != p.MinWeight {
		p.MinWeight = newMin
		changed = true
	}
	panelY += 33

	// Stable amount slider
	rl.DrawText("Stable amount (settle threshold)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newStable := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0", "0.001",
		p.StableAmount, 0, 0.001,
	)
	rl.DrawText(fmt.Sprintf("%.4f", p.StableAmount), int32(panelX+sliderW+8), int32(panelY+2), 14, rl.LightGray)
	if newStable != p.StableAmount {
		p.StableAmount = newStable
		changed = true
	}
	panelY += 33

	// Pressure weight slider
	rl.DrawText("Pressure weight (depth compression)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newPressure := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0", "0.1",
		p.PressureWeight, 0, 0.1,
	)
	rl.DrawText(fmt.Sprintf("%.3f", p.PressureWeight), int32(panelX+sliderW+8), int32(panelY+2), 14, rl.LightGray)
	if newPressure != p.PressureWeight {
		p.PressureWeight = newPressure
		changed = true
	}
	panelY += 33

	// Mix factor slider
	rl.DrawText("Mix factor (color blending)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newMix := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0", "1.0",
		p.MixFactor, 0, 1.0,
	)
	rl.DrawText(fmt.Sprintf("%.2f", p.MixFactor), int32(panelX+sliderW+8), int32(panelY+2), 14, rl.LightGray)
	if newMix != p.MixFactor {
		p.MixFactor = newMix
		changed = true
	}
	panelY += 33

	// Update interval slider
	rl.DrawText("Update interval (seconds per tick)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	newInterval := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0.01", "0.25",
		float32(p.UpdateInterval), 0.01, 0.25,
	)
	rl.DrawText(fmt.Sprintf("%.2f", p.UpdateInterval), int32(panelX+sliderW+8), int32(panelY+2), 14, rl.LightGray)
	if float64(newInterval) != p.UpdateInterval {
		p.UpdateInterval = float64(newInterval)
		changed = true
	}
	panelY += 33

	// Separator
	rl.DrawLine(int32(panelX), int32(panelY), t.x+t.width-10, int32(panelY), rl.Gray)
	panelY += 12

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 130, Height: 26}, "Reset Defaults") {
		def := fluid.DefaultParams()
		p.MaxWeight = def.MaxWeight
		p.MinWeight = def.MinWeight
		p.StableAmount = def.StableAmount
		p.PressureWeight = def.PressureWeight
		p.MixFactor = def.MixFactor
		p.UpdateInterval = def.UpdateInterval
		changed = true
	}

	return p, changed
}
