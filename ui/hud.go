package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Tick          int
	Speed         int
	FPS           int32
	Paused        bool
	Settled       bool
	TotalWeight   float64
	UnstableCells int
	Tool          string
	BrushRadius   int
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	// Simulation info
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 35, 16, rl.LightGray,
	)

	// Fluid state
	fluidState := "flowing"
	if data.Settled {
		fluidState = "settled"
	}
	rl.DrawText(
		fmt.Sprintf("Weight: %.1f | Unstable: %d | %s", data.TotalWeight, data.UnstableCells, fluidState),
		10, 55, 16, rl.LightGray,
	)

	// Active tool
	rl.DrawText(
		fmt.Sprintf("Tool: %s (radius %d)", data.Tool, data.BrushRadius),
		10, 75, 16, rl.SkyBlue,
	)

	// Status
	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 95, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
