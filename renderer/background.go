package renderer

import rl "github.com/gen2brain/raylib-go/raylib"

var (
	skyTop     = rl.Color{R: 108, G: 166, B: 229, A: 255}
	skyBottom  = rl.Color{R: 188, G: 214, B: 240, A: 255}
	caveTop    = rl.Color{R: 12, G: 10, B: 16, A: 255}
	caveBottom = rl.Color{R: 30, G: 26, B: 34, A: 255}
)

// BackgroundRenderer fills the screen with a vertical sky gradient that
// fades to darkness as the camera dives deeper into the world.
type BackgroundRenderer struct {
	screenW, screenH int32
}

// NewBackgroundRenderer creates a background renderer.
func NewBackgroundRenderer(screenW, screenH int32) *BackgroundRenderer {
	return &BackgroundRenderer{screenW: screenW, screenH: screenH}
}

// Resize updates the screen dimensions.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW = screenW
	b.screenH = screenH
}

// Draw renders the gradient. Depth is the camera's vertical position in
// the world as a [0, 1] fraction, 0 at the top.
func (b *BackgroundRenderer) Draw(depth float32) {
	if depth < 0 {
		depth = 0
	}
	if depth > 1 {
		depth = 1
	}
	top := lerpColor(skyTop, caveTop, depth)
	bottom := lerpColor(skyBottom, caveBottom, depth)
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, top, bottom)
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}
