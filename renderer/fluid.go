package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/camera"
	"seep/fluid"
	"seep/world"
)

// waterBase is the fluid color in basic mode and the fallback when an
// advanced cell carries weight but no color yet.
var waterBase = world.WaterColor

// FluidRenderer draws the fluid layer over the terrain. Alpha follows
// the visual fill height so shallow puddles read translucent and
// falling columns read as solid streams.
type FluidRenderer struct {
	world    *world.World
	cellSize float32

	texture     rl.Texture2D
	dirty       map[world.ChunkCoord]bool
	refreshAll  bool
	initialized bool
}

// NewFluidRenderer creates a renderer for the world's fluid layer.
// The first Draw uploads the full texture.
func NewFluidRenderer(w *world.World, cellSize float32) *FluidRenderer {
	return &FluidRenderer{
		world:      w,
		cellSize:   cellSize,
		dirty:      make(map[world.ChunkCoord]bool),
		refreshAll: true,
	}
}

// Init creates the GPU texture (must be called after the raylib window is created).
func (f *FluidRenderer) Init() {
	if f.initialized {
		return
	}
	img := rl.GenImageColor(int(f.world.Width()), int(f.world.Height()), rl.Blank)
	f.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	f.initialized = true
}

// MarkChunkDirty queues one chunk for a texel refresh.
func (f *FluidRenderer) MarkChunkDirty(c world.ChunkCoord) {
	f.dirty[c] = true
}

// MarkAllDirty queues a full texture refresh.
func (f *FluidRenderer) MarkAllDirty() {
	f.refreshAll = true
}

// Draw refreshes queued chunks and draws the fluid layer through the camera.
func (f *FluidRenderer) Draw(cam *camera.Camera) {
	if !f.initialized {
		f.Init()
	}
	f.refresh()

	w := float32(f.world.Width())
	h := float32(f.world.Height())
	sx, sy := cam.WorldToScreen(0, 0)
	rl.DrawTexturePro(
		f.texture,
		rl.Rectangle{Width: w, Height: h},
		rl.Rectangle{X: sx, Y: sy, Width: w * f.cellSize * cam.Zoom, Height: h * f.cellSize * cam.Zoom},
		rl.Vector2{},
		0,
		rl.White,
	)
}

// Unload frees resources.
func (f *FluidRenderer) Unload() {
	if f.initialized {
		rl.UnloadTexture(f.texture)
		f.initialized = false
	}
}

func (f *FluidRenderer) refresh() {
	if f.refreshAll {
		full := fluid.Region{MaxX: f.world.Width(), MaxY: f.world.Height()}
		rl.UpdateTexture(f.texture, f.buildPixels(full))
		f.refreshAll = false
		for c := range f.dirty {
			delete(f.dirty, c)
		}
		return
	}

	for c := range f.dirty {
		r := f.world.ChunkRegion(c)
		rl.UpdateTextureRec(f.texture, texRect(r, f.world.Height()), f.buildPixels(r))
		delete(f.dirty, c)
	}
}

// buildPixels renders a cell region into texture pixels, top row first.
func (f *FluidRenderer) buildPixels(r fluid.Region) []color.RGBA {
	rw := int(r.MaxX - r.MinX)
	rh := int(r.MaxY - r.MinY)
	pixels := make([]color.RGBA, rw*rh)

	grid := f.world.Grid()
	params := grid.Params()
	for row := 0; row < rh; row++ {
		y := r.MaxY - 1 - int32(row)
		for col := 0; col < rw; col++ {
			x := r.MinX + int32(col)
			pixels[row*rw+col] = fluidPixel(grid, params, x, y)
		}
	}
	return pixels
}

func fluidPixel(grid *fluid.Grid, params fluid.Params, x, y int32) color.RGBA {
	cell, ok := grid.At(x, y)
	if !ok || cell.IsSolid() {
		return color.RGBA{}
	}
	w := cell.Weight()
	if w <= 0 {
		return color.RGBA{}
	}

	base := waterBase
	if params.Advanced {
		if c := cell.Color(); !c.IsZero() {
			base = c
		}
	}

	// Translucent when shallow, near opaque when full
	height := cell.Height()
	alpha := float32(base.A) * (0.35 + 0.65*height)

	// Cells compressed past capacity shade darker
	r, g, b := base.R, base.G, base.B
	if excess := w - params.MaxWeight; excess > 0 {
		d := excess * 32
		if d > 40 {
			d = 40
		}
		r = dim(r, uint8(d))
		g = dim(g, uint8(d))
		b = dim(b, uint8(d))
	}

	return color.RGBA{R: r, G: g, B: b, A: uint8(alpha)}
}

func dim(c, by uint8) uint8 {
	if c < by {
		return 0
	}
	return c - by
}
