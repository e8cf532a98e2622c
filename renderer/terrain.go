// Package renderer draws the block world and its fluid as world-sized
// textures, one texel per cell, refreshed chunk by chunk as the
// simulation dirties them. Cell row 0 is the bottom of the world and
// lands on the last texture row.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"seep/camera"
	"seep/fluid"
	"seep/world"
)

// TerrainRenderer draws the block layer. Air above the terrain surface
// stays transparent so the sky shows through; air below it renders as
// cave backdrop.
type TerrainRenderer struct {
	world    *world.World
	cellSize float32

	texture     rl.Texture2D
	surface     []int32 // topmost solid row per column, -1 when the column is open
	dirty       map[world.ChunkCoord]bool
	refreshAll  bool
	initialized bool
}

// NewTerrainRenderer creates a renderer for the world's block layer.
// The first Draw uploads the full texture.
func NewTerrainRenderer(w *world.World, cellSize float32) *TerrainRenderer {
	return &TerrainRenderer{
		world:      w,
		cellSize:   cellSize,
		surface:    make([]int32, w.Width()),
		dirty:      make(map[world.ChunkCoord]bool),
		refreshAll: true,
	}
}

// Init creates the GPU texture (must be called after the raylib window is created).
func (t *TerrainRenderer) Init() {
	if t.initialized {
		return
	}
	img := rl.GenImageColor(int(t.world.Width()), int(t.world.Height()), rl.Blank)
	t.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	t.initialized = true
}

// MarkChunkDirty queues one chunk for a texel refresh.
func (t *TerrainRenderer) MarkChunkDirty(c world.ChunkCoord) {
	t.dirty[c] = true
}

// MarkAllDirty queues a full texture refresh.
func (t *TerrainRenderer) MarkAllDirty() {
	t.refreshAll = true
}

// Draw refreshes queued chunks and draws the block layer through the camera.
func (t *TerrainRenderer) Draw(cam *camera.Camera) {
	if !t.initialized {
		t.Init()
	}
	t.refresh()

	w := float32(t.world.Width())
	h := float32(t.world.Height())
	sx, sy := cam.WorldToScreen(0, 0)
	rl.DrawTexturePro(
		t.texture,
		rl.Rectangle{Width: w, Height: h},
		rl.Rectangle{X: sx, Y: sy, Width: w * t.cellSize * cam.Zoom, Height: h * t.cellSize * cam.Zoom},
		rl.Vector2{},
		0,
		rl.White,
	)
}

// Unload frees resources.
func (t *TerrainRenderer) Unload() {
	if t.initialized {
		rl.UnloadTexture(t.texture)
		t.initialized = false
	}
}

func (t *TerrainRenderer) refresh() {
	if t.refreshAll {
		t.scanSurface(0, t.world.Width())
		full := fluid.Region{MaxX: t.world.Width(), MaxY: t.world.Height()}
		rl.UpdateTexture(t.texture, t.buildPixels(full))
		t.refreshAll = false
		for c := range t.dirty {
			delete(t.dirty, c)
		}
		return
	}

	for c := range t.dirty {
		r := t.world.ChunkRegion(c)
		// A block edit can move the column surface, so rescan the
		// chunk's columns before rebuilding its texels.
		t.scanSurface(r.MinX, r.MaxX)
		rl.UpdateTextureRec(t.texture, texRect(r, t.world.Height()), t.buildPixels(r))
		delete(t.dirty, c)
	}
}

// texRect converts a cell region to its texture rectangle. The texture
// row order is top down while cell rows grow upward.
func texRect(r fluid.Region, worldH int32) rl.Rectangle {
	return rl.Rectangle{
		X:      float32(r.MinX),
		Y:      float32(worldH - r.MaxY),
		Width:  float32(r.MaxX - r.MinX),
		Height: float32(r.MaxY - r.MinY),
	}
}

// scanSurface recomputes the topmost solid row for columns [x0, x1).
func (t *TerrainRenderer) scanSurface(x0, x1 int32) {
	h := t.world.Height()
	for x := x0; x < x1; x++ {
		t.surface[x] = -1
		for y := h - 1; y >= 0; y-- {
			if t.world.Block(x, y).Solid() {
				t.surface[x] = y
				break
			}
		}
	}
}

// buildPixels renders a cell region into texture pixels, top row first.
func (t *TerrainRenderer) buildPixels(r fluid.Region) []color.RGBA {
	rw := int(r.MaxX - r.MinX)
	rh := int(r.MaxY - r.MinY)
	pixels := make([]color.RGBA, rw*rh)

	worldH := t.world.Height()
	for row := 0; row < rh; row++ {
		y := r.MaxY - 1 - int32(row)
		for col := 0; col < rw; col++ {
			x := r.MinX + int32(col)
			pixels[row*rw+col] = t.cellPixel(x, y, worldH)
		}
	}
	return pixels
}

func (t *TerrainRenderer) cellPixel(x, y, worldH int32) color.RGBA {
	b := t.world.Block(x, y)
	if b == world.BlockAir {
		if y > t.surface[x] {
			return color.RGBA{} // open sky
		}
		return caveBackdrop(x, y)
	}

	base := blockPalette[b]

	// Shade variation keeps large same-block areas from reading flat
	v := int32(cellHash(x, y)%17) - 8

	// Deeper cells darken toward the world floor
	depth := 1.0 - 0.25*float32(worldH-y)/float32(worldH)

	return color.RGBA{
		R: shade(base.R, v, depth),
		G: shade(base.G, v, depth),
		B: shade(base.B, v, depth),
		A: 255,
	}
}

// blockPalette maps block types to base colors.
var blockPalette = [...]color.RGBA{
	world.BlockAir:   {},
	world.BlockDirt:  {R: 121, G: 85, B: 58, A: 255},
	world.BlockGrass: {R: 88, G: 152, B: 62, A: 255},
	world.BlockStone: {R: 102, G: 104, B: 112, A: 255},
	world.BlockSand:  {R: 196, G: 178, B: 128, A: 255},
}

// caveBackdrop fills air pockets under the surface with dark rock.
func caveBackdrop(x, y int32) color.RGBA {
	v := uint8(cellHash(x, y) % 9)
	return color.RGBA{R: 24 + v, G: 20 + v, B: 28 + v, A: 255}
}

func shade(c uint8, v int32, depth float32) uint8 {
	s := (int32(c) + v) * int32(depth*256) / 256
	if s < 0 {
		s = 0
	}
	if s > 255 {
		s = 255
	}
	return uint8(s)
}

// cellHash is a cheap per-cell hash for shade variation.
func cellHash(x, y int32) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}
