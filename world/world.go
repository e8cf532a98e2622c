package world

import (
	"slices"

	"seep/fluid"
)

// ChunkCoord addresses one chunk of the world.
type ChunkCoord struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// World holds the block terrain and the fluid simulation for one map.
// All coordinates are absolute cell coordinates with y = 0 at the
// bottom. The world tracks which chunks changed since the last drain so
// renderers and the state server only touch what moved.
type World struct {
	width     int32
	height    int32
	chunkSize int32

	blocks []Block // x-major, index = x*height + y

	grid *fluid.Grid
	sim  *fluid.Simulator
	pool *fluid.PoolFiller

	dirty map[ChunkCoord]struct{}
}

// New creates an empty (all air) world of the given dimensions.
func New(width, height, chunkSize int32, params fluid.Params) *World {
	if chunkSize <= 0 {
		chunkSize = 32
	}
	g := fluid.NewGrid(width, height, params)
	w := &World{
		width:     width,
		height:    height,
		chunkSize: chunkSize,
		blocks:    make([]Block, int(width)*int(height)),
		grid:      g,
		sim:       fluid.NewSimulator(g),
		pool:      fluid.NewPoolFiller(g),
		dirty:     make(map[ChunkCoord]struct{}),
	}
	w.sim.SetChangeListener(w.markChunkDirty)
	return w
}

// Width returns the world width in cells.
func (w *World) Width() int32 { return w.width }

// Height returns the world height in cells.
func (w *World) Height() int32 { return w.height }

// ChunkSize returns the chunk edge length in cells.
func (w *World) ChunkSize() int32 { return w.chunkSize }

// Grid returns the underlying fluid grid.
func (w *World) Grid() *fluid.Grid { return w.grid }

// Sim returns the fluid simulator.
func (w *World) Sim() *fluid.Simulator { return w.sim }

// Pool returns the pool flood filler.
func (w *World) Pool() *fluid.PoolFiller { return w.pool }

// Advanced reports whether the fluid layer carries density and color.
func (w *World) Advanced() bool { return w.grid.Params().Advanced }

func (w *World) index(x, y int32) int32 {
	return x*w.height + y
}

func (w *World) inBounds(x, y int32) bool {
	return x >= 0 && x < w.width && y >= 0 && y < w.height
}

// Block returns the terrain block at (x, y), or BlockAir outside bounds.
func (w *World) Block(x, y int32) Block {
	if !w.inBounds(x, y) {
		return BlockAir
	}
	return w.blocks[w.index(x, y)]
}

// SetBlock places a terrain block, keeping the fluid layer's solidity in
// sync: placing a solid block discards any fluid in the cell, removing
// one opens the cell and wakes the surroundings. Returns false outside
// world bounds.
func (w *World) SetBlock(x, y int32, b Block) bool {
	if !w.inBounds(x, y) {
		return false
	}
	i := w.index(x, y)
	prev := w.blocks[i]
	if prev == b {
		return true
	}
	w.blocks[i] = b
	c, _ := w.grid.At(x, y)
	if b.Solid() {
		c.SetSolid()
	} else if prev.Solid() {
		c.SetEmpty()
	}
	w.sim.MarkDirtyAt(x, y)
	return true
}

// FluidBlock returns the fluid cell at (x, y), with ok=false outside
// world bounds.
func (w *World) FluidBlock(x, y int32) (fluid.Cell, bool) {
	return w.grid.At(x, y)
}

// AddFluid adds weight at (x, y) on a basic world. It returns false if
// fluid is disabled, the coordinate is out of bounds or the cell is
// solid, and panics with a configuration mismatch on an advanced world.
func (w *World) AddFluid(x, y int32, weight float32) bool {
	if w.Advanced() {
		panic("fluid: configuration mismatch: AddFluid called on an advanced world, use AddTypedFluid")
	}
	if !w.grid.Params().Enabled {
		return false
	}
	c, ok := w.grid.At(x, y)
	if !ok || c.IsSolid() {
		return false
	}
	c.AddWeight(weight)
	w.sim.MarkDirty()
	w.markChunkDirty(x, y)
	return true
}

// AddTypedFluid adds weight of the given density at (x, y) on an
// advanced world. Beyond the AddFluid failure cases it also returns
// false when the cell already holds fluid of a different density.
// Panics with a configuration mismatch on a basic world.
func (w *World) AddTypedFluid(x, y int32, weight float32, density uint8, col fluid.Color) bool {
	if !w.Advanced() {
		panic("fluid: configuration mismatch: AddTypedFluid called on a basic world, use AddFluid")
	}
	if !w.grid.Params().Enabled {
		return false
	}
	c, ok := w.grid.At(x, y)
	if !ok || c.IsSolid() {
		return false
	}
	if c.Weight() > 0 && c.Density() != density {
		return false
	}
	c.AddTypedWeight(density, weight, col)
	w.sim.MarkDirty()
	w.markChunkDirty(x, y)
	return true
}

// RemoveFluid drains up to weight of fluid at (x, y), returning the
// amount actually removed.
func (w *World) RemoveFluid(x, y int32, weight float32) float32 {
	if !w.grid.Params().Enabled {
		return 0
	}
	c, ok := w.grid.At(x, y)
	if !ok {
		return 0
	}
	removed := c.RemoveWeight(weight)
	if removed > 0 {
		w.sim.MarkDirtyAt(x, y)
	}
	return removed
}

// UpdateFluid flags the simulation dirty after an external mutation.
func (w *World) UpdateFluid() {
	w.sim.MarkDirty()
}

// SetTunables applies new scalar fluid tunables and wakes the
// simulation so standing fluid re-settles under them.
func (w *World) SetTunables(p fluid.Params) {
	w.grid.SetTunables(p)
	w.sim.MarkDirty()
}

// UpdateFluidAt flags the simulation dirty and pushes an immediate
// change notification for (x, y).
func (w *World) UpdateFluidAt(x, y int32) {
	w.sim.MarkDirtyAt(x, y)
}

// Update advances the simulation clock by dt seconds.
func (w *World) Update(dt float64) (fluid.TickStats, bool) {
	return w.sim.Update(dt)
}

// Step runs one simulation tick immediately.
func (w *World) Step() fluid.TickStats {
	return w.sim.Step()
}

// SetLoadedRegion restricts simulation to the chunks covering r.
// The region is snapped outward to chunk boundaries.
func (w *World) SetLoadedRegion(r fluid.Region) {
	cs := w.chunkSize
	r = r.Clip(w.width, w.height)
	r.MinX = r.MinX / cs * cs
	r.MinY = r.MinY / cs * cs
	r.MaxX = (r.MaxX + cs - 1) / cs * cs
	r.MaxY = (r.MaxY + cs - 1) / cs * cs
	w.sim.SetRegion(r)
}

func (w *World) markChunkDirty(x, y int32) {
	w.dirty[ChunkCoord{X: x / w.chunkSize, Y: y / w.chunkSize}] = struct{}{}
}

// DrainDirtyChunks returns the chunks touched since the last drain,
// sorted, and resets the set. Returns nil when nothing changed.
func (w *World) DrainDirtyChunks() []ChunkCoord {
	if len(w.dirty) == 0 {
		return nil
	}
	out := make([]ChunkCoord, 0, len(w.dirty))
	for c := range w.dirty {
		out = append(out, c)
	}
	clear(w.dirty)
	slices.SortFunc(out, func(a, b ChunkCoord) int {
		if a.X != b.X {
			return int(a.X) - int(b.X)
		}
		return int(a.Y) - int(b.Y)
	})
	return out
}

// ChunkRegion returns the cell region covered by a chunk, clipped to the
// world.
func (w *World) ChunkRegion(c ChunkCoord) fluid.Region {
	r := fluid.Region{
		MinX: c.X * w.chunkSize,
		MinY: c.Y * w.chunkSize,
		MaxX: (c.X + 1) * w.chunkSize,
		MaxY: (c.Y + 1) * w.chunkSize,
	}
	return r.Clip(w.width, w.height)
}
