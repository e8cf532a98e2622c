package world

import (
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"seep/config"
	"seep/fluid"
)

// Fluid palette stamped by generation and the sandbox paint tools.
const (
	WaterDensity uint8 = 1
	LavaDensity  uint8 = 2
)

var (
	WaterColor = fluid.Color{R: 28, G: 107, B: 160, A: 210}
	LavaColor  = fluid.Color{R: 226, G: 88, B: 24, A: 255}
)

const parallelColumnThreshold = 64

// Generator builds terrain from layered simplex noise: an fBm surface
// line, a cave field carved below it, and fluid pools flooded into
// surface basins under the sea level.
type Generator struct {
	cfg     config.WorldConfig
	surface opensimplex.Noise
	cave    opensimplex.Noise
}

// NewGenerator creates a generator for the given world settings.
func NewGenerator(cfg config.WorldConfig) *Generator {
	return &Generator{
		cfg:     cfg,
		surface: opensimplex.New(cfg.Seed),
		cave:    opensimplex.NewNormalized(cfg.Seed + 1),
	}
}

// Generate fills the world's terrain, mirrors solidity into the fluid
// grid and seeds pools. Deterministic for a given seed.
func (g *Generator) Generate(w *World) {
	start := time.Now()
	surface := make([]int32, w.width)

	parallelColumns(w.width, func(x0, x1 int32) {
		for x := x0; x < x1; x++ {
			sh := g.surfaceHeight(w.height, x)
			surface[x] = sh
			sandy := sh <= g.seaLevelY(w.height)
			base := x * w.height
			for y := int32(0); y < w.height; y++ {
				w.blocks[base+y] = g.blockAt(x, y, sh, sandy)
			}
		}
	})

	// Solidity sync runs sequentially: SetSolid wakes neighbors across
	// column boundaries, which the parallel pass must not touch.
	solids := 0
	for x := int32(0); x < w.width; x++ {
		base := x * w.height
		for y := int32(0); y < w.height; y++ {
			if w.blocks[base+y].Solid() {
				c, _ := w.grid.At(x, y)
				c.SetSolid()
				solids++
			}
		}
	}

	pools := g.seedPools(w, surface)
	w.UpdateFluid()

	slog.Info("world generated",
		"width", w.width, "height", w.height,
		"seed", g.cfg.Seed, "solid_cells", solids,
		"pools", pools, "elapsed", time.Since(start))
}

func (g *Generator) seaLevelY(height int32) int32 {
	return int32(g.cfg.SeaLevel * float64(height))
}

// surfaceHeight returns the terrain height of column x, kept two cells
// clear of the world's top and bottom.
func (g *Generator) surfaceHeight(height, x int32) int32 {
	base := g.cfg.SurfaceLevel * float64(height)
	relief := g.cfg.SurfaceRelief * float64(height)
	h := int32(base + g.fbm(float64(x)*g.cfg.NoiseScale)*relief)
	if h < 2 {
		h = 2
	}
	if h > height-3 {
		h = height - 3
	}
	return h
}

// fbm sums surface noise octaves, each at a different frequency line.
func (g *Generator) fbm(x float64) float64 {
	sum, norm := 0.0, 0.0
	amp, freq := 1.0, 1.0
	for o := 0; o < g.cfg.Octaves; o++ {
		sum += amp * g.surface.Eval2(x*freq, float64(o)*17.31)
		norm += amp
		amp *= g.cfg.Gain
		freq *= g.cfg.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func (g *Generator) blockAt(x, y, surface int32, sandy bool) Block {
	if y > surface {
		return BlockAir
	}
	// The bottom row is always floor; caves never breach it.
	if y == 0 {
		return BlockStone
	}
	if y <= surface-2 &&
		g.cave.Eval2(float64(x)*g.cfg.CaveScale, float64(y)*g.cfg.CaveScale) > g.cfg.CaveThreshold {
		return BlockAir
	}
	switch {
	case y == surface && sandy:
		return BlockSand
	case y == surface:
		return BlockGrass
	case y > surface-int32(g.cfg.DirtDepth):
		return BlockDirt
	default:
		return BlockStone
	}
}

// seedPools floods fluid into surface basins that sit below sea level.
// Each local minimum of the surface line is a candidate, thinned by the
// configured pool chance.
func (g *Generator) seedPools(w *World, surface []int32) int {
	if !w.grid.Params().Enabled {
		return 0
	}
	rng := rand.New(rand.NewSource(g.cfg.Seed + 2))
	seaY := g.seaLevelY(w.height)
	maxWeight := w.grid.Params().MaxWeight
	pools := 0
	for x := int32(1); x < w.width-1; x++ {
		sh := surface[x]
		if sh+1 > seaY {
			continue
		}
		if surface[x-1] < sh || surface[x+1] < sh {
			continue
		}
		if rng.Float64() >= g.cfg.PoolChance {
			continue
		}
		seedY := sh + 1
		if w.Block(x, seedY).Solid() {
			continue
		}
		if w.Advanced() {
			w.pool.FillTyped(x, seedY, maxWeight, WaterDensity, WaterColor, seaY)
		} else {
			w.pool.Fill(x, seedY, maxWeight, seaY)
		}
		pools++
	}
	return pools
}

// parallelColumns runs fn over disjoint column ranges, one goroutine per
// CPU, falling back to a single pass for narrow worlds.
func parallelColumns(width int32, fn func(x0, x1 int32)) {
	workers := int32(runtime.NumCPU())
	if width < parallelColumnThreshold || workers <= 1 {
		fn(0, width)
		return
	}
	chunk := (width + workers - 1) / workers
	var wg sync.WaitGroup
	for x0 := int32(0); x0 < width; x0 += chunk {
		x1 := x0 + chunk
		if x1 > width {
			x1 = width
		}
		wg.Add(1)
		go func(a, b int32) {
			defer wg.Done()
			fn(a, b)
		}(x0, x1)
	}
	wg.Wait()
}
