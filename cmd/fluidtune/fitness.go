package main

import (
	"math"
	"math/rand"
	"sync"

	"seep/config"
	"seep/world"
)

// Pour scenario shape. Each seeded run drops the same class of
// disturbance: columns of water and lava stacked above the generated
// surface, left to find their level.
const (
	pourSites   = 10 // pour locations spread across the world
	pourColumns = 4  // columns per site
	pourDepth   = 8  // stacked cells per column
)

// Scoring weights. Settle time dominates; the churn term charges for
// committed cell work per simulated second, which keeps update_interval
// from collapsing to its lower bound, and the residue term charges for
// weight destroyed by aggressive thresholds.
const (
	churnRateWeight  = 60.0
	residueWeight    = 2.0
	unsettledPenalty = 120.0
)

// Evaluator runs seeded pour scenarios headless and scores how quickly
// and cheaply the fluid settles under a set of tunables.
type Evaluator struct {
	params   *ParamVector
	maxTicks int
	seeds    []int64
	baseCfg  *config.Config

	mu          sync.Mutex
	lastSettled float64 // fraction of seeds that settled in the last Evaluate
}

// NewEvaluator creates a new evaluator.
func NewEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *Evaluator {
	return &Evaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		baseCfg:  baseCfg,
	}
}

// LastSettled returns the settled-seed fraction of the most recent
// evaluation.
func (e *Evaluator) LastSettled() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSettled
}

// runResult holds the outcome of a single scenario run.
type runResult struct {
	settleTicks int     // ticks until the grid settled, maxTicks if it never did
	settled     bool    // whether it settled within the cap
	changed     int64   // cumulative committed cell changes
	residue     float64 // weight dropped as sub-threshold residue
}

// Evaluate computes the cost of a parameter vector (lower = better),
// averaged over all seeds. Seeds run in parallel; each builds its own
// world and config copy.
func (e *Evaluator) Evaluate(x []float64) float64 {
	costs := make([]float64, len(e.seeds))
	settled := make([]bool, len(e.seeds))
	var wg sync.WaitGroup

	for i, seed := range e.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			cfg := e.copyConfig()
			e.params.ApplyToConfig(cfg, x)
			// The advanced pipeline keeps every tunable live; the flow
			// math the basic mode uses is the same.
			cfg.Fluid.Advanced = true

			res := e.runScenario(cfg, s)
			costs[idx] = score(cfg, res)
			settled[idx] = res.settled
		}(i, seed)
	}
	wg.Wait()

	var total float64
	nSettled := 0
	for i, c := range costs {
		total += c
		if settled[i] {
			nSettled++
		}
	}

	e.mu.Lock()
	e.lastSettled = float64(nSettled) / float64(len(e.seeds))
	e.mu.Unlock()

	return total / float64(len(e.seeds))
}

// runScenario generates a world, pours the disturbance and steps the
// simulation until it settles or hits the tick cap.
func (e *Evaluator) runScenario(cfg *config.Config, seed int64) runResult {
	genCfg := cfg.World
	genCfg.Seed = seed

	w := world.New(int32(cfg.World.Width), int32(cfg.World.Height), int32(cfg.World.ChunkSize), cfg.Fluid.Params())
	world.NewGenerator(genCfg).Generate(w)

	rng := rand.New(rand.NewSource(seed))
	pour(w, rng)

	res := runResult{settleTicks: e.maxTicks}
	for t := 0; t < e.maxTicks; t++ {
		stats := w.Step()
		res.changed += int64(stats.Changed)
		res.residue += stats.Residue
		if stats.Settled {
			res.settleTicks = t + 1
			res.settled = true
			break
		}
	}
	return res
}

// pour stacks fluid columns above the surface at seeded locations. Every
// third site pours lava so density handling is exercised too.
func pour(w *world.World, rng *rand.Rand) {
	maxW := w.Grid().Params().MaxWeight
	for s := 0; s < pourSites; s++ {
		x := int32(rng.Intn(int(w.Width() - pourColumns)))
		density, col := world.WaterDensity, world.WaterColor
		if s%3 == 2 {
			density, col = world.LavaDensity, world.LavaColor
		}
		for dx := int32(0); dx < pourColumns; dx++ {
			top := surfaceY(w, x+dx)
			for dy := int32(1); dy <= pourDepth; dy++ {
				w.AddTypedFluid(x+dx, top+dy, maxW, density, col)
			}
		}
	}
}

// surfaceY returns the highest non-air cell in a column, 0 for an empty
// column.
func surfaceY(w *world.World, x int32) int32 {
	for y := w.Height() - 1; y >= 0; y-- {
		if w.Block(x, y) != world.BlockAir {
			return y
		}
	}
	return 0
}

// score folds a run into a scalar cost (lower = better).
func score(cfg *config.Config, res runResult) float64 {
	interval := cfg.Fluid.UpdateInterval
	settleSec := float64(res.settleTicks) * interval
	cells := float64(cfg.World.Width) * float64(cfg.World.Height)
	churnPerSec := float64(res.changed) / cells / math.Max(settleSec, interval)

	cost := settleSec + churnRateWeight*churnPerSec + residueWeight*res.residue
	if !res.settled {
		cost += unsettledPenalty
	}
	return cost
}

// copyConfig builds an independent config for one run.
func (e *Evaluator) copyConfig() *config.Config {
	cfg, _ := config.Load("")
	cfg.World = e.baseCfg.World
	cfg.Fluid = e.baseCfg.Fluid
	return cfg
}
