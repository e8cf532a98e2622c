package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"seep/components"
	"seep/world"
)

// Brush radius bounds for the bracket keys.
const maxBrushRadius = 16

// spawnEmitter places an emitter at (x, y) pouring the active fluid.
// Any device already on the cell is replaced.
func (g *Game) spawnEmitter(x, y int32) {
	g.removeDeviceAt(x, y)

	pos := components.Position{X: x, Y: y}
	em := components.Emitter{
		Rate:    float32(g.cfg.Sandbox.EmitterRate),
		Density: g.pourFluid.density,
		Color:   g.pourFluid.color,
		Enabled: true,
	}
	g.emitterMap.NewEntity(&pos, &em)
}

// spawnDrain places a drain at (x, y). Any device already on the cell
// is replaced.
func (g *Game) spawnDrain(x, y int32) {
	g.removeDeviceAt(x, y)

	pos := components.Position{X: x, Y: y}
	dr := components.Drain{
		Rate:    float32(g.cfg.Sandbox.DrainRate),
		Enabled: true,
	}
	g.drainMap.NewEntity(&pos, &dr)
}

// removeDeviceAt deletes any emitter or drain on (x, y). Returns true
// when something was removed.
func (g *Game) removeDeviceAt(x, y int32) bool {
	// First pass: collect (must complete before modifying)
	var emitters, drains []ecs.Entity

	eq := g.emitterFilter.Query()
	for eq.Next() {
		pos, _ := eq.Get()
		if pos.X == x && pos.Y == y {
			emitters = append(emitters, eq.Entity())
		}
	}
	dq := g.drainFilter.Query()
	for dq.Next() {
		pos, _ := dq.Get()
		if pos.X == x && pos.Y == y {
			drains = append(drains, dq.Entity())
		}
	}

	for _, e := range emitters {
		g.emitterMap.Remove(e)
	}
	for _, e := range drains {
		g.drainMap.Remove(e)
	}
	return len(emitters)+len(drains) > 0
}

// deviceAt returns a display label for the device on (x, y), or "".
func (g *Game) deviceAt(x, y int32) string {
	label := ""

	eq := g.emitterFilter.Query()
	for eq.Next() {
		pos, em := eq.Get()
		if pos.X == x && pos.Y == y {
			label = fmt.Sprintf("emitter %.1f/s", em.Rate)
		}
	}
	dq := g.drainFilter.Query()
	for dq.Next() {
		pos, dr := dq.Get()
		if pos.X == x && pos.Y == y {
			label = fmt.Sprintf("drain %.1f/s", dr.Rate)
		}
	}
	return label
}

// tickEmitters pours one tick's worth of fluid from every enabled
// emitter. Emitters into solid cells or foreign fluid pour nothing.
func (g *Game) tickEmitters() {
	interval := g.world.Grid().Params().UpdateInterval
	advanced := g.world.Advanced()

	query := g.emitterFilter.Query()
	for query.Next() {
		pos, em := query.Get()
		if !em.Enabled {
			continue
		}
		amount := em.Rate * float32(interval)

		var ok bool
		if advanced {
			ok = g.world.AddTypedFluid(pos.X, pos.Y, amount, em.Density, em.Color)
		} else {
			ok = g.world.AddFluid(pos.X, pos.Y, amount)
		}
		if ok {
			g.collector.RecordWeightAdded(float64(amount))
		}
	}
}

// tickDrains pulls one tick's worth of fluid out of every enabled
// drain.
func (g *Game) tickDrains() {
	interval := g.world.Grid().Params().UpdateInterval

	query := g.drainFilter.Query()
	for query.Next() {
		pos, dr := query.Get()
		if !dr.Enabled {
			continue
		}
		removed := g.world.RemoveFluid(pos.X, pos.Y, dr.Rate*float32(interval))
		if removed > 0 {
			g.collector.RecordWeightRemoved(float64(removed))
		}
	}
}

// seedDevices scatters n water emitters across the surface so a fresh
// world has something moving.
func (g *Game) seedDevices(n int) {
	if n <= 0 {
		return
	}
	w := g.world.Width()
	h := g.world.Height()

	for i := 0; i < n; i++ {
		x := w*int32(i+1)/int32(n+1) + int32(g.rng.Intn(9)) - 4
		if x < 0 {
			x = 0
		}
		if x >= w {
			x = w - 1
		}
		y := g.surfaceY(x) + 4
		if y >= h {
			y = h - 1
		}
		g.spawnEmitter(x, y)
	}
}

// surfaceY returns the topmost non-air cell in column x, or 0 for an
// empty column.
func (g *Game) surfaceY(x int32) int32 {
	for y := g.world.Height() - 1; y >= 0; y-- {
		if g.world.Block(x, y) != world.BlockAir {
			return y
		}
	}
	return 0
}
