package fluid

// flowCell computes weight transfers from cell i to its neighbors and
// accumulates them into the delta buffer. Neighbor weights are read as
// last committed, so results are independent of scan order; stability
// flags and advanced payload update immediately.
//
// Directions are tried down, right, left, up. Each transfer consumes
// from the running remainder and the cell stops flowing, skipping the
// settling check, once the remainder drops below MinWeight.
func (g *Grid) flowCell(i int32) {
	p := &g.params
	links := &g.links[i]
	start := g.weights[i]
	remaining := start

	if n := links[DirDown]; n >= 0 && g.canReceive(i, n, DirDown) {
		var flow float32
		if p.TopDown {
			flow = (remaining - g.weights[n]) / 4
		} else {
			flow = g.verticalFill(remaining+g.weights[n]) - g.weights[n]
		}
		if flow = clampFlow(flow, remaining); flow > 0 {
			g.transfer(i, n, flow, true)
			remaining -= flow
		}
	}
	if remaining < p.MinWeight {
		return
	}

	if n := links[DirRight]; n >= 0 && g.canReceive(i, n, DirRight) {
		flow := (remaining - g.weights[n]) / 4
		if flow = clampFlow(flow, remaining); flow > 0 {
			g.transfer(i, n, flow, false)
			remaining -= flow
		}
	}
	if remaining < p.MinWeight {
		return
	}

	if n := links[DirLeft]; n >= 0 && g.canReceive(i, n, DirLeft) {
		flow := (remaining - g.weights[n]) / 4
		if flow = clampFlow(flow, remaining); flow > 0 {
			g.transfer(i, n, flow, false)
			remaining -= flow
		}
	}
	if remaining < p.MinWeight {
		return
	}

	if n := links[DirUp]; n >= 0 && g.canReceive(i, n, DirUp) {
		var flow float32
		if p.TopDown {
			flow = (remaining - g.weights[n]) / 4
		} else {
			flow = remaining - g.verticalFill(remaining+g.weights[n])
		}
		if flow = clampFlow(flow, remaining); flow > 0 {
			g.transfer(i, n, flow, true)
			remaining -= flow
		}
	}
	if remaining < p.MinWeight {
		return
	}

	// A near-zero net change settles the cell; a larger one means the
	// disturbance is still moving and the neighbors need to react.
	if abs32(start-remaining) <= p.StableAmount {
		g.stable[i] = true
	} else {
		g.unsettle(i)
	}
}

// canReceive reports whether dst may accept flow from src in the given
// direction. Advanced mode restricts flow to empty or matching-density
// neighbors; surface mixing additionally lets the bottom neighbor take
// foreign fluid while under capacity.
func (g *Grid) canReceive(src, dst int32, dir int) bool {
	w := g.weights[dst]
	if w == SolidWeight {
		return false
	}
	if !g.params.Advanced {
		return true
	}
	if w <= 0 {
		return true
	}
	if g.densities[dst] == g.densities[src] {
		return true
	}
	return g.params.SurfaceMixing && dir == DirDown && w < g.params.MaxWeight
}

// transfer records a pending weight move from src to dst and applies the
// immediate side effects. Vertical targets always wake; horizontal
// targets wake only for transfers above the stability threshold, which
// keeps negligible sideways seepage from rippling outward. An empty
// receiver inherits the source's density and color; a same-density
// receiver of a different color shifts toward the incoming color by the
// mixing factor.
func (g *Grid) transfer(src, dst int32, flow float32, vertical bool) {
	g.deltas[src] -= flow
	g.deltas[dst] += flow
	if vertical || flow > g.params.StableAmount {
		g.stable[dst] = false
	}
	if !g.params.Advanced {
		return
	}
	if g.weights[dst] <= 0 {
		g.densities[dst] = g.densities[src]
		g.colors[dst] = g.colors[src]
	} else if g.densities[dst] == g.densities[src] && g.colors[dst] != g.colors[src] {
		g.colors[dst] = g.colors[dst].Lerp(g.colors[src], g.params.MixFactor)
	}
}

// verticalFill returns how much of a two-cell column's combined weight
// the lower cell should hold. Under capacity everything sinks. Past
// capacity the lower cell takes a pressure-weighted share, and a heavily
// stacked pair splits evenly with the lower cell holding one extra
// PressureWeight.
func (g *Grid) verticalFill(sum float32) float32 {
	p := &g.params
	switch {
	case sum <= p.MaxWeight:
		return sum
	case sum < 2*p.MaxWeight+p.PressureWeight:
		return (p.MaxWeight*p.MaxWeight + sum*p.PressureWeight) / (p.MaxWeight + p.PressureWeight)
	default:
		return (sum + p.PressureWeight) / 2
	}
}

func clampFlow(flow, remaining float32) float32 {
	if flow < 0 {
		return 0
	}
	if flow > remaining {
		return remaining
	}
	return flow
}
