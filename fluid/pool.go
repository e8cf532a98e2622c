package fluid

import "log/slog"

// PoolFiller seeds and retracts contiguous pools of fluid, used by world
// generation and bulk edits rather than the live simulation. Fills run a
// bounded breadth-first expansion from a seed cell with an explicit
// queue; every fill gets a fresh nonzero sequence key so leftovers from
// an earlier overlapping fill can be recognized and evicted.
type PoolFiller struct {
	grid  *Grid
	seq   uint16
	queue []fillNode
}

type fillNode struct {
	i      int32
	weight float32
}

// NewPoolFiller creates a filler for the grid.
func NewPoolFiller(g *Grid) *PoolFiller {
	return &PoolFiller{grid: g}
}

func (f *PoolFiller) nextKey() uint16 {
	f.seq++
	if f.seq == 0 {
		f.seq = 1
	}
	return f.seq
}

// Fill floods fluid outward from (x, y) on a basic grid. Expansion
// carries the seed weight sideways and up, gains PressureWeight per cell
// downward, and never rises above row maxY. The fill stops at solid
// cells, at the iteration cap, and at cells it already visited. Returns
// the number of cells filled.
// Panics with a configuration mismatch on an advanced grid.
func (f *PoolFiller) Fill(x, y int32, weight float32, maxY int32) int {
	if f.grid.params.Advanced {
		panic("fluid: configuration mismatch: Fill called on an advanced grid, use FillTyped")
	}
	return f.fill(x, y, weight, 0, Color{}, maxY)
}

// FillTyped is Fill for advanced grids, stamping density and color on
// every filled cell. Panics with a configuration mismatch on a basic
// grid.
func (f *PoolFiller) FillTyped(x, y int32, weight float32, density uint8, col Color, maxY int32) int {
	if !f.grid.params.Advanced {
		panic("fluid: configuration mismatch: FillTyped called on a basic grid, use Fill")
	}
	return f.fill(x, y, weight, density, col, maxY)
}

func (f *PoolFiller) fill(x, y int32, weight float32, density uint8, col Color, maxY int32) int {
	g := f.grid
	if !g.params.Enabled {
		return 0
	}
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	filled := 0
	key := f.nextKey()
	f.queue = append(f.queue[:0], fillNode{i: g.index(x, y), weight: weight})
	for head, iterations := 0, 0; head < len(f.queue); head++ {
		if iterations >= maxFillIterations {
			slog.Warn("pool fill hit iteration cap, accepting partial fill",
				"x", x, "y", y, "cap", maxFillIterations)
			break
		}
		iterations++

		n := f.queue[head]
		i := n.i
		if g.weights[i] == SolidWeight || g.fillKeys[i] == key {
			continue
		}
		// Leftover fluid tagged by an earlier fill is evicted before
		// this fill claims the cell.
		if g.fillKeys[i] != 0 && g.weights[i] > 0 {
			g.weights[i] = 0
		}
		g.weights[i] += n.weight
		g.fillKeys[i] = key
		g.stable[i] = false
		if g.params.Advanced {
			g.densities[i] = density
			g.colors[i] = col
		}
		filled++

		links := &g.links[i]
		if l := links[DirLeft]; l >= 0 {
			f.queue = append(f.queue, fillNode{i: l, weight: n.weight})
		}
		if r := links[DirRight]; r >= 0 {
			f.queue = append(f.queue, fillNode{i: r, weight: n.weight})
		}
		if d := links[DirDown]; d >= 0 {
			f.queue = append(f.queue, fillNode{i: d, weight: n.weight + g.params.PressureWeight})
		}
		if u := links[DirUp]; u >= 0 && i%g.height+1 <= maxY {
			f.queue = append(f.queue, fillNode{i: u, weight: n.weight})
		}
	}
	return filled
}

// Clear retracts a previously generated pool: the same bounded expansion
// from (x, y), zeroing weight and fill tags instead of adding fluid. It
// stops at solid cells, at cells with nothing to clear and at the
// iteration cap, and wakes the neighbors of everything it empties.
// Returns the number of cells cleared.
func (f *PoolFiller) Clear(x, y int32) int {
	g := f.grid
	if !g.params.Enabled {
		return 0
	}
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	cleared := 0
	f.queue = append(f.queue[:0], fillNode{i: g.index(x, y)})
	for head, iterations := 0, 0; head < len(f.queue); head++ {
		if iterations >= maxFillIterations {
			slog.Warn("pool clear hit iteration cap, accepting partial clear",
				"x", x, "y", y, "cap", maxFillIterations)
			break
		}
		iterations++

		i := f.queue[head].i
		if g.weights[i] == SolidWeight {
			continue
		}
		if g.weights[i] <= 0 && g.fillKeys[i] == 0 {
			continue
		}
		g.weights[i] = 0
		g.fillKeys[i] = 0
		g.stable[i] = false
		if g.params.Advanced {
			g.densities[i] = 0
			g.colors[i] = Color{}
		}
		g.unsettle(i)
		cleared++

		for _, l := range g.links[i] {
			if l >= 0 {
				f.queue = append(f.queue, fillNode{i: l})
			}
		}
	}
	return cleared
}
