package fluid

// TickStats summarizes one simulation tick.
type TickStats struct {
	Scanned int // cells that were solved this tick
	Changed int // committed cells whose delta exceeded the stability threshold
	Emptied int // sub-threshold residues zeroed at commit
	Drained int // cells that hit exactly zero with a nonzero delta

	DeltaSum float64 // sum of pending deltas before commit; ~0 when weight is conserved
	Residue  float64 // weight dropped by residue emptying

	Settled bool // no awake fluid remains in the region after this tick
}

// Simulator steps a grid over the currently loaded region. One tick runs
// a scan phase that solves every awake fluid cell into the delta buffer,
// then a commit phase that applies deltas, updates stability and decides
// whether another tick is needed. Ticks are gated by a time accumulator
// and skipped entirely while the region is settled, until an external
// mutation marks the simulation dirty again.
type Simulator struct {
	grid        *Grid
	region      Region
	accumulator float64
	pending     bool
	onChange    func(x, y int32)
}

// NewSimulator creates a simulator covering the whole grid.
func NewSimulator(g *Grid) *Simulator {
	return &Simulator{grid: g, region: g.FullRegion(), pending: true}
}

// Grid returns the simulated grid.
func (s *Simulator) Grid() *Grid { return s.grid }

// Region returns the current simulation window.
func (s *Simulator) Region() Region { return s.region }

// SetRegion changes the simulation window, clipped to the grid. Cells
// that fall outside keep their last committed state until the window
// covers them again. Loading a new window wakes the scheduler.
func (s *Simulator) SetRegion(r Region) {
	s.region = r.Clip(s.grid.width, s.grid.height)
	s.pending = true
}

// SetChangeListener registers a callback invoked during commit for every
// cell whose weight changed materially, and by MarkDirtyAt.
func (s *Simulator) SetChangeListener(fn func(x, y int32)) {
	s.onChange = fn
}

// Pending reports whether the region still holds awake fluid.
func (s *Simulator) Pending() bool { return s.pending }

// MarkDirty wakes the scheduler after an external mutation.
func (s *Simulator) MarkDirty() { s.pending = true }

// MarkDirtyAt wakes the scheduler, wakes the cell at (x, y) and pushes an
// immediate change notification for it. Out-of-bounds coordinates are
// ignored.
func (s *Simulator) MarkDirtyAt(x, y int32) {
	g := s.grid
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.stable[g.index(x, y)] = false
	s.pending = true
	if s.onChange != nil {
		s.onChange(x, y)
	}
}

// Update advances the accumulator by dt seconds and runs at most one
// tick once the configured interval has elapsed. The bool reports
// whether a tick ran.
func (s *Simulator) Update(dt float64) (TickStats, bool) {
	p := &s.grid.params
	if !p.Enabled {
		return TickStats{}, false
	}
	s.accumulator += dt
	if s.accumulator < p.UpdateInterval {
		return TickStats{}, false
	}
	s.accumulator -= p.UpdateInterval
	if s.accumulator > p.UpdateInterval {
		s.accumulator = p.UpdateInterval
	}
	if !s.pending {
		return TickStats{Settled: true}, false
	}
	return s.Step(), true
}

// Step runs one scan/commit tick over the current region immediately.
func (s *Simulator) Step() TickStats {
	var st TickStats
	g := s.grid
	p := &g.params
	if !p.Enabled {
		return st
	}
	region := s.region.Clip(g.width, g.height)
	if region.Empty() {
		s.pending = false
		st.Settled = true
		return st
	}

	for x := region.MinX; x < region.MaxX; x++ {
		base := x * g.height
		for y := region.MinY; y < region.MaxY; y++ {
			i := base + y
			if g.weights[i] > p.MinWeight && !g.stable[i] {
				g.flowCell(i)
				st.Scanned++
			}
		}
	}

	// Commit covers the region plus a one-cell border: edge cells flow
	// into neighbors just outside the scan window, and those deltas must
	// land this tick to keep the buffer clean between ticks.
	commit := region.grow(1).Clip(g.width, g.height)
	pending := false
	for x := commit.MinX; x < commit.MaxX; x++ {
		base := x * g.height
		for y := commit.MinY; y < commit.MaxY; y++ {
			i := base + y
			w := g.weights[i]
			if w == SolidWeight {
				continue
			}
			d := g.deltas[i]
			st.DeltaSum += float64(d)
			w += d
			if abs32(d) > p.StableAmount {
				st.Changed++
				if s.onChange != nil {
					s.onChange(x, y)
				}
			}
			// Down-flow culls faint residues; top-down keeps them so
			// thin puddles do not flicker in and out.
			if !p.TopDown && w > 0 && w < p.MinWeight {
				st.Residue += float64(w)
				st.Emptied++
				w = 0
			}
			// A cell drained to exactly zero in one tick is an abrupt
			// change its neighbors have to react to.
			if w == 0 && d != 0 {
				g.unsettle(i)
				g.stable[i] = false
				st.Drained++
			}
			g.weights[i] = w
			g.deltas[i] = 0
			if !g.stable[i] && w > p.MinWeight {
				pending = true
			}
		}
	}
	s.pending = pending
	st.Settled = !pending
	return st
}
