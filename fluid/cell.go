package fluid

// Cell is a cheap handle to one grid cell. Handles are only valid for
// the grid that produced them; the zero Cell is not usable.
type Cell struct {
	g *Grid
	i int32
}

// Position returns the cell's grid coordinates.
func (c Cell) Position() (x, y int32) {
	return c.g.coords(c.i)
}

// Weight returns the cell's fluid weight.
func (c Cell) Weight() float32 {
	return c.g.weights[c.i]
}

// Stable reports whether the cell has settled.
func (c Cell) Stable() bool {
	return c.g.stable[c.i]
}

// Density returns the cell's fluid type. Zero in basic mode.
func (c Cell) Density() uint8 {
	if !c.g.params.Advanced {
		return 0
	}
	return c.g.densities[c.i]
}

// Color returns the cell's blended display color. Zero in basic mode.
func (c Cell) Color() Color {
	if !c.g.params.Advanced {
		return Color{}
	}
	return c.g.colors[c.i]
}

// FillKey returns the pool tag stamped by the last fill that claimed
// the cell, or zero.
func (c Cell) FillKey() uint16 {
	return c.g.fillKeys[c.i]
}

// IsSolid reports whether the cell is impassable terrain.
func (c Cell) IsSolid() bool {
	return c.g.weights[c.i] == SolidWeight
}

// SetSolid turns the cell into terrain. Any held fluid is discarded, the
// pending delta is dropped, and all neighbors are woken so surrounding
// fluid reroutes around the new obstacle.
func (c Cell) SetSolid() {
	g := c.g
	g.weights[c.i] = SolidWeight
	g.deltas[c.i] = 0
	g.stable[c.i] = true
	g.fillKeys[c.i] = 0
	if g.params.Advanced {
		g.densities[c.i] = 0
		g.colors[c.i] = Color{}
	}
	g.unsettle(c.i)
}

// SetEmpty clears the cell to hold no fluid and wakes its neighbors.
func (c Cell) SetEmpty() {
	g := c.g
	g.weights[c.i] = 0
	g.deltas[c.i] = 0
	g.stable[c.i] = false
	g.fillKeys[c.i] = 0
	if g.params.Advanced {
		g.densities[c.i] = 0
		g.colors[c.i] = Color{}
	}
	g.unsettle(c.i)
}

// AddWeight adds fluid to a basic-mode cell and wakes it.
// Panics with a configuration mismatch in advanced mode.
func (c Cell) AddWeight(amount float32) {
	if c.g.params.Advanced {
		panic("fluid: configuration mismatch: AddWeight called on an advanced grid, use AddTypedWeight")
	}
	c.g.weights[c.i] += amount
	c.g.stable[c.i] = false
}

// AddTypedWeight adds fluid of a given density to an advanced-mode cell.
// A cell with no prior color adopts the incoming color outright; otherwise
// the existing color shifts toward the incoming one in proportion to the
// added share of the new total. Panics with a configuration mismatch in
// basic mode.
func (c Cell) AddTypedWeight(density uint8, amount float32, col Color) {
	g := c.g
	if !g.params.Advanced {
		panic("fluid: configuration mismatch: AddTypedWeight called on a basic grid, use AddWeight")
	}
	total := g.weights[c.i] + amount
	if g.colors[c.i].IsZero() {
		g.colors[c.i] = col
	} else if total > 0 {
		g.colors[c.i] = g.colors[c.i].Lerp(col, amount/total)
	}
	g.densities[c.i] = density
	g.weights[c.i] = total
	g.stable[c.i] = false
}

// RemoveWeight drains up to amount of fluid from the cell, returning
// the weight actually removed. Draining the cell dry clears it and
// wakes its neighbors.
func (c Cell) RemoveWeight(amount float32) float32 {
	g := c.g
	w := g.weights[c.i]
	if amount <= 0 || w <= 0 || w == SolidWeight {
		return 0
	}
	if amount >= w {
		c.SetEmpty()
		return w
	}
	g.weights[c.i] = w - amount
	g.stable[c.i] = false
	return amount
}

// Height returns the cell's visual fill height in [0, 1]. A cell with
// matching fluid directly above reads as full so falling columns render
// as continuous streams instead of stacked partial cells.
func (c Cell) Height() float32 {
	g := c.g
	if up := g.links[c.i][DirUp]; up >= 0 {
		w := g.weights[up]
		if w > 0 && (!g.params.Advanced || g.densities[up] == g.densities[c.i]) {
			return 1
		}
	}
	w := g.weights[c.i]
	if w > 1 {
		return 1
	}
	if w < 0 {
		return 0
	}
	return w
}

// UnsettleNeighbors wakes every existing neighbor of the cell.
func (c Cell) UnsettleNeighbors() {
	c.g.unsettle(c.i)
}
