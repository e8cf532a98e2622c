package fluid

// Neighbor directions in flow order. The solver visits them in this
// order and the order is load-bearing: earlier directions consume from
// the running remainder before later ones see it.
const (
	DirDown = iota
	DirRight
	DirLeft
	DirUp
	dirCount
)

// Grid is a dense width x height fluid field stored as parallel arrays,
// indexed x-major (index = x*height + y, y = 0 is the bottom row).
// Neighbor links are resolved once at construction; -1 marks a missing
// neighbor at a world edge. The delta buffer accumulates pending weight
// transfers during a tick's scan phase and is all-zero between ticks.
type Grid struct {
	width  int32
	height int32
	params Params

	weights  []float32
	stable   []bool
	deltas   []float32
	links    [][dirCount]int32
	fillKeys []uint16

	// Advanced payload; nil in basic mode.
	densities []uint8
	colors    []Color
}

// NewGrid allocates a grid of the given dimensions with every cell empty.
func NewGrid(width, height int32, params Params) *Grid {
	if width <= 0 || height <= 0 {
		panic("fluid: grid dimensions must be positive")
	}
	n := int(width) * int(height)
	g := &Grid{
		width:    width,
		height:   height,
		params:   params,
		weights:  make([]float32, n),
		stable:   make([]bool, n),
		deltas:   make([]float32, n),
		links:    make([][dirCount]int32, n),
		fillKeys: make([]uint16, n),
	}
	if params.Advanced {
		g.densities = make([]uint8, n)
		g.colors = make([]Color, n)
	}
	for x := int32(0); x < width; x++ {
		for y := int32(0); y < height; y++ {
			i := x*height + y
			g.links[i] = [dirCount]int32{
				DirDown:  g.linkIndex(x, y-1),
				DirRight: g.linkIndex(x+1, y),
				DirLeft:  g.linkIndex(x-1, y),
				DirUp:    g.linkIndex(x, y+1),
			}
		}
	}
	return g
}

func (g *Grid) linkIndex(x, y int32) int32 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return -1
	}
	return x*g.height + y
}

// Width returns the grid width in cells.
func (g *Grid) Width() int32 { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int32 { return g.height }

// Params returns the tunables the grid was built with.
func (g *Grid) Params() Params { return g.params }

// SetTunables replaces the scalar tunables at runtime and wakes the grid
// so fluid re-settles under the new values. The structural flags
// (Enabled, Advanced, TopDown) are fixed at construction and keep their
// original values.
func (g *Grid) SetTunables(p Params) {
	p.Enabled = g.params.Enabled
	p.Advanced = g.params.Advanced
	p.TopDown = g.params.TopDown
	g.params = p
	for i := range g.stable {
		g.stable[i] = false
	}
}

// At returns a handle to the cell at (x, y), or ok=false outside bounds.
func (g *Grid) At(x, y int32) (Cell, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return Cell{}, false
	}
	return Cell{g: g, i: x*g.height + y}, true
}

func (g *Grid) index(x, y int32) int32 {
	return x*g.height + y
}

func (g *Grid) coords(i int32) (x, y int32) {
	return i / g.height, i % g.height
}

// unsettle marks every existing neighbor of cell i unstable.
func (g *Grid) unsettle(i int32) {
	for _, n := range g.links[i] {
		if n >= 0 {
			g.stable[n] = false
		}
	}
}

// Weights returns the live weight array, x-major. Callers must treat it
// as read-only; it is exposed so renderers and persistence can consume
// the grid without a copy.
func (g *Grid) Weights() []float32 { return g.weights }

// Densities returns the live density array, or nil in basic mode.
// Read-only, like Weights.
func (g *Grid) Densities() []uint8 { return g.densities }

// Colors returns the live color array, or nil in basic mode.
// Read-only, like Weights.
func (g *Grid) Colors() []Color { return g.colors }

// TotalWeight sums the fluid weight of all non-solid cells.
func (g *Grid) TotalWeight() float64 {
	var sum float64
	for _, w := range g.weights {
		if w != SolidWeight {
			sum += float64(w)
		}
	}
	return sum
}

// UnstableCount reports how many cells are awake with enough weight to
// flow, the same predicate the scan phase uses to solve a cell.
func (g *Grid) UnstableCount() int {
	n := 0
	for i, w := range g.weights {
		if !g.stable[i] && w > g.params.MinWeight {
			n++
		}
	}
	return n
}

// Region is a half-open rectangle of cells [MinX, MaxX) x [MinY, MaxY).
type Region struct {
	MinX, MinY int32
	MaxX, MaxY int32
}

// FullRegion covers the whole grid.
func (g *Grid) FullRegion() Region {
	return Region{MaxX: g.width, MaxY: g.height}
}

// Clip bounds the region to the grid.
func (r Region) Clip(width, height int32) Region {
	if r.MinX < 0 {
		r.MinX = 0
	}
	if r.MinY < 0 {
		r.MinY = 0
	}
	if r.MaxX > width {
		r.MaxX = width
	}
	if r.MaxY > height {
		r.MaxY = height
	}
	return r
}

// Empty reports whether the region covers no cells.
func (r Region) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Contains reports whether (x, y) lies inside the region.
func (r Region) Contains(x, y int32) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// grow expands the region by n cells on every side.
func (r Region) grow(n int32) Region {
	return Region{
		MinX: r.MinX - n,
		MinY: r.MinY - n,
		MaxX: r.MaxX + n,
		MaxY: r.MaxY + n,
	}
}
