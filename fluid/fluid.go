// Package fluid implements a cellular-automaton liquid simulation over a
// dense 2D grid. Each cell carries a scalar weight; an iterative solver
// moves weight between neighbors until the grid settles. Two flow modes
// share the algorithm: down-flow models gravity with pressurized columns,
// top-down treats all four directions symmetrically. The advanced payload
// adds per-cell density and color with mixing rules.
package fluid

// SolidWeight is the sentinel weight marking a cell as impassable terrain.
// Solid cells never hold fluid and are compared by exact equality.
const SolidWeight float32 = -100

// maxFillIterations bounds a single pool fill or clear operation.
const maxFillIterations = 10000

// Params holds the simulation tunables. A Grid captures its Params at
// construction; the scalar values can be replaced later through
// SetTunables, the structural flags cannot.
type Params struct {
	Enabled        bool    // Master switch; when false all mutation entry points are no-ops
	Advanced       bool    // Cells carry density and color
	TopDown        bool    // Symmetric flow instead of gravity
	MaxWeight      float32 // Nominal cell capacity
	MinWeight      float32 // Weights below this are treated as empty
	StableAmount   float32 // Net change below this settles a cell
	PressureWeight float32 // Extra capacity per unit of column above
	MixFactor      float32 // Color blend factor for same-density mixing
	SurfaceMixing  bool    // Bottom neighbor accepts foreign density while under MaxWeight
	UpdateInterval float64 // Seconds between simulation ticks
}

// DefaultParams returns the tunables used by the engine defaults.
func DefaultParams() Params {
	return Params{
		Enabled:        true,
		Advanced:       false,
		TopDown:        false,
		MaxWeight:      1.0,
		MinWeight:      0.005,
		StableAmount:   0.0001,
		PressureWeight: 0.01,
		MixFactor:      0.1,
		UpdateInterval: 0.05,
	}
}

// Color is an RGBA8 fluid display color.
type Color struct {
	R, G, B, A uint8
}

// IsZero reports whether the color is the cleared zero value.
func (c Color) IsZero() bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0
}

// Lerp interpolates toward target by t in [0, 1].
func (c Color) Lerp(target Color, t float32) Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Color{
		R: uint8(float32(c.R) + (float32(target.R)-float32(c.R))*t),
		G: uint8(float32(c.G) + (float32(target.G)-float32(c.G))*t),
		B: uint8(float32(c.B) + (float32(target.B)-float32(c.B))*t),
		A: uint8(float32(c.A) + (float32(target.A)-float32(c.A))*t),
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
