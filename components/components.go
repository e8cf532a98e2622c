// Package components defines ECS components for world devices.
package components

import "seep/fluid"

// Position is a device's cell location in the world.
type Position struct {
	X, Y int32
}

// Emitter pours fluid into its cell while the simulation runs. Rate is
// weight per second; the tick system scales it by the update interval.
type Emitter struct {
	Rate    float32
	Density uint8       // fluid density poured (advanced worlds)
	Color   fluid.Color // fluid color poured (advanced worlds)
	Enabled bool
}

// Drain removes fluid from its cell while the simulation runs. Rate is
// weight per second.
type Drain struct {
	Rate    float32
	Enabled bool
}
