package game

import (
	"seep/fluid"
	"seep/world"
)

// Tool selects what the mouse does to the world.
type Tool int

const (
	ToolWater Tool = iota
	ToolLava
	ToolStone
	ToolErase
	ToolEmitter
	ToolDrain
	ToolPool
)

var toolNames = [...]string{"water", "lava", "stone", "erase", "emitter", "drain", "pool"}

func (t Tool) String() string {
	if t >= 0 && int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "unknown"
}

// fluidPreset pairs a density with a display color for the pour tools.
// Density only matters on advanced worlds; basic worlds ignore it.
type fluidPreset struct {
	density uint8
	color   fluid.Color
}

// Presets share the world generator's palette, so poured water merges
// with generated pools instead of bouncing off a foreign density.
var (
	waterPreset = fluidPreset{density: world.WaterDensity, color: world.WaterColor}
	lavaPreset  = fluidPreset{density: world.LavaDensity, color: world.LavaColor}
)

// preset returns the fluid a pour tool dispenses.
func (t Tool) preset() (fluidPreset, bool) {
	switch t {
	case ToolWater:
		return waterPreset, true
	case ToolLava:
		return lavaPreset, true
	}
	return fluidPreset{}, false
}
