package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayStability    OverlayID = "stability"
	OverlayDensity      OverlayID = "density"
	OverlayPressure     OverlayID = "pressure"
	OverlayChunkGrid    OverlayID = "chunk_grid"
	OverlayFlowActivity OverlayID = "flow_activity"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "S", "G")
	Category    string      // Grouping (e.g., "fluid", "debug")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays. The cell-tint overlays are
// mutually exclusive since they color the same fluid cells.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayStability,
		Name:        "Stability",
		Description: "Tint fluid cells by settled state",
		Key:         rl.KeyS,
		KeyLabel:    "S",
		Category:    "fluid",
		Exclusive:   []OverlayID{OverlayDensity, OverlayPressure},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayDensity,
		Name:        "Density Layers",
		Description: "Color fluid cells by density value",
		Key:         rl.KeyD,
		KeyLabel:    "D",
		Category:    "fluid",
		Exclusive:   []OverlayID{OverlayStability, OverlayPressure},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPressure,
		Name:        "Pressure",
		Description: "Highlight cells compressed past nominal capacity",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "fluid",
		Exclusive:   []OverlayID{OverlayStability, OverlayDensity},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayChunkGrid,
		Name:        "Chunk Grid",
		Description: "Draw chunk borders over the world",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayFlowActivity,
		Name:        "Flow Activity",
		Description: "Flash chunks written by recent simulation ticks",
		Key:         rl.KeyA,
		KeyLabel:    "A",
		Category:    "debug",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	desc, ok := r.byID[id]
	if !ok {
		return false
	}

	newState := !r.enabled[id]
	r.enabled[id] = newState

	// If enabling, disable exclusive overlays
	if newState {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}

	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// EnabledOverlays returns the currently enabled overlay IDs in
// registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			result = append(result, desc.ID)
		}
	}
	return result
}
