package world

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"seep/fluid"
)

// Sanity cap on loaded world size.
const maxWorldCells = 64 << 20

// Save writes the world to path: the dimensions, the block array and the
// live fluid arrays, little-endian, laid out exactly as held in memory.
// Stability flags are not saved; loading re-settles the simulation.
func (w *World) Save(path string) error {
	var buf bytes.Buffer
	g := w.grid
	fields := []any{w.width, w.height, w.blocks, g.Weights()}
	if w.Advanced() {
		fields = append(fields, g.Densities(), g.Colors())
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("encoding world: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing world file: %w", err)
	}
	return nil
}

// Load reads a world saved by Save. The fluid mode in params must match
// the mode the file was saved with; a mismatch surfaces as a size error.
func Load(path string, chunkSize int32, params fluid.Params) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file: %w", err)
	}
	r := bytes.NewReader(data)
	var width, height int32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("reading world header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("reading world header: %w", err)
	}
	if width <= 0 || height <= 0 || int64(width)*int64(height) > maxWorldCells {
		return nil, fmt.Errorf("implausible world dimensions %dx%d", width, height)
	}

	w := New(width, height, chunkSize, params)
	g := w.grid
	fields := []any{w.blocks, g.Weights()}
	if params.Advanced {
		fields = append(fields, g.Densities(), g.Colors())
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("reading world arrays: %w", err)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("world file has %d trailing bytes, wrong fluid mode?", r.Len())
	}
	w.UpdateFluid()
	return w, nil
}
