// Package world layers a block terrain over the fluid simulation and
// exposes the combined state to the game, renderers and the state
// server. Blocks own solidity; the fluid grid mirrors it through the
// solid sentinel so the solver never consults the block layer.
package world

// Block is a terrain cell type.
type Block uint8

const (
	BlockAir Block = iota
	BlockDirt
	BlockGrass
	BlockStone
	BlockSand
)

var blockNames = [...]string{
	BlockAir:   "air",
	BlockDirt:  "dirt",
	BlockGrass: "grass",
	BlockStone: "stone",
	BlockSand:  "sand",
}

func (b Block) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return "unknown"
}

// Solid reports whether the block excludes fluid.
func (b Block) Solid() bool {
	return b != BlockAir
}
