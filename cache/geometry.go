// Package cache implements a trace-driven model of a set-associative cache
// with LRU replacement. The model classifies addresses and tracks line
// state; it does not store block contents.
package cache

import (
	"errors"
	"fmt"
)

// addressWidth is the number of bits in a simulated memory address.
const addressWidth = 64

// maxTotalLines caps the number of lines a cache may allocate. Geometries
// that decode fine but would require more lines than this are rejected at
// build time instead of attempting the allocation.
const maxTotalLines = 1 << 28

// ErrInvalidGeometry is returned when a cache cannot be built from the
// requested geometry.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// A Geometry describes the shape of a set-associative cache:
// 2^SetIndexBits sets, WayAssociativity lines per set, and
// 2^BlockOffsetBits bytes per block.
type Geometry struct {
	SetIndexBits     uint32
	WayAssociativity int
	BlockOffsetBits  uint32
}

// NumSets returns the number of sets the geometry defines.
func (g Geometry) NumSets() uint64 {
	return 1 << g.SetIndexBits
}

// BlockOffset extracts the block-offset bits of addr. The model never
// reads block contents, so the offset selects nothing, but it is decoded
// so that the full address decomposition stays checked.
func (g Geometry) BlockOffset(addr uint64) uint64 {
	return addr & (1<<g.BlockOffsetBits - 1)
}

// SetIndex extracts the set-index bits of addr.
func (g Geometry) SetIndex(addr uint64) uint64 {
	return (addr >> g.BlockOffsetBits) & (g.NumSets() - 1)
}

// Tag extracts the tag bits of addr.
func (g Geometry) Tag(addr uint64) uint64 {
	return addr >> (g.BlockOffsetBits + g.SetIndexBits)
}

// Decode splits addr into the tag and set index that a lookup uses.
func (g Geometry) Decode(addr uint64) (tag, setIndex uint64) {
	return g.Tag(addr), g.SetIndex(addr)
}

// Validate reports whether a cache with this geometry can be built. It
// rejects zero associativity, field widths that exceed the address width,
// and set counts large enough that allocating the line array would be
// unreasonable.
func (g Geometry) Validate() error {
	if g.WayAssociativity < 1 {
		return fmt.Errorf("%w: way associativity must be at least 1, got %d",
			ErrInvalidGeometry, g.WayAssociativity)
	}

	if uint64(g.SetIndexBits)+uint64(g.BlockOffsetBits) > addressWidth {
		return fmt.Errorf(
			"%w: set index bits (%d) plus block offset bits (%d) exceed the %d-bit address width",
			ErrInvalidGeometry, g.SetIndexBits, g.BlockOffsetBits, addressWidth)
	}

	if g.SetIndexBits >= 63 || g.NumSets() > maxTotalLines ||
		uint64(g.WayAssociativity) > maxTotalLines/g.NumSets() {
		return fmt.Errorf("%w: %d sets with %d ways exceed the line cap of %d",
			ErrInvalidGeometry, uint64(1)<<g.SetIndexBits, g.WayAssociativity,
			uint64(maxTotalLines))
	}

	return nil
}
