// Package compact implements the fixed-size packed encoding of a full
// 24-puzzle configuration used by the external frontier engine.
//
// A Record is two 64-bit words. Bits 0..3 of Lo are the move mask, the
// bits above it hold each numbered tile's cell in 5-bit fields: tiles 1..12
// in Lo bits 4..63, tiles 13..24 in Hi bits 0..59. The blank's cell is not
// stored; it is the one cell left over. Two records for the same
// permutation therefore compare equal outside the mask bits, and duplicate
// discoveries merge by OR-ing their masks.
package compact

import (
	"math/bits"

	"github.com/hupe1980/patterndb/puzzle"
)

const (
	// MoveMask covers the move-mask bits of Lo. A cell has at most four
	// neighbors, so four bits suffice.
	MoveMask = 0xf

	// RecordSize is the encoded size of a Record in bytes.
	RecordSize = 16
)

// Record is one packed configuration plus its move-exploration mask.
type Record struct {
	Lo, Hi uint64
}

// Pack encodes p with an empty move mask.
func Pack(p *puzzle.Puzzle) Record {
	var r Record
	for t := 1; t <= 12; t++ {
		r.Lo |= uint64(p.Tiles[t]) << (4 + 5*(t-1))
	}
	for t := 13; t < puzzle.TileCount; t++ {
		r.Hi |= uint64(p.Tiles[t]) << (5 * (t - 13))
	}
	return r
}

// PackMasked encodes p with the move back to oldZloc masked, so expansion
// does not immediately re-derive the parent configuration.
func PackMasked(p *puzzle.Puzzle, oldZloc int) Record {
	r := Pack(p)
	if i := puzzle.MoveIndex(p.ZeroLocation(), oldZloc); i >= 0 {
		r.Lo |= 1 << i
	}
	return r
}

// Unpack decodes the full configuration. The blank's cell is recovered as
// the single cell no numbered tile occupies.
func (r Record) Unpack(p *puzzle.Puzzle) {
	var occ uint32
	for t := 1; t <= 12; t++ {
		c := r.Lo >> (4 + 5*(t-1)) & 0x1f
		p.Tiles[t] = uint8(c)
		p.Grid[c] = uint8(t)
		occ |= 1 << c
	}
	for t := 13; t < puzzle.TileCount; t++ {
		c := r.Hi >> (5 * (t - 13)) & 0x1f
		p.Tiles[t] = uint8(c)
		p.Grid[c] = uint8(t)
		occ |= 1 << c
	}
	zloc := bits.TrailingZeros32(^occ)
	p.Tiles[0] = uint8(zloc)
	p.Grid[zloc] = 0
}

// Cell returns tile t's cell without decoding the whole record.
func (r Record) Cell(t int) int {
	switch {
	case t == 0:
		var occ uint32
		for i := 1; i <= 12; i++ {
			occ |= 1 << (r.Lo >> (4 + 5*(i-1)) & 0x1f)
		}
		for i := 13; i < puzzle.TileCount; i++ {
			occ |= 1 << (r.Hi >> (5 * (i - 13)) & 0x1f)
		}
		return bits.TrailingZeros32(^occ)
	case t <= 12:
		return int(r.Lo >> (4 + 5*(t-1)) & 0x1f)
	default:
		return int(r.Hi >> (5 * (t - 13)) & 0x1f)
	}
}

// Mask returns the move mask.
func (r Record) Mask() int { return int(r.Lo & MoveMask) }

// SamePermutation reports whether a and b encode the same configuration,
// ignoring their move masks.
func SamePermutation(a, b Record) bool {
	return a.Hi == b.Hi && (a.Lo^b.Lo)&^uint64(MoveMask) == 0
}

// Merge combines two records for the same permutation by OR-ing their move
// masks. The operation is idempotent, commutative and associative, which is
// what lets coalescing collapse duplicates in any order.
func Merge(a, b Record) Record {
	a.Lo |= b.Lo & MoveMask
	return a
}
