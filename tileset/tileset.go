// Package tileset provides the bitmask type describing which tiles of a
// 25-tile sliding puzzle a pattern database tracks.
package tileset

import (
	"fmt"
	"iter"
	"math/bits"
	"strconv"
	"strings"
)

const (
	// TileCount is the number of grid cells (and tiles, counting the blank).
	TileCount = 25

	// ZeroTile is the tile number of the blank.
	ZeroTile = 0
)

// Tileset is a set of tiles represented as a bitmask. Bit i is set when
// tile i is a member. Only tiles 0..24 are representable.
type Tileset uint32

// All contains every tile including the blank.
const All = Tileset(1<<TileCount - 1)

// New returns a Tileset containing the given tiles.
func New(tiles ...int) Tileset {
	var ts Tileset
	for _, t := range tiles {
		ts = ts.Add(t)
	}
	return ts
}

// Parse parses a comma-separated list of tile numbers, e.g. "0,1,2,5,6".
func Parse(s string) (Tileset, error) {
	var ts Tileset
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("tileset: parse %q: %w", s, err)
		}
		if t < 0 || t >= TileCount {
			return 0, fmt.Errorf("tileset: tile %d out of range", t)
		}
		ts = ts.Add(t)
	}
	return ts, nil
}

// Has reports whether tile t is a member.
func (ts Tileset) Has(t int) bool { return ts&(1<<t) != 0 }

// Add returns ts with tile t added.
func (ts Tileset) Add(t int) Tileset { return ts | 1<<t }

// Remove returns ts with tile t removed.
func (ts Tileset) Remove(t int) Tileset { return ts &^ (1 << t) }

// Count returns the number of member tiles.
func (ts Tileset) Count() int { return bits.OnesCount32(uint32(ts)) }

// ZeroAware reports whether the blank tile is a member. Zero-aware tilesets
// carry an extra equivalence-class dimension in their index space.
func (ts Tileset) ZeroAware() bool { return ts.Has(ZeroTile) }

// Tiles iterates over the member tiles in ascending order.
func (ts Tileset) Tiles() iter.Seq[int] {
	return func(yield func(int) bool) {
		for rest := uint32(ts); rest != 0; rest &= rest - 1 {
			if !yield(bits.TrailingZeros32(rest)) {
				return
			}
		}
	}
}

// Slice returns the member tiles as a sorted slice.
func (ts Tileset) Slice() []int {
	tiles := make([]int, 0, ts.Count())
	for t := range ts.Tiles() {
		tiles = append(tiles, t)
	}
	return tiles
}

// String formats the tileset as a comma-separated tile list.
func (ts Tileset) String() string {
	var sb strings.Builder
	first := true
	for t := range ts.Tiles() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.Itoa(t))
	}
	return sb.String()
}
