// Package index maps puzzle configurations to pattern-database indices and
// back.
//
// The index of a configuration with respect to a tileset has three parts:
// the map rank (which cells the tracked tiles occupy, as a colex combination
// rank), the permutation index (which tracked tile sits on which of those
// cells, as a Lehmer rank) and, for zero-aware tilesets, the equivalence
// class of the blank's cell. Two configurations whose blanks lie in the same
// connected region of free cells are equivalent: the blank can shuttle
// between them without moving a tracked tile.
package index

import (
	"fmt"
	"iter"
	"math/bits"
	"sort"

	"github.com/hupe1980/patterndb/puzzle"
	"github.com/hupe1980/patterndb/tileset"
)

// MaxTiles is the largest number of non-blank tiles a tileset may track.
// Index spaces beyond this are too large to tabulate.
const MaxTiles = 8

// Index identifies one pattern-database entry.
type Index struct {
	MapRank uint32
	Perm    uint32
	Eq      uint8
}

func (idx Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", idx.MapRank, idx.Perm, idx.Eq)
}

// rankInfo holds the per-map-rank data the hot paths need: the occupied
// cells, the free-cell component labeling and the flattened table offset.
type rankInfo struct {
	offset  uint64
	cells   [MaxTiles]uint8
	class   [puzzle.TileCount]int8
	eqCount uint8
}

// Aux describes the index space of one tileset. It is immutable after
// construction and safe for concurrent use.
type Aux struct {
	ts        tileset.Tileset
	tiles     []int // tracked non-blank tiles, ascending
	k         int
	zeroAware bool
	numRanks  uint64
	numPerms  uint64
	ranks     []rankInfo
	total     uint64
}

var binomial [puzzle.TileCount + 1][puzzle.TileCount + 1]uint64

func init() {
	for n := 0; n <= puzzle.TileCount; n++ {
		binomial[n][0] = 1
		for k := 1; k <= n; k++ {
			binomial[n][k] = binomial[n-1][k-1] + binomial[n-1][k]
		}
	}
}

// NewAux builds the index descriptor for ts. The descriptor enumerates all
// C(25,k) map ranks and labels each rank's free-cell components, so
// construction cost grows with the number of ranks.
func NewAux(ts tileset.Tileset) (*Aux, error) {
	tiles := make([]int, 0, ts.Count())
	for t := range ts.Tiles() {
		if t != tileset.ZeroTile {
			tiles = append(tiles, t)
		}
	}
	k := len(tiles)
	if k > MaxTiles {
		return nil, fmt.Errorf("index: tileset %v tracks %d tiles, max %d", ts, k, MaxTiles)
	}

	a := &Aux{
		ts:        ts,
		tiles:     tiles,
		k:         k,
		zeroAware: ts.ZeroAware(),
		numRanks:  binomial[puzzle.TileCount][k],
		numPerms:  fact(k),
	}

	a.ranks = make([]rankInfo, a.numRanks)

	// Enumerate cell combinations in colex order, which coincides with
	// map-rank order.
	cells := make([]uint8, k)
	for i := range cells {
		cells[i] = uint8(i)
	}
	var offset uint64
	for r := uint64(0); r < a.numRanks; r++ {
		ri := &a.ranks[r]
		ri.offset = offset
		copy(ri.cells[:], cells)
		if a.zeroAware {
			ri.eqCount = labelComponents(cells, &ri.class)
		} else {
			ri.eqCount = 1
		}
		offset += a.numPerms * uint64(ri.eqCount)
		nextCombination(cells)
	}
	a.total = offset

	return a, nil
}

// nextCombination advances cells to the colex successor combination.
func nextCombination(cells []uint8) {
	for i := range cells {
		if i+1 == len(cells) || cells[i]+1 < cells[i+1] {
			cells[i]++
			for j := 0; j < i; j++ {
				cells[j] = uint8(j)
			}
			return
		}
	}
}

// labelComponents flood-fills the connected components of the cells not
// occupied by a tracked tile. Components are numbered in order of their
// smallest cell. Occupied cells get class -1.
func labelComponents(occupied []uint8, class *[puzzle.TileCount]int8) uint8 {
	var occ uint32
	for _, c := range occupied {
		occ |= 1 << c
	}

	for c := range class {
		class[c] = -1
	}

	var n uint8
	var stack [puzzle.TileCount]uint8
	for c := 0; c < puzzle.TileCount; c++ {
		if occ&(1<<c) != 0 || class[c] >= 0 {
			continue
		}
		class[c] = int8(n)
		stack[0] = uint8(c)
		for top := 1; top > 0; {
			top--
			for _, d := range puzzle.Moves(int(stack[top])) {
				if occ&(1<<d) == 0 && class[d] < 0 {
					class[d] = int8(n)
					stack[top] = uint8(d)
					top++
				}
			}
		}
		n++
	}

	return n
}

func fact(k int) uint64 {
	f := uint64(1)
	for i := 2; i <= k; i++ {
		f *= uint64(i)
	}
	return f
}

// Tileset returns the tileset this descriptor indexes.
func (a *Aux) Tileset() tileset.Tileset { return a.ts }

// ZeroAware reports whether the blank is tracked.
func (a *Aux) ZeroAware() bool { return a.zeroAware }

// NumRanks returns the number of map ranks, C(25, k).
func (a *Aux) NumRanks() uint64 { return a.numRanks }

// NumPerms returns the number of permutation indices per rank, k!.
func (a *Aux) NumPerms() uint64 { return a.numPerms }

// EqCount returns the number of equivalence classes of map rank r. It is 1
// for every rank of a tileset that does not track the blank.
func (a *Aux) EqCount(r uint32) uint8 { return a.ranks[r].eqCount }

// TableSize returns the number of entries in map rank r's table.
func (a *Aux) TableSize(r uint32) uint64 {
	return a.numPerms * uint64(a.ranks[r].eqCount)
}

// TotalEntries returns the number of entries across all ranks.
func (a *Aux) TotalEntries() uint64 { return a.total }

// Offset flattens idx into a table offset in 0..TotalEntries-1.
func (a *Aux) Offset(idx Index) uint64 {
	ri := &a.ranks[idx.MapRank]
	return ri.offset + uint64(idx.Perm)*uint64(ri.eqCount) + uint64(idx.Eq)
}

// RankOffset returns the flattened offset of the first entry of map rank r,
// or TotalEntries when r equals NumRanks.
func (a *Aux) RankOffset(r uint64) uint64 {
	if r >= a.numRanks {
		return a.total
	}
	return a.ranks[r].offset
}

// IndexAt inverts Offset.
func (a *Aux) IndexAt(offset uint64) Index {
	r := sort.Search(len(a.ranks), func(i int) bool {
		return a.ranks[i].offset > offset
	}) - 1
	ri := &a.ranks[r]
	rel := offset - ri.offset
	return Index{
		MapRank: uint32(r),
		Perm:    uint32(rel / uint64(ri.eqCount)),
		Eq:      uint8(rel % uint64(ri.eqCount)),
	}
}

// combRank returns the colex rank of an ascending cell combination.
func combRank(cells []uint8) uint32 {
	var r uint64
	for i, c := range cells {
		r += binomial[c][i+1]
	}
	return uint32(r)
}

// permRank returns the Lehmer rank of sigma, a permutation of 0..k-1.
// Digit i of the Lehmer code weighs (k-1-i)!.
func permRank(sigma []uint8) uint32 {
	var r uint64
	k := len(sigma)
	for i := 0; i < k; i++ {
		var smaller uint64
		for j := i + 1; j < k; j++ {
			if sigma[j] < sigma[i] {
				smaller++
			}
		}
		r += smaller * fact(k-1-i)
	}
	return uint32(r)
}

// permUnrank writes the permutation with Lehmer rank p into sigma.
func permUnrank(p uint32, sigma []uint8) {
	k := len(sigma)
	rest := uint64(p)
	var used uint32
	for i := 0; i < k; i++ {
		f := fact(k - 1 - i)
		d := rest / f
		rest %= f
		// d-th unused value.
		for v := 0; v < k; v++ {
			if used&(1<<v) != 0 {
				continue
			}
			if d == 0 {
				sigma[i] = uint8(v)
				used |= 1 << v
				break
			}
			d--
		}
	}
}

// placement is the decoded form of an Index: the cell of each tracked tile
// (in ascending tile order) and the occupancy bitmask.
type placement struct {
	tileCell [MaxTiles]uint8
	occ      uint32
}

func (a *Aux) decode(idx Index, pl *placement) {
	ri := &a.ranks[idx.MapRank]
	var sigma [MaxTiles]uint8
	permUnrank(idx.Perm, sigma[:a.k])
	pl.occ = 0
	for i := 0; i < a.k; i++ {
		c := ri.cells[sigma[i]]
		pl.tileCell[i] = c
		pl.occ |= 1 << c
	}
}

// encode ranks a placement, with the blank at cell zcell for zero-aware
// tilesets (ignored otherwise).
func (a *Aux) encode(pl *placement, zcell int) Index {
	var cells [MaxTiles]uint8
	var sigma [MaxTiles]uint8

	// Sorted occupied cells and each tile's position among them.
	occ := pl.occ
	for i := 0; occ != 0; i++ {
		cells[i] = uint8(bits.TrailingZeros32(occ))
		occ &= occ - 1
	}
	for i := 0; i < a.k; i++ {
		c := pl.tileCell[i]
		sigma[i] = uint8(bits.OnesCount32(pl.occ & (1<<c - 1)))
	}

	idx := Index{
		MapRank: combRank(cells[:a.k]),
		Perm:    permRank(sigma[:a.k]),
	}
	if a.zeroAware {
		idx.Eq = uint8(a.ranks[idx.MapRank].class[zcell])
	}
	return idx
}

// Rank computes the index of a full puzzle configuration.
func (a *Aux) Rank(p *puzzle.Puzzle) Index {
	var pl placement
	for i, t := range a.tiles {
		c := p.Tiles[t]
		pl.tileCell[i] = c
		pl.occ |= 1 << c
	}
	return a.encode(&pl, p.ZeroLocation())
}

// Goals returns the goal indices, distance zero seeds for generation. The
// solved configuration yields exactly one index per tileset.
func (a *Aux) Goals() []Index {
	solved := puzzle.Solved()
	return []Index{a.Rank(&solved)}
}

// Successors enumerates the indices one move away from idx. A move slides a
// tracked tile to an adjacent free cell; for zero-aware tilesets the target
// cell must additionally lie in the blank's region, and the blank ends up on
// the vacated cell. Moves are symmetric, so this relation also enumerates
// predecessors.
func (a *Aux) Successors(idx Index) iter.Seq[Index] {
	return func(yield func(Index) bool) {
		if a.k == 0 {
			return
		}
		var pl placement
		a.decode(idx, &pl)
		ri := &a.ranks[idx.MapRank]

		for i := 0; i < a.k; i++ {
			c := pl.tileCell[i]
			for _, d := range puzzle.Moves(int(c)) {
				if pl.occ&(1<<d) != 0 {
					continue
				}
				if a.zeroAware && ri.class[d] != int8(idx.Eq) {
					continue
				}

				next := pl
				next.tileCell[i] = uint8(d)
				next.occ = pl.occ&^(1<<c) | 1<<d

				if !yield(a.encode(&next, int(c))) {
					return
				}
			}
		}
	}
}
