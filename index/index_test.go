package index

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patterndb/puzzle"
	"github.com/hupe1980/patterndb/tileset"
)

func TestNewAuxSizes(t *testing.T) {
	tests := []struct {
		name     string
		ts       tileset.Tileset
		numRanks uint64
		numPerms uint64
	}{
		{name: "blank only", ts: tileset.New(0), numRanks: 1, numPerms: 1},
		{name: "one tile", ts: tileset.New(1), numRanks: 25, numPerms: 1},
		{name: "two tiles", ts: tileset.New(3, 7), numRanks: 300, numPerms: 2},
		{name: "zero aware pair", ts: tileset.New(0, 1, 2), numRanks: 300, numPerms: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aux, err := NewAux(tt.ts)
			require.NoError(t, err)

			assert.Equal(t, tt.numRanks, aux.NumRanks())
			assert.Equal(t, tt.numPerms, aux.NumPerms())

			// Without the blank tracked there is no equivalence
			// dimension: total = ranks * perms.
			if !tt.ts.ZeroAware() {
				assert.Equal(t, tt.numRanks*tt.numPerms, aux.TotalEntries())
			} else {
				assert.GreaterOrEqual(t, aux.TotalEntries(), tt.numRanks*tt.numPerms)
			}
		})
	}
}

func TestNewAuxTooManyTiles(t *testing.T) {
	_, err := NewAux(tileset.New(1, 2, 3, 4, 5, 6, 7, 8, 9))
	assert.Error(t, err)
}

func TestBlankOnlyTrivialTable(t *testing.T) {
	aux, err := NewAux(tileset.New(0))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), aux.TotalEntries())

	goals := aux.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, uint64(0), aux.Offset(goals[0]))

	// Nothing to move: no successors.
	for range aux.Successors(goals[0]) {
		t.Fatal("expected no successors")
	}
}

func TestEquivalenceClasses(t *testing.T) {
	aux, err := NewAux(tileset.New(0, 1, 2))
	require.NoError(t, err)

	// Tiles on cells 1 and 5 wall off the corner cell 0: two regions.
	var cells = []uint8{1, 5}
	r := combRank(cells)
	assert.Equal(t, uint8(2), aux.EqCount(r))

	// Tiles on cells 3 and 4 leave the remaining cells connected.
	r = combRank([]uint8{3, 4})
	assert.Equal(t, uint8(1), aux.EqCount(r))
}

func TestOffsetIndexAtRoundTrip(t *testing.T) {
	for _, ts := range []tileset.Tileset{tileset.New(1, 6), tileset.New(0, 1, 5)} {
		aux, err := NewAux(ts)
		require.NoError(t, err)

		for off := uint64(0); off < aux.TotalEntries(); off++ {
			idx := aux.IndexAt(off)
			assert.Equal(t, off, aux.Offset(idx))
		}
	}
}

func TestRankDecodeRoundTrip(t *testing.T) {
	aux, err := NewAux(tileset.New(0, 1, 2, 5))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(5, 6))
	p := puzzle.Solved()
	for i := 0; i < 500; i++ {
		moves := puzzle.Moves(p.ZeroLocation())
		p.Move(moves[rng.IntN(len(moves))])

		idx := aux.Rank(&p)

		var pl placement
		aux.decode(idx, &pl)
		for j, tile := range aux.tiles {
			assert.Equal(t, p.Tiles[tile], pl.tileCell[j])
		}
	}
}

func TestGoalsSolvedDistanceZeroSeed(t *testing.T) {
	aux, err := NewAux(tileset.New(0, 1, 2))
	require.NoError(t, err)

	goals := aux.Goals()
	require.Len(t, goals, 1)

	solved := puzzle.Solved()
	assert.Equal(t, goals[0], aux.Rank(&solved))
}

// TestSuccessorsSymmetric checks that the move relation over index space is
// symmetric, which generation relies on when it expands outward from the
// goal.
func TestSuccessorsSymmetric(t *testing.T) {
	for _, ts := range []tileset.Tileset{tileset.New(2, 11), tileset.New(0, 1, 5)} {
		aux, err := NewAux(ts)
		require.NoError(t, err)

		rng := rand.New(rand.NewPCG(7, 9))
		for i := 0; i < 100; i++ {
			idx := aux.IndexAt(rng.Uint64N(aux.TotalEntries()))

			for succ := range aux.Successors(idx) {
				back := false
				for s := range aux.Successors(succ) {
					if s == idx {
						back = true
						break
					}
				}
				assert.True(t, back, "no reverse move from %v to %v", succ, idx)
			}
		}
	}
}

func TestSuccessorsDistinctFromSelf(t *testing.T) {
	aux, err := NewAux(tileset.New(1, 2))
	require.NoError(t, err)

	for off := uint64(0); off < aux.TotalEntries(); off += 7 {
		idx := aux.IndexAt(off)
		for succ := range aux.Successors(idx) {
			assert.NotEqual(t, idx, succ)
		}
	}
}

func TestPermRankUnrank(t *testing.T) {
	const k = 5
	seen := make(map[[k]uint8]bool)
	for p := uint32(0); p < 120; p++ {
		var sigma [k]uint8
		permUnrank(p, sigma[:])
		assert.Equal(t, p, permRank(sigma[:]))
		assert.False(t, seen[sigma])
		seen[sigma] = true
	}
}

func TestCombinationOrder(t *testing.T) {
	// The enumeration order of NewAux must agree with combRank.
	aux, err := NewAux(tileset.New(1, 2, 3))
	require.NoError(t, err)

	for r := uint32(0); uint64(r) < aux.NumRanks(); r++ {
		assert.Equal(t, r, combRank(aux.ranks[r].cells[:aux.k]))
	}
}
