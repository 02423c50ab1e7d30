package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolved(t *testing.T) {
	p := Solved()

	for i := 0; i < TileCount; i++ {
		assert.Equal(t, uint8(i), p.Tiles[i])
		assert.Equal(t, uint8(i), p.Grid[i])
	}
	assert.Equal(t, 0, p.ZeroLocation())
}

func TestMoves(t *testing.T) {
	// Corners have two neighbors, edges three, interior cells four.
	assert.Len(t, Moves(0), 2)
	assert.Len(t, Moves(4), 2)
	assert.Len(t, Moves(20), 2)
	assert.Len(t, Moves(24), 2)
	assert.Len(t, Moves(2), 3)
	assert.Len(t, Moves(12), 4)

	for c := 0; c < TileCount; c++ {
		for _, d := range Moves(c) {
			assert.True(t, Adjacent(c, d))
			assert.True(t, Adjacent(d, c))
		}
	}
}

func TestMoveIndex(t *testing.T) {
	for c := 0; c < TileCount; c++ {
		for i, d := range Moves(c) {
			assert.Equal(t, i, MoveIndex(c, d))
		}
	}
	assert.Equal(t, -1, MoveIndex(0, 24))
	assert.Equal(t, -1, MoveIndex(4, 5)) // row wrap is not adjacency
}

func TestMove(t *testing.T) {
	p := Solved()

	p.Move(1)
	assert.Equal(t, 1, p.ZeroLocation())
	assert.Equal(t, uint8(0), p.Tiles[1])
	assert.Equal(t, uint8(1), p.Grid[0])

	// Moving back restores the solved configuration.
	p.Move(0)
	assert.Equal(t, Solved(), p)
}

func TestMoveKeepsArraysInSync(t *testing.T) {
	p := Solved()
	for _, dest := range []int{5, 6, 1, 0, 5, 10, 11} {
		p.Move(dest)
		for c := 0; c < TileCount; c++ {
			assert.Equal(t, uint8(c), p.Tiles[p.Grid[c]])
		}
	}
}
