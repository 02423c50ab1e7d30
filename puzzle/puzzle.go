// Package puzzle implements the 5x5 sliding-tile puzzle board: tile and
// grid occupancy arrays, the per-cell move tables and move application.
//
// Cells are numbered 0..24 in row-major order. Tile 0 is the blank. A move
// slides a tile into the blank's cell; we describe it by the cell the blank
// moves to.
package puzzle

// Board geometry.
const (
	GridSize  = 5
	TileCount = GridSize * GridSize
)

// Puzzle is one board configuration. Both arrays are kept in sync:
// Tiles[t] is the cell occupied by tile t, Grid[c] the tile occupying
// cell c. Tile 0 is the blank.
type Puzzle struct {
	Tiles [TileCount]uint8
	Grid  [TileCount]uint8
}

// moves[c] lists the cells adjacent to cell c, i.e. the cells the blank can
// move to when it is at c.
var moves [TileCount][]int

func init() {
	for c := 0; c < TileCount; c++ {
		row, col := c/GridSize, c%GridSize
		if row > 0 {
			moves[c] = append(moves[c], c-GridSize)
		}
		if col > 0 {
			moves[c] = append(moves[c], c-1)
		}
		if col < GridSize-1 {
			moves[c] = append(moves[c], c+1)
		}
		if row < GridSize-1 {
			moves[c] = append(moves[c], c+GridSize)
		}
	}
}

// Solved returns the goal configuration: tile i at cell i, blank at cell 0.
func Solved() Puzzle {
	var p Puzzle
	for i := 0; i < TileCount; i++ {
		p.Tiles[i] = uint8(i)
		p.Grid[i] = uint8(i)
	}
	return p
}

// Moves returns the destination cells reachable by the blank from cell c.
// The returned slice is shared and must not be modified.
func Moves(c int) []int { return moves[c] }

// MoveIndex returns the position of dest within Moves(from), or -1 if the
// cells are not adjacent. Frontier expansion uses it to address move-mask
// bits.
func MoveIndex(from, dest int) int {
	for i, d := range moves[from] {
		if d == dest {
			return i
		}
	}
	return -1
}

// Adjacent reports whether cells a and b share an edge.
func Adjacent(a, b int) bool { return MoveIndex(a, b) >= 0 }

// ZeroLocation returns the blank's cell.
func (p *Puzzle) ZeroLocation() int { return int(p.Tiles[0]) }

// Move slides the tile at cell dest into the blank's cell. dest must be
// adjacent to the blank; this is not rechecked.
func (p *Puzzle) Move(dest int) {
	zloc := p.ZeroLocation()
	t := p.Grid[dest]
	p.Grid[zloc] = t
	p.Grid[dest] = 0
	p.Tiles[t] = uint8(zloc)
	p.Tiles[0] = uint8(dest)
}
