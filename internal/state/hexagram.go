package state

// This file holds the geometry of the star shaped (hexagram) board: positions, directions,
// and the six corner triangles.

import (
	"fmt"
	"github.com/janpfeifer/sternhalmaGo/internal/generics"
	"iter"
	"slices"
)

const (
	// BoardLength is the side of the square grid that contains the star: positions
	// range from -BoardRadius to +BoardRadius on both axial coordinates.
	BoardLength = 2*BoardRadius + 1

	// BoardRadius is the distance from the center to the tip of a corner.
	BoardRadius = 8

	// HexRadius is the radius of the central hexagon. Corners start at HexRadius+1.
	HexRadius = 4

	// NumCells on the board: 61 in the central hexagon plus 10 in each of the 6 corners.
	NumCells = 121

	// NumNeighbors of each position: the board is a triangular lattice.
	NumNeighbors = 6

	// CornerSize is the number of cells in each corner triangle.
	CornerSize = 10
)

// Pos is a position in axial coordinates: Q (the "column" axis) and R (the row).
// The implicit third cube coordinate is S = -Q-R.
type Pos [2]int8

// Q coordinate of the position.
func (pos Pos) Q() int8 {
	return pos[0]
}

// R coordinate of the position, it is also the row when displaying the board.
func (pos Pos) R() int8 {
	return pos[1]
}

// S is the third cube coordinate, derived from Q and R.
func (pos Pos) S() int8 {
	return -pos[0] - pos[1]
}

// Add returns the position shifted by delta.
func (pos Pos) Add(delta Pos) Pos {
	return Pos{pos[0] + delta[0], pos[1] + delta[1]}
}

// AbsInt8 returns the absolute value of an int8.
func AbsInt8(x int8) int8 {
	y := x >> 7
	return (x ^ y) - y
}

// Distance returns the number of single steps between two positions on the lattice,
// ignoring whether the cells in between are on the board.
func (pos Pos) Distance(pos2 Pos) int {
	dq := AbsInt8(pos[0] - pos2[0])
	dr := AbsInt8(pos[1] - pos2[1])
	ds := AbsInt8(pos.S() - pos2.S())
	return (int(dq) + int(dr) + int(ds)) / 2
}

// Valid returns whether the position is one of the 121 cells of the star.
//
// The star is the union of two large triangles: one where all cube coordinates are >= -HexRadius,
// and one where all of them are <= HexRadius.
func (pos Pos) Valid() bool {
	q, r := int(pos[0]), int(pos[1])
	s := -q - r
	if q < -BoardRadius || q > BoardRadius || r < -BoardRadius || r > BoardRadius {
		return false
	}
	if q >= -HexRadius && r >= -HexRadius && s >= -HexRadius {
		return true
	}
	return q <= HexRadius && r <= HexRadius && s <= HexRadius
}

// String returns a text representation of Pos.
func (pos Pos) String() string {
	return fmt.Sprintf("(%d, %d)", pos[0], pos[1])
}

// PosStrings converts the positions to their string representation.
func PosStrings(poss []Pos) []string {
	return generics.SliceMap(poss, Pos.String)
}

// Directions to the 6 neighbours, listed in a clockwise manner (as seen on the display)
// starting at the upper-right neighbour.
//
// Directions[i] and Directions[(i+3)%6] are opposite to each other.
var Directions = [NumNeighbors]Pos{{1, -1}, {1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {0, -1}}

// Neighbours returns the 6 neighbour positions of the reference position, whether they are on the board or not.
// It returns a newly allocated slice.
//
// The list follows the order of Directions, so if one takes Neighbours()[2] multiple
// times, one would move in straight line on the board.
func (pos Pos) Neighbours() []Pos {
	neighbours := make([]Pos, NumNeighbors)
	for ii, dir := range Directions {
		neighbours[ii] = pos.Add(dir)
	}
	return neighbours
}

// NeighboursIter iterates over the neighbours of the position that are on the board,
// in the order of Directions.
func (pos Pos) NeighboursIter() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for _, dir := range Directions {
			neighbour := pos.Add(dir)
			if !neighbour.Valid() {
				continue
			}
			if !yield(neighbour) {
				return
			}
		}
	}
}

// ToDisplayPos converts a position to the (column, row) of a text display, where each row is shifted
// by half a cell: columns go from 0 to 4*BoardRadius, and rows from 0 to 2*BoardRadius.
func (pos Pos) ToDisplayPos() (col, row int) {
	return 2*int(pos[0]) + int(pos[1]) + 2*BoardRadius, int(pos[1]) + BoardRadius
}

// FromDisplayPos converts a display (column, row) back to a position.
// It returns false if the display coordinates don't map to a lattice position.
func FromDisplayPos(col, row int) (pos Pos, ok bool) {
	r := row - BoardRadius
	twoQ := col - 2*BoardRadius - r
	if twoQ%2 != 0 {
		return
	}
	q := twoQ / 2
	if q < -BoardRadius || q > BoardRadius || r < -BoardRadius || r > BoardRadius {
		return
	}
	return Pos{int8(q), int8(r)}, true
}

// Corner identifies one of the six triangular points of the star. They are used as
// players' home and target triangles.
type Corner uint8

// Corners are listed clockwise, as seen on the display.
const (
	North Corner = iota
	NorthEast
	SouthEast
	South
	SouthWest
	NorthWest
	NumCorners
)

var cornerNames = [NumCorners]string{"North", "NorthEast", "SouthEast", "South", "SouthWest", "NorthWest"}

// String returns the name of the corner.
func (c Corner) String() string {
	if c >= NumCorners {
		return fmt.Sprintf("Corner(%d)", c)
	}
	return cornerNames[c]
}

// Opposite returns the corner across the center of the board.
func (c Corner) Opposite() Corner {
	return (c + NumCorners/2) % NumCorners
}

// Contains returns whether the position belongs to the corner triangle.
func (c Corner) Contains(pos Pos) bool {
	if !pos.Valid() {
		return false
	}
	q, r, s := pos.Q(), pos.R(), pos.S()
	switch c {
	case North:
		return r < -HexRadius
	case NorthEast:
		return q > HexRadius
	case SouthEast:
		return s < -HexRadius
	case South:
		return r > HexRadius
	case SouthWest:
		return q < -HexRadius
	case NorthWest:
		return s > HexRadius
	}
	return false
}

// Tip returns the position at the far end of the corner, the cell furthest from the center.
func (c Corner) Tip() Pos {
	return cornerTips[c]
}

// Cells returns the 10 cells of the corner, in canonical order. The returned slice
// must not be modified.
func (c Corner) Cells() []Pos {
	return cornerCells[c]
}

var cornerTips = [NumCorners]Pos{
	North:     {HexRadius, -BoardRadius},
	NorthEast: {BoardRadius, -HexRadius},
	SouthEast: {HexRadius, HexRadius},
	South:     {-HexRadius, BoardRadius},
	SouthWest: {-BoardRadius, HexRadius},
	NorthWest: {-HexRadius, -HexRadius},
}

var (
	// allCells lists the valid positions in canonical order.
	allCells []Pos

	// cellIndex maps grid coordinates to the index in allCells, or -1 if off-board.
	cellIndex [BoardLength][BoardLength]int8

	cornerCells [NumCorners][]Pos
)

func init() {
	allCells = make([]Pos, 0, NumCells)
	for r := -BoardRadius; r <= BoardRadius; r++ {
		for q := -BoardRadius; q <= BoardRadius; q++ {
			pos := Pos{int8(q), int8(r)}
			cellIndex[q+BoardRadius][r+BoardRadius] = -1
			if !pos.Valid() {
				continue
			}
			cellIndex[q+BoardRadius][r+BoardRadius] = int8(len(allCells))
			allCells = append(allCells, pos)
			for c := range NumCorners {
				if c.Contains(pos) {
					cornerCells[c] = append(cornerCells[c], pos)
				}
			}
		}
	}
}

// Cells returns all the valid positions of the board, in canonical order (by row then Q).
// It returns a newly allocated slice.
func Cells() []Pos {
	return slices.Clone(allCells)
}

// CellIndex returns the index of the position in the canonical order of Cells, or -1
// if the position is not on the board.
func CellIndex(pos Pos) int {
	if !pos.Valid() {
		return -1
	}
	return int(cellIndex[int(pos[0])+BoardRadius][int(pos[1])+BoardRadius])
}

// CornerOf returns the corner that contains pos, and false if pos is in the central hexagon or off-board.
func CornerOf(pos Pos) (Corner, bool) {
	for c := range NumCorners {
		if c.Contains(pos) {
			return c, true
		}
	}
	return NumCorners, false
}
