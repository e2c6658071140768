package state

import (
	"bufio"
	"github.com/pkg/errors"
	"strings"
)

// Snapshot is a copy of the occupancy of the board: each cell of the BoardLength x BoardLength grid
// containing the star is either CellOffBoard, CellEmpty or the player occupying it.
//
// It is indexed by [Q+BoardRadius][R+BoardRadius], but one should use At instead.
// Being an array, it is a value: changing a copy doesn't affect the board it came from.
type Snapshot [BoardLength][BoardLength]Cell

// At returns the cell at the given position. Positions outside the grid return CellOffBoard.
func (s Snapshot) At(pos Pos) Cell {
	q, r := int(pos[0])+BoardRadius, int(pos[1])+BoardRadius
	if q < 0 || q >= BoardLength || r < 0 || r >= BoardLength {
		return CellOffBoard
	}
	return s[q][r]
}

// set the cell at pos, which must be on the board.
func (s *Snapshot) set(pos Pos, cell Cell) {
	s[int(pos[0])+BoardRadius][int(pos[1])+BoardRadius] = cell
}

// clear sets all cells of the star to empty, and all others to off-board.
func (s *Snapshot) clear() {
	for q := range BoardLength {
		for r := range BoardLength {
			s[q][r] = CellOffBoard
		}
	}
	for _, pos := range allCells {
		s.set(pos, CellEmpty)
	}
}

// Occupied returns the number of occupied cells.
func (s Snapshot) Occupied() (count int) {
	for _, pos := range allCells {
		if s.At(pos) >= 0 {
			count++
		}
	}
	return
}

// Count returns the number of pieces of the player.
func (s Snapshot) Count(player PlayerNum) (count int) {
	for _, pos := range allCells {
		if s.At(pos) == PlayerCell(player) {
			count++
		}
	}
	return
}

// PlayerPositions returns the positions occupied by the player, in canonical order.
func (s Snapshot) PlayerPositions(player PlayerNum) []Pos {
	positions := make([]Pos, 0, PiecesPerPlayer)
	for _, pos := range allCells {
		if s.At(pos) == PlayerCell(player) {
			positions = append(positions, pos)
		}
	}
	return positions
}

const (
	snapshotEmpty = '.'
	snapshotBlank = ' '
)

// String returns the text representation of the snapshot: one line per row (R coordinate),
// each cell shifted by half a cell per row, so the star shape is visible.
// Empty cells are represented by '.', and pieces by the player number (starting at '1').
//
// ParseSnapshot converts it back.
func (s Snapshot) String() string {
	var sb strings.Builder
	width := 4*BoardRadius + 1
	for row := range BoardLength {
		line := []byte(strings.Repeat(string(snapshotBlank), width))
		for _, pos := range allCells {
			col, posRow := pos.ToDisplayPos()
			if posRow != row {
				continue
			}
			cell := s.At(pos)
			if cell.IsEmpty() {
				line[col] = snapshotEmpty
			} else {
				line[col] = byte('1' + cell)
			}
		}
		sb.WriteString(strings.TrimRight(string(line), string(snapshotBlank)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseSnapshot parses the text representation generated by Snapshot.String.
// Every cell of the star must be present, either as empty ('.') or with a player number.
func ParseSnapshot(text string) (s Snapshot, err error) {
	s.clear()
	seen := make([]bool, NumCells)
	scanner := bufio.NewScanner(strings.NewReader(text))
	row := 0
	for scanner.Scan() {
		line := scanner.Text()
		if row >= BoardLength {
			if strings.TrimSpace(line) != "" {
				return s, errors.Errorf("snapshot has more than %d rows", BoardLength)
			}
			continue
		}
		for col, ch := range []byte(line) {
			if ch == snapshotBlank {
				continue
			}
			pos, ok := FromDisplayPos(col, row)
			if !ok || !pos.Valid() {
				return s, errors.Wrapf(ErrOutOfBounds, "snapshot row %d, column %d (%q)", row, col, ch)
			}
			switch {
			case ch == snapshotEmpty:
				s.set(pos, CellEmpty)
			case ch >= '1' && int(ch-'1') < MaxPlayers:
				s.set(pos, PlayerCell(PlayerNum(ch-'1')))
			default:
				return s, errors.Errorf("snapshot row %d, column %d: invalid cell %q", row, col, ch)
			}
			seen[CellIndex(pos)] = true
		}
		row++
	}
	if err = scanner.Err(); err != nil {
		return s, errors.Wrap(err, "failed to read snapshot")
	}
	for idx, found := range seen {
		if !found {
			return s, errors.Errorf("snapshot is missing cell %s", allCells[idx])
		}
	}
	return s, nil
}

// NumPlanes is the number of channels returned by Board.Planes.
const NumPlanes = 3

// Planes returns the board as a tensor-like mask, seen from the perspective of one player:
//
//   - Channel 0: pieces of the perspective player.
//   - Channel 1: pieces of all the other players.
//   - Channel 2: board mask, 1 for the cells of the star, 0 otherwise.
//
// The perspective player is the NextPlayer, which for finished matches is the winner.
// The grid is indexed by [channel][Q+BoardRadius][R+BoardRadius].
func (b *Board) Planes() (planes [NumPlanes][BoardLength][BoardLength]float32) {
	perspective := PlayerCell(b.NextPlayer)
	for _, pos := range allCells {
		q, r := int(pos[0])+BoardRadius, int(pos[1])+BoardRadius
		planes[2][q][r] = 1
		cell := b.grid.At(pos)
		switch {
		case cell == perspective:
			planes[0][q][r] = 1
		case cell >= 0:
			planes[1][q][r] = 1
		}
	}
	return
}
