// Package state holds information about a Sternhalma (Chinese Checkers) game state:
// the star shaped board, the players' pieces, the valid moves and the end of the game.
//
// A Board is treated as immutable once built: taking a move (Board.Act) creates a new Board.
// That makes it cheap and safe to explore many lines of the game, including concurrently.
package state

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"math"
)

const (
	// MaxPlayers in a match: one per corner of the star.
	MaxPlayers = int(NumCorners)

	// PiecesPerPlayer is the number of pieces each player starts with, filling their home corner.
	PiecesPerPlayer = CornerSize
)

// PlayerNum is the index of a player in the turn order: 0 is the first player to move.
type PlayerNum uint8

const (
	PlayerFirst PlayerNum = iota
	PlayerSecond
	PlayerThird
	PlayerFourth
	PlayerFifth
	PlayerSixth

	// PlayerInvalid represents an invalid PlayerNum, also used as "no player" (e.g.: no winner yet).
	PlayerInvalid
)

var playerNames = [...]string{"First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Invalid"}

// String returns the ordinal name of the player.
func (p PlayerNum) String() string {
	if p > PlayerInvalid {
		return fmt.Sprintf("PlayerNum(%d)", p)
	}
	return playerNames[p]
}

// Variant of the game is given by the number of players: 2, 3, 4 or 6.
type Variant uint8

const (
	TwoPlayers   Variant = 2
	ThreePlayers Variant = 3
	FourPlayers  Variant = 4
	SixPlayers   Variant = 6

	// DefaultVariant is the standard 2 players game.
	DefaultVariant = TwoPlayers
)

// seating of each variant, in turn order (clockwise on the display). Each player's
// target is the opposite corner.
var seating = map[Variant][]Corner{
	TwoPlayers:   {South, North},
	ThreePlayers: {South, NorthWest, NorthEast},
	FourPlayers:  {South, SouthWest, North, NorthEast},
	SixPlayers:   {South, SouthWest, NorthWest, North, NorthEast, SouthEast},
}

// ParseVariant returns the Variant for the given number of players, or an error wrapping
// ErrInvalidVariant if not supported.
func ParseVariant(numPlayers int) (Variant, error) {
	v := Variant(numPlayers)
	if numPlayers < 0 || numPlayers > MaxPlayers || !v.Valid() {
		return 0, errors.Wrapf(ErrInvalidVariant, "%d players not supported, only 2, 3, 4 or 6", numPlayers)
	}
	return v, nil
}

// Valid returns whether the variant is supported.
func (v Variant) Valid() bool {
	_, found := seating[v]
	return found
}

// NumPlayers in the variant.
func (v Variant) NumPlayers() int {
	return int(v)
}

// Homes returns the home corners of each player, in turn order.
// The returned slice must not be modified.
func (v Variant) Homes() []Corner {
	return seating[v]
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return fmt.Sprintf("%d-players", v)
}

// Cell is the content of a board position: off-board, empty or the player owning the piece.
type Cell int8

const (
	CellOffBoard Cell = -2
	CellEmpty    Cell = -1
)

// PlayerCell returns the Cell occupied by player.
func PlayerCell(player PlayerNum) Cell {
	return Cell(player)
}

// OnBoard returns whether the cell is part of the star.
func (c Cell) OnBoard() bool {
	return c != CellOffBoard
}

// IsEmpty returns whether the cell is on the board and not occupied.
func (c Cell) IsEmpty() bool {
	return c == CellEmpty
}

// Player returns the player occupying the cell, or PlayerInvalid if empty or off-board.
func (c Cell) Player() PlayerNum {
	if c < 0 {
		return PlayerInvalid
	}
	return PlayerNum(c)
}

// Board is a compact representation of the game state. It's compact to allow fast/cheap
// search on the space, by creating clones of it.
// Use it through methods that decode the packaged data.
type Board struct {
	variant Variant
	grid    Snapshot

	// pieces holds the position of each piece of each player. A piece keeps its index
	// for the whole match.
	pieces [MaxPlayers][PiecesPerPlayer]Pos

	// MoveNumber is the number of moves taken so far (passes are not counted), starting at 0.
	MoveNumber int

	// NextPlayer to move. Once the match is finished it stays frozen on the winner.
	NextPlayer PlayerNum

	// ConsecutivePasses counts how many passes were played in a row, without any move.
	ConsecutivePasses int

	winner PlayerNum

	// Derived information is regenerated after each move.
	Derived *Derived
}

// NewBoard creates a new board for the variant, with the pieces of every player in their home corner.
//
// It panics if variant is not valid; use ParseVariant to validate user given values.
func NewBoard(variant Variant) *Board {
	if !variant.Valid() {
		exceptions.Panicf("invalid variant %d for NewBoard(), only 2, 3, 4 or 6 players are supported", variant)
	}
	b := &Board{
		variant:    variant,
		NextPlayer: PlayerFirst,
		winner:     PlayerInvalid,
	}
	b.grid.clear()
	for player, home := range variant.Homes() {
		for idx, pos := range home.Cells() {
			b.place(pos, PlayerNum(player), idx)
		}
	}
	b.BuildDerived()
	return b
}

// NewEmptyBoard creates a board for the variant without any pieces on it.
// Pieces must be added with SetPiece before the board is used, and then BuildDerived called.
// It is used to create contrived positions, e.g. in tests.
func NewEmptyBoard(variant Variant) *Board {
	if !variant.Valid() {
		exceptions.Panicf("invalid variant %d for NewEmptyBoard(), only 2, 3, 4 or 6 players are supported", variant)
	}
	b := &Board{
		variant:    variant,
		NextPlayer: PlayerFirst,
		winner:     PlayerInvalid,
	}
	b.grid.clear()
	for player := range b.pieces {
		for idx := range b.pieces[player] {
			b.pieces[player][idx] = NoPos
		}
	}
	return b
}

// NoPos is the position of pieces not yet set in a board created with NewEmptyBoard.
var NoPos = Pos{math.MinInt8, math.MinInt8}

// SetPiece places the piece pieceIdx of player at pos, removing it from wherever it was before.
// It doesn't update Derived: call BuildDerived after the board is set up.
//
// It returns an error if pos is not on the board or if it is occupied by another piece.
func (b *Board) SetPiece(player PlayerNum, pieceIdx int, pos Pos) error {
	if !pos.Valid() {
		return errors.Wrapf(ErrOutOfBounds, "can't set piece at %s", pos)
	}
	if !b.grid.At(pos).IsEmpty() {
		return errors.Errorf("can't set piece of player %s at %s: position already occupied", player, pos)
	}
	if player >= PlayerNum(b.NumPlayers()) || pieceIdx < 0 || pieceIdx >= PiecesPerPlayer {
		return errors.Errorf("invalid piece #%d of player %s for a %s match", pieceIdx, player, b.variant)
	}
	if old := b.pieces[player][pieceIdx]; old != NoPos {
		b.remove(old)
	}
	b.place(pos, player, pieceIdx)
	return nil
}

// Clone makes a copy of the board, without the Derived information.
func (b *Board) Clone() *Board {
	newB := &Board{}
	*newB = *b
	newB.Derived = nil
	return newB
}

// Variant of the match.
func (b *Board) Variant() Variant {
	return b.variant
}

// NumPlayers in the match.
func (b *Board) NumPlayers() int {
	return b.variant.NumPlayers()
}

// Home returns the corner where the player starts.
func (b *Board) Home(player PlayerNum) Corner {
	return b.variant.Homes()[player]
}

// Target returns the corner the player must fill to win.
func (b *Board) Target(player PlayerNum) Corner {
	return b.Home(player).Opposite()
}

// PlayerAfter returns the player that moves after the given one.
func (b *Board) PlayerAfter(player PlayerNum) PlayerNum {
	return PlayerNum((int(player) + 1) % b.NumPlayers())
}

// IsValid returns whether pos is a cell of the board.
func (b *Board) IsValid(pos Pos) bool {
	return pos.Valid()
}

// At returns the contents of the cell at pos. Positions outside the board return CellOffBoard.
func (b *Board) At(pos Pos) Cell {
	return b.grid.At(pos)
}

// HasPiece returns whether there is a piece on the given position.
func (b *Board) HasPiece(pos Pos) bool {
	return b.grid.At(pos) >= 0
}

// Occupant returns the player owning the piece at pos, or PlayerInvalid if it is empty.
// It returns an error wrapping ErrOutOfBounds if pos is not on the board.
func (b *Board) Occupant(pos Pos) (PlayerNum, error) {
	if !pos.Valid() {
		return PlayerInvalid, errors.Wrapf(ErrOutOfBounds, "position %s", pos)
	}
	return b.grid.At(pos).Player(), nil
}

// Neighbours returns the (up to 6) neighbouring positions that are on the board.
func (b *Board) Neighbours(pos Pos) (positions []Pos) {
	positions = make([]Pos, 0, NumNeighbors)
	for neighbour := range pos.NeighboursIter() {
		positions = append(positions, neighbour)
	}
	return
}

// EmptyNeighbours returns the neighbouring positions on the board that are not occupied.
func (b *Board) EmptyNeighbours(pos Pos) (positions []Pos) {
	positions = make([]Pos, 0, NumNeighbors)
	for neighbour := range pos.NeighboursIter() {
		if !b.HasPiece(neighbour) {
			positions = append(positions, neighbour)
		}
	}
	return
}

// Pieces returns the positions of the pieces of the player, indexed by piece.
func (b *Board) Pieces(player PlayerNum) [PiecesPerPlayer]Pos {
	return b.pieces[player]
}

// NumPiecesOnBoard is the number of occupied cells.
func (b *Board) NumPiecesOnBoard() int {
	return b.grid.Occupied()
}

// Winner returns the player that won the match, or PlayerInvalid if the match is not finished.
func (b *Board) Winner() PlayerNum {
	return b.winner
}

// IsFinished returns whether some player already won the match.
func (b *Board) IsFinished() bool {
	return b.winner != PlayerInvalid
}

// place puts the piece pieceIdx of player at pos, which must be empty.
func (b *Board) place(pos Pos, player PlayerNum, pieceIdx int) {
	if !b.grid.At(pos).IsEmpty() {
		exceptions.Panicf("placing piece of player %s at %s, but cell is %d", player, pos, b.grid.At(pos))
	}
	b.grid.set(pos, PlayerCell(player))
	b.pieces[player][pieceIdx] = pos
}

// remove the piece at pos, which must be occupied.
func (b *Board) remove(pos Pos) {
	if !b.HasPiece(pos) {
		exceptions.Panicf("removing piece at %s, but there is no piece there", pos)
	}
	b.grid.set(pos, CellEmpty)
}

// movePiece moves the piece pieceIdx of player to the position to.
func (b *Board) movePiece(player PlayerNum, pieceIdx int, to Pos) {
	from := b.pieces[player][pieceIdx]
	if b.grid.At(from) != PlayerCell(player) {
		exceptions.Panicf("moving piece #%d of player %s from %s, but the cell there is %d",
			pieceIdx, player, from, b.grid.At(from))
	}
	b.remove(from)
	b.place(to, player, pieceIdx)
}

// Act takes the given move for the b.NextPlayer and returns a new board, with Derived built.
// The original board is not changed.
//
// It DOES NOT CHECK that the move is valid (it can be useful for testing), and leaves that to
// the caller -- see Board.IsValidMove and the engine package.
//
// If the move is a PassMove, it is the same as calling ActPass.
func (b *Board) Act(move Move) (newB *Board) {
	if move.IsPass() {
		return b.ActPass()
	}
	newB = b.Clone()
	player := newB.NextPlayer
	newB.movePiece(player, int(move.Piece), move.Dest())
	newB.MoveNumber++
	newB.ConsecutivePasses = 0
	if newB.hasFilledTarget(player) {
		newB.winner = player
	} else {
		newB.NextPlayer = newB.PlayerAfter(player)
	}
	newB.BuildDerived()
	return
}

// ActPass returns a new board where b.NextPlayer passed its turn. The move number
// is not incremented.
//
// Like Act, it doesn't check that passing is valid: only players without moves should pass.
func (b *Board) ActPass() (newB *Board) {
	newB = b.Clone()
	newB.ConsecutivePasses++
	newB.NextPlayer = newB.PlayerAfter(newB.NextPlayer)
	newB.BuildDerived()
	return
}

// hasFilledTarget returns whether all the pieces of the player are in the target corner.
// Since a corner has as many cells as pieces per player, this means the corner is completely filled.
func (b *Board) hasFilledTarget(player PlayerNum) bool {
	target := b.Target(player)
	for _, pos := range b.pieces[player] {
		if !target.Contains(pos) {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the occupancy of the board.
func (b *Board) Snapshot() Snapshot {
	return b.grid
}
