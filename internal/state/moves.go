package state

import (
	"fmt"
	"github.com/pkg/errors"
	"slices"
	"strings"
)

// Move describes a piece of the player moving: either a step to a neighbouring empty cell
// or a chain of one or more jumps over neighbouring pieces.
type Move struct {
	// Piece is the index of the piece of the player moving.
	Piece uint8

	// From is the position of the piece before the move.
	From Pos

	// Path holds the landing cells: only one for steps, one per jump otherwise.
	// The last one is the destination of the move.
	Path []Pos

	// Jump is true if the move is a chain of jumps.
	Jump bool
}

// PassMove is played by a player that has no valid moves.
var PassMove = Move{}

// IsPass returns whether the move is a pass: a move without destination.
func (m Move) IsPass() bool {
	return len(m.Path) == 0
}

// Dest returns the final position of the piece.
func (m Move) Dest() Pos {
	if len(m.Path) == 0 {
		return m.From
	}
	return m.Path[len(m.Path)-1]
}

// NumHops returns the number of jumps in the move, 0 for a step.
func (m Move) NumHops() int {
	if !m.Jump {
		return 0
	}
	return len(m.Path)
}

// Equal compares whether two moves are the same: same piece, origin and full path.
func (m Move) Equal(m2 Move) bool {
	return m.Piece == m2.Piece && m.From == m2.From && m.Jump == m2.Jump && slices.Equal(m.Path, m2.Path)
}

// Clone returns a deep copy of the move.
func (m Move) Clone() Move {
	m.Path = slices.Clone(m.Path)
	return m
}

// String implements fmt.Stringer.
func (m Move) String() string {
	if m.IsPass() {
		return "Pass (no moves)"
	}
	if !m.Jump {
		return fmt.Sprintf("Step #%d: %s->%s", m.Piece, m.From, m.Dest())
	}
	return fmt.Sprintf("Jump #%d: %s->%s", m.Piece, m.From, strings.Join(PosStrings(m.Path), "->"))
}

// ValidMoves returns the list of valid moves of the given player. The list is deterministic
// for a given board: it is ordered by piece index, then steps (in the order of Directions) and then
// jumps in breadth-first order.
//
// For the NextPlayer the list of moves is pre-cached in Derived.
// If the match is finished, there are no valid moves.
func (b *Board) ValidMoves(player PlayerNum) []Move {
	if b.IsFinished() {
		return nil
	}
	moves := make([]Move, 0, 4*PiecesPerPlayer)
	for pieceIdx, from := range b.pieces[player] {
		if !from.Valid() {
			// Piece not set, only happens with boards under construction.
			continue
		}
		moves = b.appendSteps(moves, uint8(pieceIdx), from)
		moves = b.appendJumps(moves, uint8(pieceIdx), from)
	}
	return moves
}

// appendSteps appends the moves of the piece to each empty neighbour.
func (b *Board) appendSteps(moves []Move, pieceIdx uint8, from Pos) []Move {
	for _, to := range b.EmptyNeighbours(from) {
		moves = append(moves, Move{Piece: pieceIdx, From: from, Path: []Pos{to}})
	}
	return moves
}

// jumpNode is a landing cell reached during the search of jump chains, with the index
// of the node it jumped from.
type jumpNode struct {
	pos    Pos
	parent int
}

// appendJumps does a breadth-first search over chains of jumps starting at from.
// Each landing cell reached is listed once, with the shortest chain reaching it. Longer chains
// to the same cell are also valid, see Board.FindMove.
// The origin counts as already visited, so a piece never lands back where it started.
func (b *Board) appendJumps(moves []Move, pieceIdx uint8, from Pos) []Move {
	var visited [BoardLength][BoardLength]bool
	markVisited := func(pos Pos) {
		visited[int(pos[0])+BoardRadius][int(pos[1])+BoardRadius] = true
	}
	isVisited := func(pos Pos) bool {
		return visited[int(pos[0])+BoardRadius][int(pos[1])+BoardRadius]
	}

	markVisited(from)
	nodes := []jumpNode{{pos: from, parent: -1}}
	for head := 0; head < len(nodes); head++ {
		current := nodes[head].pos
		for _, dir := range Directions {
			over := current.Add(dir)
			// The moving piece has left its origin, so it can't be jumped over.
			if over == from || !b.HasPiece(over) {
				continue
			}
			landing := over.Add(dir)
			if !landing.Valid() || b.HasPiece(landing) || isVisited(landing) {
				continue
			}
			markVisited(landing)
			nodes = append(nodes, jumpNode{pos: landing, parent: head})
			moves = append(moves, Move{
				Piece: pieceIdx,
				From:  from,
				Path:  jumpPath(nodes, len(nodes)-1),
				Jump:  true,
			})
		}
	}
	return moves
}

// jumpPath reconstructs the landing cells from the root of the search up to nodes[idx].
func jumpPath(nodes []jumpNode, idx int) []Pos {
	var path []Pos
	for ; nodes[idx].parent >= 0; idx = nodes[idx].parent {
		path = append(path, nodes[idx].pos)
	}
	slices.Reverse(path)
	return path
}

// CheckMovePath verifies that the move is physically possible on the board, hop by hop:
// the piece exists at From, steps go to empty neighbours and each jump goes over exactly one piece
// to an empty cell. A chain of jumps never lands twice on the same cell, nor back on From.
// It doesn't check that the piece belongs to NextPlayer.
//
// It is used to give better error messages, validity is decided by IsValidMove.
func (b *Board) CheckMovePath(move Move) error {
	if !move.From.Valid() {
		return errors.Wrapf(ErrOutOfBounds, "origin %s", move.From)
	}
	for hop, to := range move.Path {
		if !to.Valid() {
			return errors.Wrapf(ErrOutOfBounds, "landing cell #%d %s", hop, to)
		}
	}
	if !b.HasPiece(move.From) {
		return errors.Wrapf(ErrIllegalMove, "no piece at origin %s", move.From)
	}
	if len(move.Path) == 0 {
		return errors.Wrap(ErrIllegalMove, "move has no destination")
	}
	current := move.From
	for hop, to := range move.Path {
		if b.HasPiece(to) {
			return errors.Wrapf(ErrIllegalMove, "landing cell #%d %s is occupied", hop, to)
		}
		distance := current.Distance(to)
		if !move.Jump {
			if distance != 1 || len(move.Path) != 1 {
				return errors.Wrapf(ErrIllegalMove, "step from %s to %s is not to a neighbour", current, to)
			}
			continue
		}
		if to == move.From || slices.Contains(move.Path[:hop], to) {
			return errors.Wrapf(ErrIllegalMove, "jump #%d lands again on %s", hop, to)
		}
		over := Pos{(current[0] + to[0]) / 2, (current[1] + to[1]) / 2}
		if distance != 2 || over.Add(over) != current.Add(to) {
			return errors.Wrapf(ErrIllegalMove, "jump from %s to %s is not along a line", current, to)
		}
		if over == move.From || !b.HasPiece(over) {
			return errors.Wrapf(ErrIllegalMove, "jump from %s to %s has no piece to jump over", current, to)
		}
		current = to
	}
	return nil
}
