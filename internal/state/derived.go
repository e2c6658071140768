package state

// This file holds the function that orchestrates the building of information
// derived from the game state: valid moves, and useful information (features) for
// good game play and for the UI.

import (
	"k8s.io/klog/v2"
)

// Derived holds information that is generated from the Board state.
type Derived struct {
	// Moves of the next player to move. Empty if the match is finished or if the player is blocked.
	Moves []Move

	// Information about each player.
	PiecesInTarget [MaxPlayers]uint8
	PiecesInHome   [MaxPlayers]uint8

	// DistanceToTarget is the sum over the player's pieces of the distance to the tip of the target corner.
	DistanceToTarget [MaxPlayers]int

	// NumJumps available to the next player, and the longest (most advancing) move available.
	NumJumps   int
	MaxAdvance int

	// nextBoards are the cached generated boards for all possible moves taken.
	// If set, it has the same length as Moves.
	//
	// It is returned by Board.TakeAllMoves.
	nextBoards []*Board
}

// BuildDerived rebuilds information derived from the board.
func (b *Board) BuildDerived() {
	derived := &Derived{}
	b.Derived = derived

	for p := range PlayerNum(b.NumPlayers()) {
		home, target := b.Home(p), b.Target(p)
		tip := target.Tip()
		for _, pos := range b.pieces[p] {
			if !pos.Valid() {
				continue
			}
			if target.Contains(pos) {
				derived.PiecesInTarget[p]++
			}
			if home.Contains(pos) {
				derived.PiecesInHome[p]++
			}
			derived.DistanceToTarget[p] += pos.Distance(tip)
		}
	}

	derived.Moves = b.ValidMoves(b.NextPlayer)
	if !b.IsFinished() {
		tip := b.Target(b.NextPlayer).Tip()
		for _, move := range derived.Moves {
			if move.Jump {
				derived.NumJumps++
			}
			advance := move.From.Distance(tip) - move.Dest().Distance(tip)
			if advance > derived.MaxAdvance {
				derived.MaxAdvance = advance
			}
		}
	}
	if klog.V(3).Enabled() {
		klog.Infof("Board move #%d: %s to play, %d moves available (%d jumps)",
			b.MoveNumber, b.NextPlayer, len(derived.Moves), derived.NumJumps)
	}
}

// NumMoves available to the next player.
func (b *Board) NumMoves() int {
	return len(b.Derived.Moves)
}

// MustPass returns whether the next player has no moves available and must pass the turn.
func (b *Board) MustPass() bool {
	return !b.IsFinished() && len(b.Derived.Moves) == 0
}

// IsStalled returns whether every player passed in a row: no one will ever be able to move again.
func (b *Board) IsStalled() bool {
	return b.ConsecutivePasses >= b.NumPlayers()
}

// FindMove returns the index of the given move in Derived.Moves, or -1 if it is not a valid move.
// It does a deep comparison, so the move may have been generated separately from the moves of the board,
// for instance when loading a match.
//
// Derived.Moves lists only the shortest chain of jumps to each destination. Any other chain of the same
// piece that passes CheckMovePath is also valid: it returns the index of the listed move that ends on the
// same cell, which leads to the same board.
func (b *Board) FindMove(move Move) int {
	for ii, move2 := range b.Derived.Moves {
		if move.Equal(move2) {
			return ii
		}
	}
	if !move.Jump || b.CheckMovePath(move) != nil {
		return -1
	}
	for ii, move2 := range b.Derived.Moves {
		if move2.Jump && move2.Piece == move.Piece && move2.From == move.From && move2.Dest() == move.Dest() {
			return ii
		}
	}
	return -1
}

// IsValidMove returns whether the move is valid for the next player.
func (b *Board) IsValidMove(move Move) bool {
	return b.FindMove(move) >= 0
}

// TakeAllMoves returns the boards generated by taking all moves available to current player.
// The result is cached in Derived, until ClearNextBoardsCache is called. It is not safe to call it
// concurrently on the same board.
func (b *Board) TakeAllMoves() []*Board {
	if b.Derived == nil {
		b.BuildDerived()
	}
	d := b.Derived
	if d.nextBoards != nil {
		return d.nextBoards
	}
	d.nextBoards = make([]*Board, len(d.Moves))
	for moveIdx, move := range d.Moves {
		d.nextBoards[moveIdx] = b.Act(move)
	}
	return d.nextBoards
}

// ClearNextBoardsCache releases the boards cached by TakeAllMoves.
func (b *Board) ClearNextBoardsCache() {
	if b.Derived != nil {
		b.Derived.nextBoards = nil
	}
}

// FinishReason returns a human readable description of the state of the match.
func (b *Board) FinishReason() string {
	switch {
	case b.IsFinished():
		return b.winner.String() + " player filled its target corner"
	case b.IsStalled():
		return "no player can move"
	default:
		return "game not finished yet"
	}
}
