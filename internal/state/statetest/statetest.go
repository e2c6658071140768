// Package statetest provides helper functions to create tests using Sternhalma state.
package statetest

import (
	"github.com/gomlx/exceptions"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
)

// PieceOnBoard represents a position and ownership of a piece in the board.
type PieceOnBoard struct {
	Pos    Pos
	Player PlayerNum
}

// BuildBoard from a collection of pieces: pieces of each player are numbered in the order they are given.
// It panics if the layout is invalid, since it is meant only for tests.
func BuildBoard(variant Variant, nextPlayer PlayerNum, layout []PieceOnBoard) (b *Board) {
	b = NewEmptyBoard(variant)
	var counts [MaxPlayers]int
	for _, p := range layout {
		if err := b.SetPiece(p.Player, counts[p.Player], p.Pos); err != nil {
			exceptions.Panicf("failed to build board: %+v", err)
		}
		counts[p.Player]++
	}
	b.NextPlayer = nextPlayer
	b.BuildDerived()
	return
}

// BuildBoardFromText builds a board from the text representation used by Snapshot.String.
// Pieces of each player are numbered in canonical cell order.
func BuildBoardFromText(variant Variant, nextPlayer PlayerNum, text string) (b *Board) {
	snapshot, err := ParseSnapshot(text)
	if err != nil {
		exceptions.Panicf("failed to parse board text: %+v", err)
	}
	var layout []PieceOnBoard
	for player := range PlayerNum(MaxPlayers) {
		for _, pos := range snapshot.PlayerPositions(player) {
			layout = append(layout, PieceOnBoard{Pos: pos, Player: player})
		}
	}
	return BuildBoard(variant, nextPlayer, layout)
}

// FillCornerExcept returns the layout of all the cells of the corner, except for the given positions.
func FillCornerExcept(corner Corner, player PlayerNum, except ...Pos) (layout []PieceOnBoard) {
	skip := make(map[Pos]bool, len(except))
	for _, pos := range except {
		skip[pos] = true
	}
	for _, pos := range corner.Cells() {
		if !skip[pos] {
			layout = append(layout, PieceOnBoard{Pos: pos, Player: player})
		}
	}
	return
}
