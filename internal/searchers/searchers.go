// Package searchers defines the Searcher interface, implemented by the search algorithms that
// choose the move of an AI player, and a couple of simple searchers.
package searchers

import (
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
)

// Searcher is the interface that any of the search algorithms
// must adhere to be valid.
type Searcher interface {
	// Search returns the next move to take on the given board, along with the updated Board (after taking the move)
	// and the expected score of taking that move for the player to move.
	//
	// If the player has no moves available, it returns PassMove.
	//
	// Optionally, it can also return the score for each of the moves available on the board.
	// Some algorithms (e.g.: alpha-beta pruning) don't provide good approximations to those, so they return it nil.
	Search(board *Board) (move Move, nextBoard *Board, score float32, movesScores []float32)
}
