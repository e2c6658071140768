// Package players provides a factory of AI players from a configuration string.
// It also allows scorer and searcher providers to register themselves.
package players

import (
	"github.com/janpfeifer/sternhalmaGo/internal/ai"
	"github.com/janpfeifer/sternhalmaGo/internal/parameters"
	"github.com/janpfeifer/sternhalmaGo/internal/searchers"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
)

// Player is anything that is able to play the game.
type Player interface {
	// Play returns the move chosen, the next board position (after the move is taken)
	// and the score of the move, as estimated by the player.
	Play(board *Board) (move Move, nextBoard *Board, score float32)

	// Finalize is called at the end of a match.
	Finalize()
}

// ScorerBuilder creates a scorer from the parameters, if it is selected by them.
// It should return nil (and no error) if the parameters don't select it, and it should
// pop from params the parameters it consumes.
type ScorerBuilder func(params parameters.Params) (ai.BatchValueScorer, error)

// SearcherBuilder creates a searcher from the parameters, if it is selected by them.
// It follows the same conventions as ScorerBuilder.
type SearcherBuilder func(scorer ai.BatchValueScorer, params parameters.Params) (searchers.Searcher, error)

var (
	// RegisteredScorers is the list of scorers available to New.
	RegisteredScorers []ScorerBuilder

	// RegisteredSearchers is the list of searchers available to New.
	RegisteredSearchers []SearcherBuilder
)

// RegisterScorer so it can be used by any of the front-ends to play.
func RegisterScorer(builder ScorerBuilder) {
	RegisteredScorers = append(RegisteredScorers, builder)
}

// RegisterSearcher so it can be used by any of the front-ends to play.
func RegisterSearcher(builder SearcherBuilder) {
	RegisteredSearchers = append(RegisteredSearchers, builder)
}

var (
	// DefaultPlayerConfig is used if no configuration was given to the AI. The value may be changed by the
	// UI built.
	DefaultPlayerConfig = "linear,ab,max_depth=2"
)
