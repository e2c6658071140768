package searchers

import (
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/sternhalmaGo/internal/ai"
	"github.com/janpfeifer/sternhalmaGo/internal/parameters"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"math"
)

// Greedy is a Searcher that looks only one move ahead: it takes the move leading to the board with the
// best score for the player moving.
//
// It returns the scores of all moves, so it can be combined with NewRandomizedSearcher.
type Greedy struct {
	scorer ai.BatchValueScorer
}

// Assert Greedy is a Searcher.
var _ Searcher = (*Greedy)(nil)

// NewGreedy creates a Greedy searcher using the given scorer.
func NewGreedy(scorer ai.BatchValueScorer) *Greedy {
	return &Greedy{scorer: scorer}
}

// NewGreedyFromParams returns a Greedy searcher if "greedy" is set in params, otherwise it returns nil (and no error).
//
// If "randomness" is set, the Greedy searcher is wrapped with NewRandomizedSearcher, also configured with
// "max_move_randomness" and "seed".
func NewGreedyFromParams(scorer ai.BatchValueScorer, params parameters.Params) (Searcher, error) {
	isGreedy, err := parameters.PopParamOr(params, "greedy", false)
	if err != nil || !isGreedy {
		return nil, err
	}
	randomness, err := parameters.PopParamOr(params, "randomness", 0.0)
	if err != nil {
		return nil, err
	}
	if randomness < 0 {
		return nil, errors.Errorf("greedy randomness=%g must be >= 0", randomness)
	}
	maxMoveRandomness, err := parameters.PopParamOr(params, "max_move_randomness", 0)
	if err != nil {
		return nil, err
	}
	seed, err := parameters.PopParamOr(params, "seed", 0)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("Searcher: greedy, randomness=%g", randomness)
	return NewRandomizedSearcher(NewGreedy(scorer), randomness, maxMoveRandomness, uint64(seed)), nil
}

// String returns the name of the searcher.
func (g *Greedy) String() string {
	return "greedy"
}

// Search implements the Searcher interface.
func (g *Greedy) Search(board *Board) (move Move, nextBoard *Board, score float32, movesScores []float32) {
	if board.IsFinished() {
		exceptions.Panicf("Greedy.Search() called on a finished board: %s", board.FinishReason())
	}
	player := board.NextPlayer
	if board.MustPass() {
		nextBoard = board.ActPass()
		return PassMove, nextBoard, g.scorer.Score(nextBoard, player), nil
	}
	var newBoards []*Board
	newBoards, movesScores = ExecuteAndScoreMoves(board, g.scorer)
	bestIdx := 0
	bestScore := float32(-math.MaxFloat32)
	for moveIdx, moveScore := range movesScores {
		if moveScore > bestScore {
			bestIdx, bestScore = moveIdx, moveScore
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("Greedy(%s): %s has %d moves, best %s with score %.3f",
			g.scorer, player, len(movesScores), board.Derived.Moves[bestIdx], bestScore)
	}
	board.ClearNextBoardsCache()
	return board.Derived.Moves[bestIdx], newBoards[bestIdx], bestScore, movesScores
}

// ExecuteAndScoreMoves creates the boards after executing each of the moves of the board,
// and returns the new boards and their scores, for the player that moved (board.NextPlayer).
//
// Boards where the match is over are scored with ai.IsEndGameAndScore, and the others
// are scored in one batch by the scorer.
//
// The new boards are the ones cached by board.TakeAllMoves: they shouldn't be modified, and the
// caller should call board.ClearNextBoardsCache once they are no longer needed.
func ExecuteAndScoreMoves(board *Board, scorer ai.BatchValueScorer) (newBoards []*Board, scores []float32) {
	player := board.NextPlayer
	newBoards = board.TakeAllMoves()
	scores = make([]float32, len(newBoards))

	boardsToScore := make([]*Board, 0, len(newBoards))
	for ii := range newBoards {
		if isEnd, endScore := ai.IsEndGameAndScore(newBoards[ii], player); isEnd {
			scores[ii] = endScore
		} else {
			boardsToScore = append(boardsToScore, newBoards[ii])
		}
	}
	if len(boardsToScore) == 0 {
		return
	}
	scored := scorer.BatchScore(boardsToScore, player)
	scoredIdx := 0
	for ii := range scores {
		if isEnd, _ := ai.IsEndGameAndScore(newBoards[ii], player); !isEnd {
			scores[ii] = scored[scoredIdx]
			scoredIdx++
		}
	}
	return
}
