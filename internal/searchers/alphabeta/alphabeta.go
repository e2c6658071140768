// Package alphabeta implements an alpha-beta pruning searcher for any number of players.
//
// With more than 2 players it uses the "paranoid" assumption: all the other players are assumed to
// play against the player searching, so the search alternates between maximizing (the player searching)
// and minimizing (any opponent) the score of the player searching.
package alphabeta

import (
	"fmt"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/sternhalmaGo/internal/ai"
	"github.com/janpfeifer/sternhalmaGo/internal/features"
	"github.com/janpfeifer/sternhalmaGo/internal/generics"
	"github.com/janpfeifer/sternhalmaGo/internal/parameters"
	"github.com/janpfeifer/sternhalmaGo/internal/searchers"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"math"
	"sync/atomic"
	"time"
)

// Searcher implements the searchers.Searcher interface.
// It is used by players.SearcherScorer, along with the scorer, to implement an AI player (players.Player interface).
type Searcher struct {
	maxDepth          int
	maxTime           time.Duration
	randomness        float32
	maxMoveRandomness int
	parallelism       int
	seed              uint64
	numSearches       atomic.Uint64
	scorer            ai.BatchValueScorer
	stats             Stats
}

// Assert that Searcher implements searchers.Searcher.
var _ searchers.Searcher = (*Searcher)(nil)

// Stats stores running stats collected during the search: for benchmarking, monitoring and debugging purposes.
// They are updated atomically, since the search may be parallelized.
type Stats struct {
	// nodes "played" during search -- execution of a move in a board, following by the creation of the new board.
	nodes atomic.Int64

	// evals means the number of boards passed to the scorer. Notice end-game situations are not scored and don't
	// count here.
	evals atomic.Int64

	leafEvals atomic.Int64
	prunes    atomic.Int64
}

func (s *Stats) reset() {
	s.nodes.Store(0)
	s.evals.Store(0)
	s.leafEvals.Store(0)
	s.prunes.Store(0)
}

// New returns an Alpha-Beta Pruning based searchers.Searcher implementation.
// There are many other optional configurations, see methods Searcher.With...
//
// The one obligatory parameter is the scorer used for the search.
//
// See: wikipedia.org/wiki/Alpha-beta_pruning
func New(scorer ai.BatchValueScorer) *Searcher {
	return &Searcher{
		scorer:      scorer,
		maxDepth:    DefaultMaxDepth,
		parallelism: 1,
	}
}

// NewFromParams returns an alpha-beta searcher if "ab" is set in params, otherwise it returns nil (and no error).
//
// It consumes the parameters "max_depth", "max_time", "randomness", "max_move_randomness", "parallelism" and "seed".
func NewFromParams(scorer ai.BatchValueScorer, params parameters.Params) (searchers.Searcher, error) {
	isAB, err := parameters.PopParamOr(params, "ab", false)
	if err != nil || !isAB {
		return nil, err
	}
	ab := New(scorer)
	maxDepth, err := parameters.PopParamOr(params, "max_depth", 0)
	if err != nil {
		return nil, err
	}
	maxTime, err := parameters.PopParamOr(params, "max_time", time.Duration(0))
	if err != nil {
		return nil, err
	}
	if maxDepth > 0 && maxTime > 0 {
		return nil, errors.Errorf("alpha-beta searcher can't have both max_depth=%d and max_time=%s set", maxDepth, maxTime)
	}
	if maxTime > 0 {
		ab.WithMaxTime(maxTime)
	} else if maxDepth > 0 {
		ab.WithMaxDepth(maxDepth)
	}
	randomness, err := parameters.PopParamOr(params, "randomness", float32(0))
	if err != nil {
		return nil, err
	}
	if randomness < 0 {
		return nil, errors.Errorf("alpha-beta randomness=%g must be >= 0", randomness)
	}
	ab.WithRandomness(randomness)
	maxMoveRandomness, err := parameters.PopParamOr(params, "max_move_randomness", 0)
	if err != nil {
		return nil, err
	}
	ab.WithMaxMoveRandomness(maxMoveRandomness)
	parallelism, err := parameters.PopParamOr(params, "parallelism", 1)
	if err != nil {
		return nil, err
	}
	ab.WithParallelism(parallelism)
	seed, err := parameters.PopParamOr(params, "seed", 0)
	if err != nil {
		return nil, err
	}
	ab.WithSeed(uint64(seed))
	klog.V(1).Infof("Searcher: %s, randomness=%g, parallelism=%d", ab, ab.randomness, ab.parallelism)
	return ab, nil
}

// DefaultMaxDepth for search.
const DefaultMaxDepth = 2

// WithMaxDepth sets a default max depth of search: the unit here are plies (ply singular). Each player
// playing counts as one ply. See https://en.wikipedia.org/wiki/Ply_(game_theory).
//
// This overrides WithMaxTime.
//
// The default is 2 (DefaultMaxDepth).
func (ab *Searcher) WithMaxDepth(maxDepth int) *Searcher {
	ab.maxDepth = maxDepth
	if maxDepth > 0 {
		ab.maxTime = 0
	} else {
		ab.maxDepth = 0
		// If disabling maxDepth, set maxTime to some default, if it is not set.
		if ab.maxTime == 0 {
			ab.maxTime = 3 * time.Second
		}
	}
	return ab
}

// WithMaxTime sets a default max duration of thinking per search: the search is deepened one ply at a time
// (iterative deepening) until the time is over, and the result of the deepest completed search is used.
// This overrides WithMaxDepth.
//
// The default is no time-limit, and instead be limited by WithMaxDepth.
func (ab *Searcher) WithMaxTime(maxTime time.Duration) *Searcher {
	ab.maxTime = maxTime
	if maxTime > 0 {
		ab.maxDepth = 0
	} else {
		ab.maxTime = 0
		// If disabling maxTime, set maxDepth to default, if it is not set.
		if ab.maxDepth == 0 {
			ab.maxDepth = DefaultMaxDepth
		}
	}
	return ab
}

// WithRandomness adds a gaussian noise scaled to randomness to the scores returned by the scorer at
// the leaf nodes of the search. Scores vary from -1 to 1 (+/- ai.WinGameScore), so a value of 1.0 here would be a lot.
//
// This can be useful to make the AI play worse, to make it more fun, or to generate different matches.
//
// If noise is added, the scores are also further squashed by an S curve.
//
// Set to 0 to disable randomness -- this is the default.
//
// See also WithMaxMoveRandomness and WithSeed.
func (ab *Searcher) WithRandomness(randomness float32) *Searcher {
	ab.randomness = randomness
	return ab
}

// WithMaxMoveRandomness sets a move limit after which randomness is disabled.
//
// This is desirable if, for instance, using randomness only to generate different openings.
func (ab *Searcher) WithMaxMoveRandomness(maxMoveRandomness int) *Searcher {
	ab.maxMoveRandomness = maxMoveRandomness
	return ab
}

// WithSeed sets the seed of the random number generator used when WithRandomness is set, so matches can
// be reproduced.
func (ab *Searcher) WithSeed(seed uint64) *Searcher {
	ab.seed = seed
	return ab
}

// WithParallelism sets the number of goroutines used to search the moves at the root of the search in parallel.
// Each move at the root is then searched independently, without sharing the pruning bounds of its siblings.
//
// The default is 1, meaning no parallelism.
func (ab *Searcher) WithParallelism(parallelism int) *Searcher {
	ab.parallelism = max(parallelism, 1)
	return ab
}

// String returns a description of the searcher configuration.
func (ab *Searcher) String() string {
	if ab.maxTime > 0 {
		return "alpha-beta(max_time=" + ab.maxTime.String() + ")"
	}
	return fmt.Sprintf("alpha-beta(max_depth=%d)", ab.maxDepth)
}

// Search implements the Searcher interface.
//
// It returns movesScores always nil, because it wouldn't be a good approximation for the non-best move.
// This is because of the pruning aspect of the algorithm: bad moves are cut short, so alpha-beta pruning score
// estimation for bad moves will not be a good one.
func (ab *Searcher) Search(b *Board) (move Move, nextBoard *Board, score float32, movesScores []float32) {
	if b.IsFinished() {
		exceptions.Panicf("alphabeta.Search() called on a finished board: %s", b.FinishReason())
	}
	if b.MustPass() {
		nextBoard = b.ActPass()
		return PassMove, nextBoard, ab.scorer.Score(nextBoard, b.NextPlayer), nil
	}

	start := time.Now()
	ab.stats.reset()
	searchNum := ab.numSearches.Add(1)
	var moveIdx int
	var depthReached int
	if ab.maxTime > 0 {
		// Iterative deepening: the first depth always completes, deeper ones are aborted when time is over.
		deadline := start.Add(ab.maxTime)
		moveIdx, score, _ = ab.searchToMaxDepth(b, 1, time.Time{}, searchNum)
		depthReached = 1
		for depth := 2; score != ai.WinGameScore && time.Now().Before(deadline); depth++ {
			idx, depthScore, completed := ab.searchToMaxDepth(b, depth, deadline, searchNum)
			if !completed {
				break
			}
			moveIdx, score, depthReached = idx, depthScore, depth
		}
	} else {
		moveIdx, score, _ = ab.searchToMaxDepth(b, ab.maxDepth, time.Time{}, searchNum)
		depthReached = ab.maxDepth
	}
	move = b.Derived.Moves[moveIdx]
	nextBoard = b.TakeAllMoves()[moveIdx]
	b.ClearNextBoardsCache()

	elapsedTime := time.Since(start).Seconds()
	if klog.V(3).Enabled() {
		klog.Infof("Features after best move:\n%s", features.PrettyPrintFeatures(features.FeatureVector(nextBoard, b.NextPlayer)))
	}
	if klog.V(2).Enabled() {
		nodes, evals := ab.stats.nodes.Load(), ab.stats.evals.Load()
		klog.Infof("Move #%d: %s player chose %s, αβ-score=%.3f, depth=%d", b.MoveNumber, b.NextPlayer, move, score, depthReached)
		klog.Infof("  nodes=%d, evals=%d, leafEvals=%d, prunes=%d", nodes, evals, ab.stats.leafEvals.Load(), ab.stats.prunes.Load())
		klog.Infof("  nodes/s=%.1f, evals/s=%.1f", float64(nodes)/elapsedTime, float64(evals)/elapsedTime)
	}
	return
}

// errAborted is returned internally when the search runs past its deadline.
var errAborted = errors.New("search aborted")

// searchState holds the state of one search goroutine.
type searchState struct {
	ab       *Searcher
	root     PlayerNum
	deadline time.Time
	aborted  bool
	addNoise bool
	rng      *rand.Rand
}

func (ab *Searcher) newSearchState(board *Board, deadline time.Time, searchNum, streamIdx uint64) *searchState {
	st := &searchState{
		ab:       ab,
		root:     board.NextPlayer,
		deadline: deadline,
		addNoise: ab.randomness > 0 && (ab.maxMoveRandomness <= 0 || board.MoveNumber <= ab.maxMoveRandomness),
	}
	if st.addNoise {
		// Each search and goroutine has its own stream, so results are reproducible.
		st.rng = rand.New(rand.NewSource(ab.seed + searchNum<<20 + streamIdx))
	}
	return st
}

// searchToMaxDepth executes alpha-beta pruning algorithm to the given depth.
// Returns:
//
//	bestMoveIdx: index of the move (in board.Derived.Moves) that it suggests taking.
//	bestScore: score of taking the move, for the player moving.
//	completed: false if the deadline was reached before the search completed.
func (ab *Searcher) searchToMaxDepth(board *Board, maxDepth int, deadline time.Time, searchNum uint64) (
	bestMoveIdx int, bestScore float32, completed bool) {
	newBoards, scores := searchers.ExecuteAndScoreMoves(board, ab.scorer)
	ab.stats.nodes.Add(int64(len(newBoards)))
	ab.stats.evals.Add(int64(len(newBoards)))

	// If there is a winning move, take it, no need to explore deeper.
	for moveIdx, score := range scores {
		if score == ai.WinGameScore && newBoards[moveIdx].IsFinished() {
			return moveIdx, score, true
		}
	}
	if maxDepth <= 1 {
		st := ab.newSearchState(board, deadline, searchNum, 0)
		st.addLeafNoise(newBoards, scores)
		ab.stats.leafEvals.Add(int64(len(scores)))
		bestMoveIdx = generics.SliceOrdering(scores, true)[0]
		return bestMoveIdx, scores[bestMoveIdx], true
	}

	ordering := generics.SliceOrdering(scores, true) // Reverse order by score.
	if ab.parallelism <= 1 {
		st := ab.newSearchState(board, deadline, searchNum, 0)
		alpha, beta := float32(-math.MaxFloat32), float32(math.MaxFloat32)
		bestMoveIdx, bestScore = -1, float32(-math.MaxFloat32)
		for _, moveIdx := range ordering {
			score := scores[moveIdx]
			if !isEnd(newBoards[moveIdx]) {
				score = st.recursion(newBoards[moveIdx], maxDepth-1, alpha, beta)
				if st.aborted {
					return -1, 0, false
				}
			}
			if score > bestScore {
				bestMoveIdx, bestScore = moveIdx, score
			}
			alpha = max(alpha, bestScore)
		}
		return bestMoveIdx, bestScore, true
	}

	// Parallel search of the moves at the root.
	values := make([]float32, len(scores))
	copy(values, scores)
	var wg errgroup.Group
	wg.SetLimit(ab.parallelism)
	for streamIdx, moveIdx := range ordering {
		if isEnd(newBoards[moveIdx]) {
			continue
		}
		wg.Go(func() error {
			st := ab.newSearchState(board, deadline, searchNum, uint64(streamIdx))
			values[moveIdx] = st.recursion(newBoards[moveIdx], maxDepth-1, -math.MaxFloat32, math.MaxFloat32)
			if st.aborted {
				return errAborted
			}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return -1, 0, false
	}
	bestMoveIdx, bestScore = -1, float32(-math.MaxFloat32)
	for _, moveIdx := range ordering {
		if values[moveIdx] > bestScore {
			bestMoveIdx, bestScore = moveIdx, values[moveIdx]
		}
	}
	return bestMoveIdx, bestScore, true
}

// isEnd returns whether there is nothing else to search after the board.
func isEnd(board *Board) bool {
	return board.IsFinished() || board.IsStalled()
}

// recursion of the alpha-beta pruning algorithm, with depthLeft plies to go.
// It returns the score of the board for the root player: it maximizes when the root player is to move,
// and minimizes for every other player.
func (st *searchState) recursion(board *Board, depthLeft int, alpha, beta float32) float32 {
	if !st.deadline.IsZero() && time.Now().After(st.deadline) {
		st.aborted = true
		return 0
	}
	ab := st.ab

	// Sub-moves and boards available at this state: in principle we would only need to score the leaf
	// nodes, but we score intermediary nodes to guide the alpha-beta pruning search -- it prunes more
	// if we search for the better nodes first, making it faster overall.
	var newBoards []*Board
	var scores []float32
	if board.MustPass() {
		newBoards = []*Board{board.ActPass()}
		scores = []float32{st.score(newBoards[0])}
	} else {
		// Only the boards along the current search path are kept cached.
		newBoards = board.TakeAllMoves()
		defer board.ClearNextBoardsCache()
		scores = make([]float32, len(newBoards))
		boardsToScore := make([]*Board, 0, len(newBoards))
		for ii, newBoard := range newBoards {
			if isEnd(newBoard) {
				_, scores[ii] = ai.IsEndGameAndScore(newBoard, st.root)
			} else {
				boardsToScore = append(boardsToScore, newBoard)
			}
		}
		if len(boardsToScore) > 0 {
			scored := ab.scorer.BatchScore(boardsToScore, st.root)
			ab.stats.evals.Add(int64(len(scored)))
			scoredIdx := 0
			for ii, newBoard := range newBoards {
				if !isEnd(newBoard) {
					scores[ii] = scored[scoredIdx]
					scoredIdx++
				}
			}
		}
	}
	ab.stats.nodes.Add(int64(len(newBoards)))
	maximizing := board.NextPlayer == st.root

	// Leaf nodes take the score returned by the scorer.
	if depthLeft <= 1 {
		ab.stats.leafEvals.Add(int64(len(scores)))
		st.addLeafNoise(newBoards, scores)
		if maximizing {
			return maxScore(scores)
		}
		return minScore(scores)
	}

	// Search the most promising moves first.
	ordering := generics.SliceOrdering(scores, maximizing)
	var bestScore float32
	if maximizing {
		bestScore = -math.MaxFloat32
	} else {
		bestScore = math.MaxFloat32
	}
	for _, moveIdx := range ordering {
		score := scores[moveIdx]
		if !isEnd(newBoards[moveIdx]) {
			score = st.recursion(newBoards[moveIdx], depthLeft-1, alpha, beta)
			if st.aborted {
				return 0
			}
		}
		if maximizing {
			bestScore = max(bestScore, score)
			alpha = max(alpha, bestScore)
		} else {
			bestScore = min(bestScore, score)
			beta = min(beta, bestScore)
		}
		if alpha >= beta {
			// The player choosing at the parent node will never take this path, so we can prune the search.
			ab.stats.prunes.Add(1)
			break
		}
	}
	return bestScore
}

// score a single board for the root player.
func (st *searchState) score(board *Board) float32 {
	if isEnd, score := ai.IsEndGameAndScore(board, st.root); isEnd {
		return score
	}
	st.ab.stats.evals.Add(1)
	return st.ab.scorer.Score(board, st.root)
}

// addLeafNoise adds noise to the scores of boards that don't end the game, if randomness is configured.
func (st *searchState) addLeafNoise(boards []*Board, scores []float32) {
	if !st.addNoise {
		return
	}
	for ii := range scores {
		if !isEnd(boards[ii]) {
			noise := float32(st.rng.NormFloat64()*float64(st.ab.randomness)) * ai.WinGameScore
			scores[ii] = ai.SquashScore(scores[ii] + noise)
		}
	}
}

func maxScore(scores []float32) float32 {
	best := float32(-math.MaxFloat32)
	for _, score := range scores {
		best = max(best, score)
	}
	return best
}

func minScore(scores []float32) float32 {
	best := float32(math.MaxFloat32)
	for _, score := range scores {
		best = min(best, score)
	}
	return best
}
