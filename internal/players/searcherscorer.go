package players

import (
	"github.com/janpfeifer/sternhalmaGo/internal/ai"
	"github.com/janpfeifer/sternhalmaGo/internal/parameters"
	"github.com/janpfeifer/sternhalmaGo/internal/searchers"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SearcherScorer is a standard set up for an AI: a searcher and a scorer.
// It implements the Player interface.
type SearcherScorer struct {
	Searcher searchers.Searcher
	Scorer   ai.BatchValueScorer
	Config   string
}

// New creates a new AI player given the configuration string.
//
// Args:
//
//   - config: a comma-separated list of parameters with optional values associated. At least a "scorer" (e.g. "linear")
//     and a "searcher" (e.g. "ab" or "greedy") must be defined. If empty, the default is given by DefaultPlayerConfig.
//     E.g.: "linear,ab,max_depth=2"
//
// Typical parameters:
//
//   - linear (string): Configure to use the linear scorer. Default value is "best", and other valid values are
//     "v0", "v1" or a path to the linear model to be loaded.
//   - ab (bool): If to use Alpha-Beta pruning search algorithm.
//   - greedy (bool): Use a one ply search, that picks the best scoring move.
//   - max_depth (int): Max depth of search, default is 2. If max_time is set, this parameter is ignored.
//   - max_time (time.Duration): Max time duration in search, default is 0s, which means it is not time-limited but rather max_depth limited.
//   - randomness (float): Adds a layer of randomness in the search. For "greedy" the move is
//     sampled according to a softmax of the scores of each move, divided by this value.
//     For "ab" it's the standard deviation of the noise added to the leaf scores.
//     So lower values (closer to 0) means less randomness, higher value means more randomness,
//     hence more exploration. Default is 0.
//   - seed (int): seed for the randomness, so matches can be reproduced.
//
// More details on the config are dependent on the module used.
func New(config string) (*SearcherScorer, error) {
	if config == "" {
		config = DefaultPlayerConfig
	}
	params := parameters.NewFromConfigString(config)
	player := &SearcherScorer{Config: config}

	if len(RegisteredScorers) == 0 {
		return nil, errors.New("no registered scorers. Perhaps you need to import _ \"github.com/janpfeifer/sternhalmaGo/internal/players/default\" to your binary ?")
	}
	if len(RegisteredSearchers) == 0 {
		return nil, errors.New("no registered searchers. Perhaps you need to import _ \"github.com/janpfeifer/sternhalmaGo/internal/players/default\" to your binary ?")
	}

	// Find scorer.
	for _, builder := range RegisteredScorers {
		s, err := builder(params)
		if err != nil {
			return nil, errors.WithMessagef(err, "AI configuration %q", config)
		}
		if s == nil {
			// Not this type of scorer.
			continue
		}
		if player.Scorer != nil {
			return nil, errors.Errorf("multiple scorers defined in AI configuration %q", config)
		}
		player.Scorer = s
	}
	if player.Scorer == nil {
		return nil, errors.Errorf("no scorers defined in AI configuration %q", config)
	}

	// Find searcher.
	for _, builder := range RegisteredSearchers {
		s, err := builder(player.Scorer, params)
		if err != nil {
			return nil, errors.WithMessagef(err, "AI configuration %q", config)
		}
		if s == nil {
			continue
		}
		if player.Searcher != nil {
			return nil, errors.Errorf("multiple searchers defined in AI configuration %q", config)
		}
		player.Searcher = s
	}
	if player.Searcher == nil {
		return nil, errors.Errorf("no searchers defined in AI configuration %q", config)
	}

	// Check that all parameters were processed.
	if err := parameters.CheckAllConsumed(params); err != nil {
		return nil, errors.WithMessagef(err, "AI configuration %q", config)
	}
	return player, nil
}

// Assert that SearchScorer is a Player.
var _ Player = &SearcherScorer{}

// Play implements the Player interface: it chooses a move given a Board.
func (s *SearcherScorer) Play(b *Board) (move Move, nextBoard *Board, score float32) {
	move, nextBoard, score, _ = s.Searcher.Search(b)
	if klog.V(2).Enabled() {
		klog.Infof("Move #%d: AI (%s) playing %s, score=%.3f",
			b.MoveNumber, s.Scorer, move, score)
	}
	return
}

// String returns the configuration of the player.
func (s *SearcherScorer) String() string {
	return s.Config
}

// Finalize is called at the end of a match.
func (s *SearcherScorer) Finalize() {
	if klog.V(1).Enabled() {
		klog.Infof("Player (scorer=%s) finalized", s.Scorer)
	}
	s.Scorer = nil
	s.Searcher = nil
}
