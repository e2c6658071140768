// Package _default registers the default scorers and searchers that can be included in any
// front-end for sternhalmaGo.
//
// Currently, it includes a linear model, alpha-beta pruning and a greedy searcher.
package _default

import (
	"github.com/janpfeifer/sternhalmaGo/internal/ai/linear"
	"github.com/janpfeifer/sternhalmaGo/internal/players"
	"github.com/janpfeifer/sternhalmaGo/internal/searchers"
	"github.com/janpfeifer/sternhalmaGo/internal/searchers/alphabeta"
)

func init() {
	players.RegisterScorer(linear.NewFromParams)
	players.RegisterSearcher(alphabeta.NewFromParams)
	players.RegisterSearcher(searchers.NewGreedyFromParams)
}
