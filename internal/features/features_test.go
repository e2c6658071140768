package features_test

import (
	. "github.com/janpfeifer/sternhalmaGo/internal/features"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	. "github.com/janpfeifer/sternhalmaGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func feature(f []float32, id BoardId) []float32 {
	spec := BoardSpecs[id]
	return f[spec.VecIndex : spec.VecIndex+spec.Dim]
}

func TestInitialBoard(t *testing.T) {
	b := NewBoard(TwoPlayers)
	f := FeatureVector(b, PlayerFirst)
	require.Len(t, f, BoardFeaturesDim)
	assert.Equal(t, []float32{0}, feature(f, IdPiecesInTarget))
	assert.Equal(t, []float32{0}, feature(f, IdOpponentPiecesInTarget))
	assert.Equal(t, []float32{10}, feature(f, IdPiecesInHome))
	assert.Equal(t, []float32{10}, feature(f, IdOpponentPiecesInHome))
	assert.Equal(t, []float32{16}, feature(f, IdStraggler))
	assert.Equal(t, feature(f, IdDistanceToTarget), feature(f, IdOpponentDistanceToTarget))
	assert.Greater(t, feature(f, IdDistanceToTarget)[0], float32(0))
	assert.Equal(t, []float32{6, 2}, feature(f, IdMobility))
	assert.Equal(t, []float32{6, 2}, feature(f, IdNextOpponentMobility))
	assert.Equal(t, []float32{0}, feature(f, IdTargetBlocked))

	// The board is symmetric: the second player sees the same.
	assert.Equal(t, f, FeatureVector(b, PlayerSecond))
	assert.NotEmpty(t, PrettyPrintFeatures(f))
}

func TestFilledTarget(t *testing.T) {
	layout := FillCornerExcept(North, PlayerFirst, Pos{1, -5})
	layout = append(layout, PieceOnBoard{Pos{1, -5}, PlayerSecond})
	layout = append(layout, PieceOnBoard{Pos{0, -4}, PlayerFirst})
	b := BuildBoard(TwoPlayers, PlayerSecond, layout)
	f := FeatureVector(b, PlayerFirst)
	assert.Equal(t, []float32{9}, feature(f, IdPiecesInTarget))
	assert.Equal(t, []float32{1}, feature(f, IdTargetBlocked))
	assert.Equal(t, []float32{4}, feature(f, IdStraggler))
	assert.Equal(t, []float32{0}, feature(f, IdPiecesInHome))
	assert.InDelta(t, float32(0.1), feature(f, IdDistanceToTarget)[0], 1e-4)
}
