package players_test

import (
	"github.com/janpfeifer/sternhalmaGo/internal/players"
	_ "github.com/janpfeifer/sternhalmaGo/internal/players/default"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestNew(t *testing.T) {
	player, err := players.New("")
	require.NoError(t, err)
	assert.Equal(t, players.DefaultPlayerConfig, player.String())
	assert.Equal(t, "linear:best", player.Scorer.String())

	player, err = players.New("linear=v0,greedy,randomness=0.1,seed=3")
	require.NoError(t, err)
	assert.Equal(t, "linear:v0", player.Scorer.String())

	for _, config := range []string{
		"linear",                      // No searcher.
		"ab,max_depth=2",              // No scorer.
		"linear,ab,greedy",            // Multiple searchers.
		"linear,ab,max_dpeth=2",       // Typo.
		"linear=unknown_model,ab",     // Model can't be loaded.
		"linear,ab,max_depth=shallow", // Not an int.
	} {
		_, err = players.New(config)
		assert.Errorf(t, err, "config %q should have failed", config)
	}
}

func TestPlay(t *testing.T) {
	for _, config := range []string{"linear,ab,max_depth=2", "linear,greedy,randomness=0.2,seed=1"} {
		player, err := players.New(config)
		require.NoError(t, err)
		b := NewBoard(ThreePlayers)
		for range 6 {
			move, nextBoard, _ := player.Play(b)
			require.Truef(t, b.IsValidMove(move), "config %q: invalid move %s", config, move)
			b = nextBoard
		}
		assert.Equal(t, 6, b.MoveNumber)
		player.Finalize()
		assert.Nil(t, player.Searcher)
	}
}
