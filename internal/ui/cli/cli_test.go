package cli

import (
	"bytes"
	"fmt"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/sternhalmaGo/internal/engine"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	. "github.com/janpfeifer/sternhalmaGo/internal/state/statetest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

// almostWonBoard returns a board where the first player can win by stepping from (0,-4) into (1,-5).
func almostWonBoard() *Board {
	layout := FillCornerExcept(North, PlayerFirst, Pos{1, -5})
	layout = append(layout, PieceOnBoard{Pos{0, -4}, PlayerFirst})
	for q := int8(-4); q <= 4; q++ {
		layout = append(layout, PieceOnBoard{Pos{q, 0}, PlayerSecond})
	}
	layout = append(layout, PieceOnBoard{Pos{0, 1}, PlayerSecond})
	return BuildBoard(TwoPlayers, PlayerFirst, layout)
}

func TestParseMove(t *testing.T) {
	b := NewBoard(TwoPlayers)
	for idx, move := range b.Derived.Moves {
		text := fmt.Sprintf(" %d, %d  %d %d\n", move.From.Q(), move.From.R(), move.Dest().Q(), move.Dest().R())
		parsed, err := ParseMove(b, text)
		require.NoError(t, err, "input %q", text)
		assert.Equal(t, move.From, parsed.From)
		assert.Equal(t, move.Dest(), parsed.Dest())

		parsed, err = ParseMove(b, fmt.Sprintf("%d", idx))
		require.NoError(t, err)
		assert.Equal(t, move, parsed)
	}

	_, err := ParseMove(b, "pass")
	assert.True(t, errors.Is(err, ErrIllegalMove))
	_, err = ParseMove(b, fmt.Sprintf("%d", b.NumMoves()))
	assert.True(t, errors.Is(err, ErrIllegalMove))
	_, err = ParseMove(b, "7 7 0 0")
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = ParseMove(b, "0 0 1 0")
	assert.True(t, errors.Is(err, ErrIllegalMove))
	_, err = ParseMove(b, "300 0 1 0")
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = ParseMove(b, "move forward")
	assert.Error(t, err)

	// A blocked player can pass.
	b = BuildBoard(TwoPlayers, PlayerFirst, []PieceOnBoard{
		{North.Tip(), PlayerFirst},
		{Pos{4, -7}, PlayerSecond},
		{Pos{3, -7}, PlayerSecond},
		{Pos{4, -6}, PlayerSecond},
		{Pos{2, -6}, PlayerSecond},
	})
	move, err := ParseMove(b, "PASS")
	require.NoError(t, err)
	assert.True(t, move.IsPass())
}

func TestPrintBoard(t *testing.T) {
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader(""), &out, false, false)
	ui.PrintBoard(NewBoard(TwoPlayers))
	text := out.String()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, BoardLength)
	assert.Equal(t, NumCells-2*PiecesPerPlayer, strings.Count(text, "·"))
	assert.True(t, strings.HasPrefix(lines[0], "r= -8"))
	assert.True(t, strings.HasSuffix(lines[0], "q=4..4"))
	assert.True(t, strings.HasSuffix(lines[BoardLength-1], "q=-4..-4"))

	// Colors don't change the layout.
	var colorOut bytes.Buffer
	NewWithIO(strings.NewReader(""), &colorOut, true, false).PrintBoard(NewBoard(TwoPlayers))
	assert.Equal(t, text, ansiFilter.ReplaceAllString(colorOut.String(), ""))
}

func TestRun(t *testing.T) {
	game, err := engine.NewFromBoard(almostWonBoard())
	require.NoError(t, err)
	var out bytes.Buffer
	// First two inputs are invalid, and the last one wins the match.
	ui := NewWithIO(strings.NewReader("pass\n7 7 7 7\n0 -4 1 -5\n"), &out, false, false)
	require.NoError(t, ui.Run(game))
	assert.True(t, game.IsFinished())
	assert.Equal(t, PlayerFirst, game.Winner())
	assert.Contains(t, out.String(), "FIRST PLAYER WINS")
	assert.Contains(t, out.String(), "please try again")

	// Input ends before the match is over.
	game = must.M1(engine.New(3))
	ui = NewWithIO(strings.NewReader("0\n"), &out, false, false)
	err = ui.Run(game)
	assert.Error(t, err)
	assert.Equal(t, 1, game.Turns())
}

func TestCheckNoAvailableMove(t *testing.T) {
	b := BuildBoard(TwoPlayers, PlayerFirst, []PieceOnBoard{
		{North.Tip(), PlayerFirst},
		{Pos{4, -7}, PlayerSecond},
		{Pos{3, -7}, PlayerSecond},
		{Pos{4, -6}, PlayerSecond},
		{Pos{2, -6}, PlayerSecond},
	})
	game, err := engine.NewFromBoard(b)
	require.NoError(t, err)
	var out bytes.Buffer
	ui := NewWithIO(strings.NewReader(""), &out, false, false)
	passed, err := ui.CheckNoAvailableMove(game)
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, PlayerSecond, game.Player())
	passed, err = ui.CheckNoAvailableMove(game)
	require.NoError(t, err)
	assert.False(t, passed)
}
