package state_test

import (
	"bytes"
	"encoding/gob"
	"github.com/janpfeifer/sternhalmaGo/internal/generics"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	. "github.com/janpfeifer/sternhalmaGo/internal/state/statetest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

var allVariants = []Variant{TwoPlayers, ThreePlayers, FourPlayers, SixPlayers}

func TestGeometry(t *testing.T) {
	cells := Cells()
	require.Len(t, cells, NumCells)
	for idx, pos := range cells {
		assert.True(t, pos.Valid(), "cell %s", pos)
		assert.Equal(t, idx, CellIndex(pos))
	}
	assert.Equal(t, -1, CellIndex(Pos{8, 8}))

	// Corners are disjoint, have 10 cells each, and contain their tip.
	inCorners := generics.MakeSet[Pos]()
	for c := range NumCorners {
		require.Len(t, c.Cells(), CornerSize, "corner %s", c)
		assert.True(t, c.Contains(c.Tip()), "corner %s tip %s", c, c.Tip())
		assert.Equal(t, BoardRadius, c.Tip().Distance(Pos{0, 0}))
		for _, pos := range c.Cells() {
			assert.False(t, inCorners.Has(pos), "position %s in more than one corner", pos)
			inCorners.Insert(pos)
			got, found := CornerOf(pos)
			assert.True(t, found)
			assert.Equal(t, c, got)
		}
		assert.Equal(t, c, c.Opposite().Opposite())
		assert.NotEqual(t, c, c.Opposite())
	}

	// What is left is the central hexagon.
	hexagon := generics.SetWith(cells...).Sub(inCorners)
	assert.Len(t, hexagon, 61)
	for pos := range hexagon {
		assert.LessOrEqual(t, pos.Distance(Pos{0, 0}), HexRadius)
	}
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, SouthWest, NorthEast.Opposite())
	assert.Equal(t, NorthWest, SouthEast.Opposite())
}

func TestNeighbours(t *testing.T) {
	b := NewBoard(TwoPlayers)
	assert.Len(t, b.Neighbours(Pos{0, 0}), NumNeighbors)

	// Tip of the north corner only has 2 neighbours on the board.
	assert.Equal(t, []Pos{{4, -7}, {3, -7}}, b.Neighbours(North.Tip()))

	// Neighbours follow Directions, also for positions off the board.
	for ii, pos := range (Pos{0, 0}).Neighbours() {
		assert.Equal(t, Directions[ii], pos)
		assert.Equal(t, Pos{0, 0}, pos.Add(Directions[(ii+3)%NumNeighbors]))
	}
}

func TestDisplayPos(t *testing.T) {
	for _, pos := range Cells() {
		col, row := pos.ToDisplayPos()
		got, ok := FromDisplayPos(col, row)
		require.True(t, ok)
		assert.Equal(t, pos, got)
	}
	_, ok := FromDisplayPos(17, BoardRadius)
	assert.False(t, ok, "odd column in the middle row doesn't map to a position")
}

func TestParseVariant(t *testing.T) {
	for _, numPlayers := range []int{2, 3, 4, 6} {
		v, err := ParseVariant(numPlayers)
		require.NoError(t, err)
		assert.Equal(t, numPlayers, v.NumPlayers())
		assert.Len(t, v.Homes(), numPlayers)
	}
	for _, numPlayers := range []int{-1, 0, 1, 5, 7, 256} {
		_, err := ParseVariant(numPlayers)
		assert.True(t, errors.Is(err, ErrInvalidVariant), "numPlayers=%d, err=%v", numPlayers, err)
	}
}

func TestNewBoard(t *testing.T) {
	for _, variant := range allVariants {
		b := NewBoard(variant)
		assert.Equal(t, 0, b.MoveNumber)
		assert.Equal(t, PlayerFirst, b.NextPlayer)
		assert.Equal(t, PlayerInvalid, b.Winner())
		assert.False(t, b.IsFinished())
		assert.Equal(t, PiecesPerPlayer*variant.NumPlayers(), b.NumPiecesOnBoard())

		snapshot := b.Snapshot()
		for player := range PlayerNum(variant.NumPlayers()) {
			home := b.Home(player)
			assert.Equal(t, home.Opposite(), b.Target(player))
			assert.Equal(t, home.Cells(), snapshot.PlayerPositions(player), "variant %s, player %s", variant, player)
			assert.Equal(t, uint8(PiecesPerPlayer), b.Derived.PiecesInHome[player])
			assert.Equal(t, uint8(0), b.Derived.PiecesInTarget[player])
		}
		assert.NotEmpty(t, b.Derived.Moves)
	}
}

func TestOccupant(t *testing.T) {
	b := NewBoard(TwoPlayers)
	player, err := b.Occupant(North.Tip())
	require.NoError(t, err)
	assert.Equal(t, PlayerSecond, player)

	player, err = b.Occupant(South.Tip())
	require.NoError(t, err)
	assert.Equal(t, PlayerFirst, player)

	player, err = b.Occupant(Pos{0, 0})
	require.NoError(t, err)
	assert.Equal(t, PlayerInvalid, player)

	_, err = b.Occupant(Pos{8, 8})
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	assert.Equal(t, CellOffBoard, b.At(Pos{8, 8}))
	assert.False(t, b.IsValid(Pos{8, 8}))
}

func TestInitialMoves(t *testing.T) {
	b := NewBoard(TwoPlayers)
	moves := b.Derived.Moves

	// 4 pieces in the front row have 2 steps each, and the 3 pieces in the second row
	// can jump over the front row in 2 directions each.
	require.Len(t, moves, 14)
	var steps, jumps int
	for _, move := range moves {
		owner, err := b.Occupant(move.From)
		require.NoError(t, err)
		assert.Equal(t, PlayerFirst, owner)
		if move.Jump {
			jumps++
			assert.Equal(t, 1, move.NumHops())
		} else {
			steps++
		}
		assert.NoError(t, b.CheckMovePath(move), "move %s", move)
	}
	assert.Equal(t, 8, steps)
	assert.Equal(t, 6, jumps)

	// Ordered by piece, then direction.
	assert.Equal(t, Move{Piece: 0, From: Pos{-4, 5}, Path: []Pos{{-3, 4}}}, moves[0])
	assert.Equal(t, Move{Piece: 0, From: Pos{-4, 5}, Path: []Pos{{-4, 4}}}, moves[1])

	// Idempotent.
	assert.Equal(t, moves, b.ValidMoves(PlayerFirst))
}

func TestJumpChain(t *testing.T) {
	// Piece A can jump over B and then over C.
	b := BuildBoard(TwoPlayers, PlayerFirst, []PieceOnBoard{
		{Pos{0, 0}, PlayerFirst},
		{Pos{1, 0}, PlayerSecond},
		{Pos{3, 0}, PlayerSecond},
	})
	want := []Move{
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{1, -1}}},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{0, 1}}},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{-1, 1}}},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{-1, 0}}},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{0, -1}}},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, 0}}, Jump: true},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, 0}, {4, 0}}, Jump: true},
	}
	assert.Equal(t, want, b.Derived.Moves)
	assert.Equal(t, 2, b.Derived.NumJumps)

	// Taking the full chain.
	newB := b.Act(want[6])
	assert.Equal(t, Pos{4, 0}, newB.Pieces(PlayerFirst)[0])
	assert.False(t, newB.HasPiece(Pos{0, 0}))
	assert.False(t, newB.HasPiece(Pos{2, 0}))
	assert.Equal(t, PlayerSecond, newB.NextPlayer)
	assert.Equal(t, 1, newB.MoveNumber)

	// Original board is unchanged.
	assert.Equal(t, Pos{0, 0}, b.Pieces(PlayerFirst)[0])
	assert.Equal(t, 0, b.MoveNumber)
}

func TestJumpCycle(t *testing.T) {
	// Pieces around allow a cycle of jumps back to the origin: the search must
	// terminate, and each destination is listed only once, with its shortest chain.
	b := BuildBoard(TwoPlayers, PlayerFirst, []PieceOnBoard{
		{Pos{0, 0}, PlayerFirst},
		{Pos{1, 0}, PlayerSecond},
		{Pos{2, -1}, PlayerSecond},
		{Pos{1, -1}, PlayerSecond},
	})
	var jumps []Move
	destinations := generics.MakeSet[Pos]()
	for _, move := range b.Derived.Moves {
		assert.False(t, destinations.Has(move.Dest()), "destination %s listed twice", move.Dest())
		destinations.Insert(move.Dest())
		if move.Jump {
			jumps = append(jumps, move)
		}
	}
	assert.Len(t, b.Derived.Moves, 6)
	assert.Equal(t, []Move{
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, -2}}, Jump: true},
		{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, 0}}, Jump: true},
	}, jumps)

	// Longer chains to a listed destination are valid too, and map to the listed move.
	longer := Move{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, 0}, {2, -2}}, Jump: true}
	assert.True(t, b.IsValidMove(longer))
	assert.Equal(t, b.FindMove(jumps[0]), b.FindMove(longer))
	assert.Equal(t, b.Act(jumps[0]).Snapshot(), b.Act(longer).Snapshot())
	assert.False(t, b.IsValidMove(Move{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, 0}, {2, -2}, {2, 0}}, Jump: true}))
	assert.False(t, b.IsValidMove(Move{Piece: 0, From: Pos{0, 0}, Path: []Pos{{2, -2}, {0, 0}}, Jump: true}))
	assert.False(t, b.IsValidMove(Move{Piece: 1, From: Pos{0, 0}, Path: []Pos{{2, 0}, {2, -2}}, Jump: true}))
}

func TestCheckMovePath(t *testing.T) {
	b := BuildBoard(TwoPlayers, PlayerFirst, []PieceOnBoard{
		{Pos{0, 0}, PlayerFirst},
		{Pos{1, 0}, PlayerSecond},
		{Pos{3, 0}, PlayerSecond},
	})
	assert.NoError(t, b.CheckMovePath(Move{From: Pos{0, 0}, Path: []Pos{{2, 0}, {4, 0}}, Jump: true}))
	for _, move := range []Move{
		{From: Pos{0, 0}, Path: []Pos{{2, 0}}},                             // Step too long.
		{From: Pos{0, 0}, Path: []Pos{{1, 0}}},                             // Occupied.
		{From: Pos{0, 0}, Path: []Pos{{0, 2}}, Jump: true},                 // Nothing to jump over.
		{From: Pos{0, 0}, Path: []Pos{{2, 0}, {3, 1}}, Jump: true},         // Not along a line.
		{From: Pos{0, 0}, Path: []Pos{{2, 0}, {0, 0}}, Jump: true},         // Back to the origin.
		{From: Pos{0, 0}, Path: []Pos{{2, 0}, {4, 0}, {2, 0}}, Jump: true}, // Lands twice on (2,0).
		{From: Pos{-1, 0}, Path: []Pos{{-1, 1}}},                           // No piece at origin.
		{From: Pos{0, 0}},                                                  // No destination.
	} {
		err := b.CheckMovePath(move)
		assert.True(t, errors.Is(err, ErrIllegalMove), "move %s: %v", move, err)
	}
	err := b.CheckMovePath(Move{From: Pos{0, 0}, Path: []Pos{{-9, 0}}})
	assert.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)
}

func TestWin(t *testing.T) {
	// First player has all but one piece in the north corner.
	layout := FillCornerExcept(North, PlayerFirst, Pos{1, -5})
	layout = append(layout, PieceOnBoard{Pos{0, -4}, PlayerFirst})
	for q := int8(-4); q <= 4; q++ {
		layout = append(layout, PieceOnBoard{Pos{q, 0}, PlayerSecond})
	}
	layout = append(layout, PieceOnBoard{Pos{0, 1}, PlayerSecond})
	b := BuildBoard(TwoPlayers, PlayerFirst, layout)
	assert.Equal(t, uint8(9), b.Derived.PiecesInTarget[PlayerFirst])

	winningMove := Move{Piece: 9, From: Pos{0, -4}, Path: []Pos{{1, -5}}}
	require.True(t, b.IsValidMove(winningMove))
	b = b.Act(winningMove)
	assert.True(t, b.IsFinished())
	assert.Equal(t, PlayerFirst, b.Winner())
	assert.Equal(t, PlayerFirst, b.NextPlayer, "player should be frozen on the winner")
	assert.Equal(t, 1, b.MoveNumber)
	assert.Empty(t, b.Derived.Moves)
	assert.False(t, b.MustPass())
	assert.Equal(t, uint8(10), b.Derived.PiecesInTarget[PlayerFirst])
	assert.Contains(t, b.FinishReason(), "First")
}

func TestPass(t *testing.T) {
	// First player's only piece is blocked at the tip of the north corner.
	b := BuildBoard(TwoPlayers, PlayerFirst, []PieceOnBoard{
		{North.Tip(), PlayerFirst},
		{Pos{4, -7}, PlayerSecond},
		{Pos{3, -7}, PlayerSecond},
		{Pos{4, -6}, PlayerSecond},
		{Pos{2, -6}, PlayerSecond},
	})
	require.True(t, b.MustPass())
	assert.Equal(t, 0, b.NumMoves())

	b = b.Act(PassMove)
	assert.Equal(t, PlayerSecond, b.NextPlayer)
	assert.Equal(t, 0, b.MoveNumber)
	assert.Equal(t, 1, b.ConsecutivePasses)
	assert.False(t, b.IsStalled())
	assert.False(t, b.MustPass())

	b = b.Act(b.Derived.Moves[0])
	assert.Equal(t, 0, b.ConsecutivePasses)
	assert.Equal(t, 1, b.MoveNumber)
}

func TestTurnRotation(t *testing.T) {
	for _, variant := range allVariants {
		b := NewBoard(variant)
		for turn := range 2 * variant.NumPlayers() {
			assert.Equal(t, PlayerNum(turn%variant.NumPlayers()), b.NextPlayer, "variant %s, turn %d", variant, turn)
			assert.Equal(t, turn, b.MoveNumber)
			require.NotEmpty(t, b.Derived.Moves)
			b = b.Act(b.Derived.Moves[0])
			assert.Equal(t, PiecesPerPlayer*variant.NumPlayers(), b.NumPiecesOnBoard())
		}
	}
}

func TestSnapshot(t *testing.T) {
	b := NewBoard(TwoPlayers)
	snapshot := b.Snapshot()
	lines := strings.Split(snapshot.String(), "\n")
	require.Len(t, lines, BoardLength+1) // Last line is empty.
	assert.Equal(t, strings.Repeat(" ", 16)+"2", lines[0])
	assert.Equal(t, strings.Repeat(" ", 4)+strings.Repeat(". ", 12)+".", lines[4])
	assert.Equal(t, strings.Repeat(" ", 16)+"1", lines[BoardLength-1])

	// Changing the snapshot doesn't change the board.
	snapshot[BoardRadius][BoardRadius] = PlayerCell(PlayerSecond)
	assert.Equal(t, CellEmpty, b.At(Pos{0, 0}))

	// Round trip.
	for _, variant := range allVariants {
		b = NewBoard(variant)
		for range 5 {
			b = b.Act(b.Derived.Moves[len(b.Derived.Moves)-1])
		}
		text := b.Snapshot().String()
		parsed, err := ParseSnapshot(text)
		require.NoError(t, err)
		assert.Equal(t, b.Snapshot(), parsed, "variant %s:\n%s", variant, text)
	}

	// Missing cells.
	_, err := ParseSnapshot(strings.Join(lines[:10], "\n"))
	assert.Error(t, err)
	_, err = ParseSnapshot("x")
	assert.Error(t, err)
}

func TestBuildBoardFromText(t *testing.T) {
	text := NewBoard(ThreePlayers).Snapshot().String()
	b := BuildBoardFromText(ThreePlayers, PlayerFirst, text)
	assert.Equal(t, NewBoard(ThreePlayers).Snapshot(), b.Snapshot())
	assert.Equal(t, NewBoard(ThreePlayers).Derived.Moves, b.Derived.Moves)
}

func TestTakeAllMoves(t *testing.T) {
	b := NewBoard(ThreePlayers)
	boards := b.TakeAllMoves()
	require.Len(t, boards, b.NumMoves())
	for ii, move := range b.Derived.Moves {
		assert.Equal(t, b.Act(move).Snapshot(), boards[ii].Snapshot(), "move %s", move)
		assert.Equal(t, PlayerSecond, boards[ii].NextPlayer)
	}
	assert.Same(t, boards[0], b.TakeAllMoves()[0])
	b.ClearNextBoardsCache()
	assert.NotSame(t, boards[0], b.TakeAllMoves()[0])
}

func TestPlanes(t *testing.T) {
	b := NewBoard(FourPlayers)
	planes := b.Planes()
	var sums [NumPlanes]float32
	for channel := range NumPlanes {
		for q := range BoardLength {
			for r := range BoardLength {
				sums[channel] += planes[channel][q][r]
			}
		}
	}
	assert.Equal(t, [NumPlanes]float32{10, 30, NumCells}, sums)
	tip := South.Tip()
	assert.Equal(t, float32(1), planes[0][int(tip.Q())+BoardRadius][int(tip.R())+BoardRadius])
}

func TestMatchEncoding(t *testing.T) {
	b := NewBoard(TwoPlayers)
	var moves []Move
	for range 12 {
		move := b.Derived.Moves[len(b.Derived.Moves)/2]
		moves = append(moves, move)
		b = b.Act(move)
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeMatch(gob.NewEncoder(&buf), TwoPlayers, moves))
	record, err := LoadMatch(gob.NewDecoder(&buf))
	require.NoError(t, err)
	assert.Equal(t, TwoPlayers, record.Variant)
	assert.Len(t, record.Moves, len(moves))

	boards, err := ReplayMatch(record.Variant, record.Moves)
	require.NoError(t, err)
	require.Len(t, boards, len(moves)+1)
	assert.Equal(t, b.Snapshot(), boards[len(boards)-1].Snapshot())
	assert.Equal(t, b.MoveNumber, boards[len(boards)-1].MoveNumber)

	// Tampered moves are rejected.
	moves[3].Path = []Pos{{0, 0}}
	_, err = ReplayMatch(TwoPlayers, moves)
	assert.True(t, errors.Is(err, ErrIllegalMove), "got %v", err)

	// Passing with moves available is rejected.
	_, err = ReplayMatch(TwoPlayers, []Move{PassMove})
	assert.True(t, errors.Is(err, ErrIllegalMove), "got %v", err)
}

func BenchmarkValidMoves(b *testing.B) {
	board := NewBoard(SixPlayers)
	for range 30 {
		board = board.Act(board.Derived.Moves[len(board.Derived.Moves)-1])
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		board.ValidMoves(board.NextPlayer)
	}
}
