// Package engine holds the Game, a match of Sternhalma (Chinese Checkers) in progress.
//
// It's a thin owner of the immutable state.Board of the match: each move creates a new board,
// which is only swapped in when it was successfully created, so a failed move never changes the game.
//
// A Game is meant to be used by one goroutine. The boards it returns (see Game.CurrentBoard) are
// immutable and can be shared with searchers running concurrently.
package engine

import (
	"github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"slices"
)

// Errors returned by the engine, see the state package for details.
// Use errors.Is to check for them, since they are usually wrapped with more context.
var (
	ErrOutOfBounds    = state.ErrOutOfBounds
	ErrIllegalMove    = state.ErrIllegalMove
	ErrGameOver       = state.ErrGameOver
	ErrInvalidVariant = state.ErrInvalidVariant
)

// DefaultMaxTurns is the number of turns after which front-ends give up on a match, reporting it as unfinished.
// The engine itself has no limit.
const DefaultMaxTurns = 1000

// Engine is the set of operations to play a match.
type Engine interface {
	// Player to move next. After the match is finished it stays on the winner.
	Player() state.PlayerNum

	// Winner of the match, or state.PlayerInvalid if not finished.
	Winner() state.PlayerNum

	// Turns is the number of moves applied so far (passes are not counted).
	Turns() int

	// Board returns a copy of the occupancy of the board.
	Board() state.Snapshot

	// AvailableMoves returns a copy of the valid moves of the current player. It may be empty,
	// in which case the player must Pass.
	AvailableMoves() []state.Move

	// ApplyMove for the current player. It must be equal to one of the AvailableMoves, or be another
	// chain of jumps of the same piece to the same destination.
	ApplyMove(move state.Move) error

	// Pass the turn: only allowed if the current player has no moves available.
	Pass() error

	// Variant of the match, defining the number of players.
	Variant() state.Variant

	// IsFinished returns whether a player has won.
	IsFinished() bool

	// History returns a copy of the moves taken so far, including passes.
	History() []state.Move
}

// Game implements Engine.
type Game struct {
	board   *state.Board
	history []state.Move

	// fromInitial is false for games created with NewFromBoard, which can't be saved.
	fromInitial bool
}

// Assert Game implements Engine.
var _ Engine = (*Game)(nil)

// New creates a new game for the given number of players (2, 3, 4 or 6), with the pieces of each
// player in their home corner.
func New(numPlayers int) (*Game, error) {
	variant, err := state.ParseVariant(numPlayers)
	if err != nil {
		return nil, err
	}
	return &Game{board: state.NewBoard(variant), fromInitial: true}, nil
}

// NewStandard creates a new 2-players game.
func NewStandard() *Game {
	return &Game{board: state.NewBoard(state.TwoPlayers), fromInitial: true}
}

// NewFromBoard creates a game starting at the given board, usually a contrived position.
// The history of the game starts empty, and the game can't be saved.
func NewFromBoard(board *state.Board) (*Game, error) {
	if board == nil {
		return nil, errors.New("engine.NewFromBoard() given a nil board")
	}
	if !board.Variant().Valid() {
		return nil, errors.Wrapf(ErrInvalidVariant, "board with variant %d", board.Variant())
	}
	if board.Derived == nil {
		board.BuildDerived()
	}
	return &Game{board: board}, nil
}

// Replay creates a game by replaying the given moves, validating each of them.
// Use state.LoadMatch to read the moves saved with Game.Save.
func Replay(variant state.Variant, moves []state.Move) (*Game, error) {
	boards, err := state.ReplayMatch(variant, moves)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to replay match")
	}
	return &Game{
		board:       boards[len(boards)-1],
		history:     slices.Clone(moves),
		fromInitial: true,
	}, nil
}

// Save the match so far, so it can be later reconstructed with state.LoadMatch and Replay.
// It returns an error for games created with NewFromBoard, since Replay always starts from the initial position.
func (g *Game) Save(enc state.Encoder) error {
	if !g.fromInitial {
		return errors.New("can't save a game not started from the initial position")
	}
	return state.EncodeMatch(enc, g.board.Variant(), g.history)
}

// CurrentBoard returns the current board. Boards are immutable, so it's safe to use it concurrently,
// but one shouldn't call methods that change it (like BuildDerived).
func (g *Game) CurrentBoard() *state.Board {
	return g.board
}

// Player implements Engine.
func (g *Game) Player() state.PlayerNum {
	return g.board.NextPlayer
}

// Winner implements Engine.
func (g *Game) Winner() state.PlayerNum {
	return g.board.Winner()
}

// Turns implements Engine.
func (g *Game) Turns() int {
	return g.board.MoveNumber
}

// Board implements Engine.
func (g *Game) Board() state.Snapshot {
	return g.board.Snapshot()
}

// AvailableMoves implements Engine.
func (g *Game) AvailableMoves() []state.Move {
	moves := make([]state.Move, len(g.board.Derived.Moves))
	for ii, move := range g.board.Derived.Moves {
		moves[ii] = move.Clone()
	}
	return moves
}

// Variant implements Engine.
func (g *Game) Variant() state.Variant {
	return g.board.Variant()
}

// IsFinished implements Engine.
func (g *Game) IsFinished() bool {
	return g.board.IsFinished()
}

// IsStalled returns whether all players passed in a row, in which case the match can't progress.
func (g *Game) IsStalled() bool {
	return g.board.IsStalled()
}

// History implements Engine.
func (g *Game) History() []state.Move {
	history := make([]state.Move, len(g.history))
	for ii, move := range g.history {
		history[ii] = move.Clone()
	}
	return history
}

// ApplyMove implements Engine.
//
// It returns ErrGameOver if the match is finished, ErrOutOfBounds if the move refers to cells outside
// the board, and ErrIllegalMove if it is not one of the AvailableMoves (or another chain of jumps of the
// same piece to the same destination). Passing is only done with Pass, so a state.PassMove is
// always illegal here.
func (g *Game) ApplyMove(move state.Move) error {
	if g.board.IsFinished() {
		return errors.Wrapf(ErrGameOver, "can't apply move %s, %s", move, g.board.FinishReason())
	}
	if move.IsPass() {
		return errors.Wrapf(ErrIllegalMove, "%s player can't apply a move without destination, use Pass", g.board.NextPlayer)
	}
	if err := g.board.CheckMovePath(move); err != nil {
		return errors.WithMessagef(err, "%s player can't play %s", g.board.NextPlayer, move)
	}
	moveIdx := g.board.FindMove(move)
	if moveIdx < 0 {
		owner, _ := g.board.Occupant(move.From)
		return errors.Wrapf(ErrIllegalMove, "%s not available to %s player (piece at origin belongs to %s)",
			move, g.board.NextPlayer, owner)
	}
	player := g.board.NextPlayer
	g.board = g.board.Act(move)
	g.history = append(g.history, move.Clone())
	if klog.V(2).Enabled() {
		klog.Infof("Turn %d: %s player played %s", g.board.MoveNumber, player, move)
	}
	if g.board.IsFinished() {
		klog.V(1).Infof("Match finished after %d turns: %s", g.board.MoveNumber, g.board.FinishReason())
	}
	return nil
}

// Pass implements Engine.
func (g *Game) Pass() error {
	if g.board.IsFinished() {
		return errors.Wrapf(ErrGameOver, "can't pass, %s", g.board.FinishReason())
	}
	if !g.board.MustPass() {
		return errors.Wrapf(ErrIllegalMove, "%s player can't pass, there are %d moves available",
			g.board.NextPlayer, g.board.NumMoves())
	}
	klog.V(2).Infof("Turn %d: %s player passed", g.board.MoveNumber, g.board.NextPlayer)
	g.board = g.board.ActPass()
	g.history = append(g.history, state.PassMove)
	return nil
}
