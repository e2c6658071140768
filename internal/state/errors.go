package state

import "github.com/pkg/errors"

// Errors returned by the game. They are usually wrapped with more context, use errors.Is to check for them.
var (
	// ErrOutOfBounds is returned when a position is not one of the cells of the star.
	ErrOutOfBounds = errors.New("position out of the board")

	// ErrIllegalMove is returned when a move is not one of the valid moves of the current player.
	ErrIllegalMove = errors.New("illegal move")

	// ErrGameOver is returned when trying to change a match that is already finished.
	ErrGameOver = errors.New("game is over")

	// ErrInvalidVariant is returned when the number of players is not supported.
	ErrInvalidVariant = errors.New("invalid game variant")
)
