// Package ai (Artificial Intelligence) defines standard interfaces that AIs for the game
// have to implement.
//
// Scores are always given from the perspective of one player, since in matches with more than 2 players
// the value of a board for one player is not simply the negative of the value for the next one.
package ai

import (
	"github.com/chewxy/math32"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
)

// WinGameScore for the winning side. For the losing side it is -WinGameScore.
// We make these +1 and -1, so it's easy to put a tanh(x) on the output of the model to get a
// value from +1 to -1.
const WinGameScore = float32(1)

// SquashScore converts any score to a value between +WinGameScore and -WinGameScore
// by using then tanh(x) function -- a type of S curve.
func SquashScore(x float32) float32 {
	return math32.Tanh(x) * WinGameScore
}

// ValueScorer or aka. as a "value scorer" returns a score (value) for a given board, from the point of
// view of the given player.
//
// A value score represents how likely the player is to win: +1 represents a sure win,
// -1 a sure loss, and 0 even chances.
type ValueScorer interface {
	Score(board *Board, player PlayerNum) float32
	String() string
}

// BatchValueScorer is a ValueScorer that handles batches.
type BatchValueScorer interface {
	ValueScorer

	// BatchScore aggregate board scoring in batches, presumable more efficient.
	BatchScore(boards []*Board, player PlayerNum) []float32
}

// IsEndGameAndScore returns whether it's the end of the game, and the hard-coded score of a win/loss
// for the given player if it is finished.
//
// A stalled board (every player passed in a row) is also an end of game, scored 0 for everyone.
// If isEnd is false, the score should be ignored.
func IsEndGameAndScore(b *Board, player PlayerNum) (isEnd bool, score float32) {
	if b.IsFinished() {
		if b.Winner() == player {
			return true, WinGameScore
		}
		return true, -WinGameScore
	}
	if b.IsStalled() {
		return true, 0
	}
	return false, 0
}
