package state

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Save versions: over time new fields may be added.
const (
	MatchVersionMoves = iota + 1
)

// MatchRecord is what is saved for a match: enough to replay it from the start.
type MatchRecord struct {
	Version int
	Variant Variant

	// Moves taken in order, including passes (PassMove).
	Moves []Move
}

// Encoder is any type of encoder -- implemented by gob.Encoder, json.Encoder
type Encoder interface {
	// Encode v or return an error.
	Encode(v any) error
}

// Decoder is any type of decoder -- implemented by gob.Decoder, json.Decoder
type Decoder interface {
	// Decode into v or return an error.
	Decode(v any) error
}

// EncodeMatch will "save" (encode) the match for future reconstruction.
func EncodeMatch(enc Encoder, variant Variant, moves []Move) error {
	record := MatchRecord{
		Version: MatchVersionMoves,
		Variant: variant,
		Moves:   moves,
	}
	if err := enc.Encode(&record); err != nil {
		return errors.Wrapf(err, "failed to encode match with %d moves", len(moves))
	}
	return nil
}

// LoadMatch restores a match saved with EncodeMatch. It doesn't validate the moves, see ReplayMatch.
func LoadMatch(dec Decoder) (record MatchRecord, err error) {
	if err = dec.Decode(&record); err != nil {
		err = errors.Wrap(err, "failed to decode match")
		return
	}
	if record.Version != MatchVersionMoves {
		err = errors.Errorf("unknown match file version %d", record.Version)
		return
	}
	if !record.Variant.Valid() {
		err = errors.Wrapf(ErrInvalidVariant, "loaded match has variant %d", record.Variant)
		return
	}
	klog.V(2).Infof("Loaded match: version=%d, variant=%s, %d moves", record.Version, record.Variant, len(record.Moves))
	return
}

// ReplayMatch plays the given moves from the initial board of the variant, and returns
// all the boards of the match: len(boards) == len(moves)+1.
//
// Each move is validated: passes are only accepted when the player had no moves.
func ReplayMatch(variant Variant, moves []Move) (boards []*Board, err error) {
	if !variant.Valid() {
		return nil, errors.Wrapf(ErrInvalidVariant, "replaying match with variant %d", variant)
	}
	board := NewBoard(variant)
	boards = make([]*Board, 0, len(moves)+1)
	boards = append(boards, board)
	for ii, move := range moves {
		if board.IsFinished() {
			return boards, errors.Wrapf(ErrGameOver, "move #%d (%s) after the match finished", ii, move)
		}
		if move.IsPass() {
			if !board.MustPass() {
				return boards, errors.Wrapf(ErrIllegalMove, "move #%d: %s passed but has %d moves available",
					ii, board.NextPlayer, board.NumMoves())
			}
		} else if !board.IsValidMove(move) {
			return boards, errors.Wrapf(ErrIllegalMove, "move #%d: %s is not valid for %s player", ii, move, board.NextPlayer)
		}
		board = board.Act(move)
		boards = append(boards, board)
	}
	return boards, nil
}
