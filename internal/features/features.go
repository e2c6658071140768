// Package features implements a shared set of board features, describing the race of a player towards its
// target corner compared to its opponents.
//
// These are meant to be used by different AI models.
package features

import (
	"fmt"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"k8s.io/klog/v2"
	"math"
	"strings"
)

// BoardId represent an enum of board features. Those are like "global" features for the game.
//
// Features prefixed with "Opponent" aggregate the values of all the other players: they take the value
// of the most threatening opponent.
type BoardId uint8

// FeatureSetter is the signature of a feature setter: it sets the feature for the given player.
// f is the slice where to store the results.
type FeatureSetter func(b *Board, player PlayerNum, def *BoardSpec, f []float32)

const (
	// IdPiecesInTarget is the number of pieces already in the target corner.
	IdPiecesInTarget BoardId = iota
	IdOpponentPiecesInTarget

	// IdDistanceToTarget is the average distance of the pieces to the tip of the target corner, beyond
	// what is needed to fill the corner. It is 0 when the target corner is filled.
	IdDistanceToTarget
	IdOpponentDistanceToTarget

	// IdStraggler is the distance of the piece furthest away from the tip of the target corner.
	IdStraggler
	IdOpponentStraggler

	// IdPiecesInHome is the number of pieces that haven't left the home corner yet.
	IdPiecesInHome
	IdOpponentPiecesInHome

	// IdMobility holds 2 values: the number of jump moves available and the best advance (towards
	// the tip of the target) of any move.
	IdMobility

	// IdNextOpponentMobility is the same as IdMobility for the player playing after.
	IdNextOpponentMobility

	// IdTargetBlocked is the number of cells of the target corner occupied by other players.
	IdTargetBlocked

	// IdNumFeatureIds defined -- this must always be the last enum.
	IdNumFeatureIds
)

// BoardSpec includes the board feature name, dimension and index in the concatenation of features.
type BoardSpec struct {
	Id   BoardId
	Name string
	Dim  int

	// VecIndex refers to the index in the concatenated feature vector.
	VecIndex int
	Setter   FeatureSetter
}

var (
	// BoardSpecs enumerates in order the features extracted by FeatureVector.
	// The Index attribute is properly set during the package initialization.
	// The  "Opp" prefix refers to the opponent version of the feature.
	BoardSpecs = [IdNumFeatureIds]BoardSpec{
		{IdPiecesInTarget, "PiecesInTarget", 1, 0, fPiecesInTarget},
		{IdOpponentPiecesInTarget, "OppPiecesInTarget", 1, 0, fPiecesInTarget},

		{IdDistanceToTarget, "DistanceToTarget", 1, 0, fDistanceToTarget},
		{IdOpponentDistanceToTarget, "OppDistanceToTarget", 1, 0, fDistanceToTarget},

		{IdStraggler, "Straggler", 1, 0, fStraggler},
		{IdOpponentStraggler, "OppStraggler", 1, 0, fStraggler},

		{IdPiecesInHome, "PiecesInHome", 1, 0, fPiecesInHome},
		{IdOpponentPiecesInHome, "OppPiecesInHome", 1, 0, fPiecesInHome},

		{IdMobility, "Mobility", 2, 0, fMobility},
		{IdNextOpponentMobility, "NextOppMobility", 2, 0, fMobility},

		{IdTargetBlocked, "TargetBlocked", 1, 0, fTargetBlocked},
	}

	// BoardFeaturesDim is the dimension of all board features concatenated, set during package
	// initialization.
	BoardFeaturesDim int

	// filledTargetDistance is the sum of the distances of all the cells of a corner to its tip: it is the
	// minimum DistanceToTarget a player can have.
	filledTargetDistance int
)

func init() {
	// Updates the indices of BoardSpecs, and sets BoardFeaturesDim.
	BoardFeaturesDim = 0
	for ii := range BoardSpecs {
		if BoardSpecs[ii].Id != BoardId(ii) {
			klog.Fatalf("features.BoardSpecs index %d for %s doesn't match constant.",
				ii, BoardSpecs[ii].Name)
		}
		BoardSpecs[ii].VecIndex = BoardFeaturesDim
		BoardFeaturesDim += BoardSpecs[ii].Dim
	}

	for _, pos := range North.Cells() {
		filledTargetDistance += pos.Distance(North.Tip())
	}
}

// FeatureVector calculates the feature vector, of length BoardFeaturesDim, for the given
// board, from the point of view of player.
func FeatureVector(b *Board, player PlayerNum) (f []float32) {
	if b.Derived == nil {
		b.BuildDerived()
	}
	f = make([]float32, BoardFeaturesDim)
	for ii := range BoardSpecs {
		featDef := &BoardSpecs[ii]
		featDef.Setter(b, player, featDef, f)
	}
	return
}

// PrettyPrintFeatures returns a multi-line description of the feature vector.
func PrettyPrintFeatures(f []float32) string {
	var sb strings.Builder
	for ii := range BoardSpecs {
		def := &BoardSpecs[ii]
		_, _ = fmt.Fprintf(&sb, "\t%s: ", def.Name)
		if def.Dim == 1 {
			_, _ = fmt.Fprintf(&sb, "%.2f", f[def.VecIndex])
		} else {
			_, _ = fmt.Fprintf(&sb, "%v", f[def.VecIndex:def.VecIndex+def.Dim])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// opponentsMax returns the max value of fn over the opponents of player.
func opponentsMax(b *Board, player PlayerNum, fn func(opponent PlayerNum) float32) float32 {
	result := float32(-math.MaxFloat32)
	for opponent := range PlayerNum(b.NumPlayers()) {
		if opponent == player {
			continue
		}
		result = max(result, fn(opponent))
	}
	return result
}

// opponentsMin returns the min value of fn over the opponents of player.
func opponentsMin(b *Board, player PlayerNum, fn func(opponent PlayerNum) float32) float32 {
	result := float32(math.MaxFloat32)
	for opponent := range PlayerNum(b.NumPlayers()) {
		if opponent == player {
			continue
		}
		result = min(result, fn(opponent))
	}
	return result
}

func fPiecesInTarget(b *Board, player PlayerNum, def *BoardSpec, f []float32) {
	count := func(p PlayerNum) float32 { return float32(b.Derived.PiecesInTarget[p]) }
	if def.Id == IdOpponentPiecesInTarget {
		f[def.VecIndex] = opponentsMax(b, player, count)
	} else {
		f[def.VecIndex] = count(player)
	}
}

func fDistanceToTarget(b *Board, player PlayerNum, def *BoardSpec, f []float32) {
	distance := func(p PlayerNum) float32 {
		return float32(b.Derived.DistanceToTarget[p]-filledTargetDistance) / PiecesPerPlayer
	}
	if def.Id == IdOpponentDistanceToTarget {
		f[def.VecIndex] = opponentsMin(b, player, distance)
	} else {
		f[def.VecIndex] = distance(player)
	}
}

func fStraggler(b *Board, player PlayerNum, def *BoardSpec, f []float32) {
	straggler := func(p PlayerNum) float32 {
		tip := b.Target(p).Tip()
		var maxDist int
		for _, pos := range b.Pieces(p) {
			if pos.Valid() {
				maxDist = max(maxDist, pos.Distance(tip))
			}
		}
		return float32(maxDist)
	}
	if def.Id == IdOpponentStraggler {
		f[def.VecIndex] = opponentsMin(b, player, straggler)
	} else {
		f[def.VecIndex] = straggler(player)
	}
}

func fPiecesInHome(b *Board, player PlayerNum, def *BoardSpec, f []float32) {
	count := func(p PlayerNum) float32 { return float32(b.Derived.PiecesInHome[p]) }
	if def.Id == IdOpponentPiecesInHome {
		f[def.VecIndex] = opponentsMin(b, player, count)
	} else {
		f[def.VecIndex] = count(player)
	}
}

// fMobility uses the cached moves if player is the next to play, otherwise it generates them.
func fMobility(b *Board, player PlayerNum, def *BoardSpec, f []float32) {
	if def.Id == IdNextOpponentMobility {
		player = b.PlayerAfter(player)
	}
	idx := def.VecIndex
	if player == b.NextPlayer {
		f[idx] = float32(b.Derived.NumJumps)
		f[idx+1] = float32(b.Derived.MaxAdvance)
		return
	}
	tip := b.Target(player).Tip()
	var numJumps, maxAdvance int
	for _, move := range b.ValidMoves(player) {
		if move.Jump {
			numJumps++
		}
		maxAdvance = max(maxAdvance, move.From.Distance(tip)-move.Dest().Distance(tip))
	}
	f[idx] = float32(numJumps)
	f[idx+1] = float32(maxAdvance)
}

func fTargetBlocked(b *Board, player PlayerNum, def *BoardSpec, f []float32) {
	var blocked int
	for _, pos := range b.Target(player).Cells() {
		if occupant := b.At(pos); occupant >= 0 && occupant.Player() != player {
			blocked++
		}
	}
	f[def.VecIndex] = float32(blocked)
}
