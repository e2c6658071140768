// compare plays matches between two AI configurations and reports how many matches each won.
//
// With more than 2 players, the seats alternate between the two AIs, and the first seat alternates
// from one match to the next.
package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/sternhalmaGo/internal/engine"
	"github.com/janpfeifer/sternhalmaGo/internal/players"
	_ "github.com/janpfeifer/sternhalmaGo/internal/players/default"
	"github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/janpfeifer/sternhalmaGo/internal/ui/cli"
	"github.com/janpfeifer/sternhalmaGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	flagPlayer1Config = flag.String("ai1", "", "1st AI configuration.")
	flagPlayer2Config = flag.String("ai2", "", "2nd AI configuration.")
	flagNumPlayers    = flag.Int("players", 2, "Number of players in each match: 2, 4 or 6. "+
		"Seats alternate between the two AIs.")
	flagNumMatches  = flag.Int("num_matches", 100, "Number of matches to play.")
	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and play "+
		"these many matches simultaneously.")
	flagSeed = flag.Int("seed", 0, "Seed for AIs configured with randomness: each match uses seed+match number, "+
		"so results can be reproduced.")
	flagPrintSteps = flag.Bool("print_steps", false, "Print board at each step. "+
		"Very verbose, and you probably want to set -parallelism=1.")
	flagMaxTurns = flag.Int(
		"max_turns", engine.DefaultMaxTurns, "Max turns before the match is considered unfinished.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *flagPlayer1Config == "" || *flagPlayer2Config == "" {
		klog.Fatal("You must configure both players to compare with flags -ai1 and -ai2")
	}
	if *flagNumPlayers%2 != 0 {
		klog.Fatalf("Invalid -players=%d: it must be 2, 4 or 6, so both AIs play the same number of seats", *flagNumPlayers)
	}
	variant := must.M1(state.ParseVariant(*flagNumPlayers))

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = spinning.SafeInterrupt(context.Background(), 5*time.Second)
	defer globalCancel()

	// Check that the configurations are valid before starting.
	must.M1(createAIPlayers(0))
	must.M(runMatches(globalCtx, variant))
}

// matchConfig returns the configuration of the AI for the given match, with the seed for the match.
func matchConfig(config string, matchIdx int) string {
	if config == "" {
		config = players.DefaultPlayerConfig
	}
	if strings.Contains(config, "seed=") {
		return config
	}
	return fmt.Sprintf("%s,seed=%d", config, *flagSeed+matchIdx)
}

// createAIPlayers for a match: each match has its own players, so their random number generators
// don't depend on how the matches are scheduled.
func createAIPlayers(matchIdx int) (aiPlayers [2]players.Player, err error) {
	for aiIdx, config := range [2]string{*flagPlayer1Config, *flagPlayer2Config} {
		config = matchConfig(config, matchIdx)
		klog.V(1).Infof("Creating AI-%d from %q", aiIdx+1, config)
		aiPlayers[aiIdx], err = players.New(config)
		if err != nil {
			err = errors.WithMessagef(err, "AI-%d", aiIdx+1)
			return
		}
	}
	return
}

// Results of the matches, shared by all the matches being played.
type Results struct {
	mu                   sync.Mutex
	start                time.Time
	winsAs1st, winsAs2nd [2]int
	unfinished           int
	turns                int
	played, total        int
}

func (r *Results) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Played %d of %d: ", r.played, r.total))
	for aiIdx := range 2 {
		parts = append(parts,
			fmt.Sprintf("AI-%d: %d Wins (1st seat: %d, other seats: %d) / ",
				aiIdx+1, r.winsAs1st[aiIdx]+r.winsAs2nd[aiIdx],
				r.winsAs1st[aiIdx], r.winsAs2nd[aiIdx]))
	}
	parts = append(parts, fmt.Sprintf("%d unfinished - ", r.unfinished))
	if r.played > 0 {
		parts = append(parts, fmt.Sprintf("%.1f turns/match - ", float64(r.turns)/float64(r.played)))
	}
	parts = append(parts, fmt.Sprintf("%s", time.Since(r.start)))
	parts = append(parts, "\033[0K")
	return strings.Join(parts, "")
}

// seatAI returns which AI (0 or 1) plays the seat in the given match.
func seatAI(matchIdx int, seat state.PlayerNum) int {
	return (matchIdx + int(seat)) % 2
}

func runMatches(ctx context.Context, variant state.Variant) error {
	r := &Results{
		start: time.Now(),
		total: *flagNumMatches,
	}
	var wg errgroup.Group
	wg.SetLimit(getParallelism())
	fmt.Printf("\r%s", r)

	for matchIdx := range r.total {
		wg.Go(func() error {
			aiPlayers, err := createAIPlayers(matchIdx)
			if err != nil {
				return err
			}
			defer func() {
				for _, aiPlayer := range aiPlayers {
					aiPlayer.Finalize()
				}
			}()
			game, err := runMatch(ctx, matchIdx, variant, aiPlayers)
			if err != nil || ctx.Err() != nil {
				return err
			}

			// Record winner.
			r.mu.Lock()
			defer r.mu.Unlock()
			if winner := game.Winner(); winner == state.PlayerInvalid {
				r.unfinished++
			} else {
				aiIdx := seatAI(matchIdx, winner)
				if winner == state.PlayerFirst {
					r.winsAs1st[aiIdx]++
				} else {
					r.winsAs2nd[aiIdx]++
				}
			}
			r.turns += game.Turns()
			r.played++
			fmt.Printf("\r%s", r)
			return nil
		})
	}
	err := wg.Wait()
	fmt.Printf("\r%s", r)
	fmt.Println()
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
		return nil
	}
	return err
}

var (
	stepUI   = cli.New(true, false)
	muStepUI sync.Mutex
)

// runMatch plays one match until it is finished, stalled, or reaches -max_turns.
func runMatch(ctx context.Context, matchIdx int, variant state.Variant, aiPlayers [2]players.Player) (*engine.Game, error) {
	if klog.V(1).Enabled() {
		klog.Infof("Starting match %d", matchIdx)
		defer klog.Infof("Finished match %d", matchIdx)
	}
	game, err := engine.New(variant.NumPlayers())
	if err != nil {
		return nil, err
	}
	matchName := fmt.Sprintf("Match-%05d", matchIdx)

	for !game.IsFinished() && !game.IsStalled() && game.Turns() < *flagMaxTurns {
		if ctx.Err() != nil {
			klog.V(1).Infof("%s interrupted: %s", matchName, ctx.Err())
			return game, nil
		}
		board := game.CurrentBoard()
		player := aiPlayers[seatAI(matchIdx, board.NextPlayer)]
		if klog.V(2).Enabled() {
			klog.Infof("%s: %s at turn %d (#valid moves=%d)", matchName, board.NextPlayer, game.Turns(), board.NumMoves())
		}
		move, nextBoard, _ := player.Play(board)
		if move.IsPass() {
			err = game.Pass()
		} else {
			err = game.ApplyMove(move)
		}
		if err != nil {
			return nil, errors.WithMessagef(err, "%s: AI-%d played an invalid move",
				matchName, seatAI(matchIdx, board.NextPlayer)+1)
		}
		if *flagPrintSteps {
			muStepUI.Lock()
			fmt.Printf("%s, turn #%d: %s played %s\n\n", matchName, game.Turns(), board.NextPlayer, move)
			stepUI.PrintBoard(nextBoard)
			fmt.Println()
			fmt.Println("------------------")
			muStepUI.Unlock()
		}
	}
	return game, nil
}

// getParallelism returns the parallelism.
func getParallelism() (parallelism int) {
	parallelism = runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	return
}
