// sternhalma is an interactive terminal game of Sternhalma (Chinese Checkers), for 2, 3, 4 or 6 players,
// humans or AIs.
package main

import (
	"context"
	"encoding/gob"
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
	"k8s.io/klog/v2"
	"os"
	"time"
)

var (
	flagNumPlayers = flag.Int("players", 2, "Number of players: 2, 3, 4 or 6.")
	flagHotseat    = flag.Bool("hotseat", false, "Hotseat match: all players are humans.")
	flagWatch      = flag.Bool("watch", false, "Watch mode: all players are AIs.")
	flagAIConfig   = flag.String("config", "", "AI configuration of the AI players. "+
		"If empty it uses "+players.DefaultPlayerConfig)
	flagMaxTurns = flag.Int(
		"max_turns", engine.DefaultMaxTurns, "Max turns before the match is considered unfinished.")
	flagQuiet = flag.Bool("quiet", false, "Quiet mode for when watching AI play, only the moves and the last board position is printed.")
	flagSave  = flag.String("save", "", "File name where to save the match record, when it ends.")

	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagMaxTurns <= 0 {
		klog.Fatalf("Invalid --max_turns=%d", *flagMaxTurns)
	}
	if *flagHotseat && *flagWatch {
		klog.Fatalf("--hotseat and --watch cannot be used together")
	}

	// Capture Control+C
	var cancel func()
	globalCtx, cancel = spinning.SafeInterrupt(context.Background(), 3*time.Second)
	defer cancel()

	game, err := engine.New(*flagNumPlayers)
	if err != nil {
		klog.Exitf("Can't start match: %+v", err)
	}
	aiPlayers := must.M1(createPlayers(game.Variant()))
	ui := cli.New(true, false)
	must.M(playMatch(globalCtx, game, ui, aiPlayers))
	for _, aiPlayer := range aiPlayers {
		if aiPlayer != nil {
			aiPlayer.Finalize()
		}
	}

	ui.Print(game.CurrentBoard(), false)
	ui.PrintWinner(game.CurrentBoard())
	if *flagSave != "" {
		must.M(saveMatch(game, *flagSave))
	}
}

// createPlayers returns one entry per seat: nil for human players.
// Unless --hotseat or --watch are set, the human plays the first seat.
func createPlayers(variant state.Variant) (aiPlayers []players.Player, err error) {
	aiPlayers = make([]players.Player, variant.NumPlayers())
	if *flagHotseat {
		// All players are human, nothing to do.
		return
	}
	for seat := range aiPlayers {
		if seat == 0 && !*flagWatch {
			continue
		}
		aiPlayers[seat], err = players.New(*flagAIConfig)
		if err != nil {
			return nil, err
		}
	}
	return
}

// playMatch until it is finished, stalled, interrupted or it reaches --max_turns.
func playMatch(ctx context.Context, game *engine.Game, ui *cli.UI, aiPlayers []players.Player) error {
	for !game.IsFinished() && !game.IsStalled() {
		if ctx.Err() != nil {
			fmt.Printf("Interrupted: %s\n", ctx.Err())
			return nil
		}
		if game.Turns() >= *flagMaxTurns {
			fmt.Printf("Reached --max_turns=%d, the match is unfinished.\n", *flagMaxTurns)
			return nil
		}
		if passed, err := ui.CheckNoAvailableMove(game); err != nil {
			return err
		} else if passed {
			continue
		}
		aiPlayer := aiPlayers[game.Player()]
		if aiPlayer == nil {
			if err := ui.RunNextMove(game); err != nil {
				return err
			}
			continue
		}

		// AI plays.
		board := game.CurrentBoard()
		if *flagWatch && !*flagQuiet {
			ui.Print(board, false)
			fmt.Printf("\tAI (%s) move: ", aiPlayer)
		} else {
			fmt.Printf("%s (AI): ", ui.PlayerName(board.NextPlayer))
		}
		s := spinning.New(ctx)
		move, _, score := aiPlayer.Play(board)
		s.Done()
		fmt.Printf(" %s (score=%.3f)\n", move, score)
		if move.IsPass() {
			if err := game.Pass(); err != nil {
				return errors.WithMessagef(err, "AI %s passed its turn", aiPlayer)
			}
		} else if err := game.ApplyMove(move); err != nil {
			return errors.WithMessagef(err, "AI %s played an invalid move", aiPlayer)
		}
	}
	return nil
}

// saveMatch record to fileName, using gob encoding.
func saveMatch(game *engine.Game, fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create match file %q", fileName)
	}
	if err = game.Save(gob.NewEncoder(f)); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close match file %q", fileName)
	}
	klog.V(1).Infof("Match saved to %q", fileName)
	return nil
}
