// Package cli implements a command-line UI for the game.
package cli

import (
	"bufio"
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/sternhalmaGo/internal/engine"
	. "github.com/janpfeifer/sternhalmaGo/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/term"
	"io"
	"k8s.io/klog/v2"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len([]rune(ansiFilter.ReplaceAllString(s, "")))
}

// terminalWidth returns the width of the terminal, or 0 if the output is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func (ui *UI) printCentered(block string) {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	blockWidth := 0
	for _, line := range lines {
		blockWidth = max(blockWidth, displayWidth(line))
	}
	indent := max((terminalWidth(ui.writer)-blockWidth)/2, 0)
	for _, line := range lines {
		if len(line) == 0 {
			ui.println()
			continue
		}
		ui.printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}

// UI reads moves from a human player and prints boards.
type UI struct {
	color, clearScreen bool
	reader             *bufio.Reader
	writer             io.Writer
}

var (
	moveParser  = regexp.MustCompile(`^\s*(-?\d+)[\s,]+(-?\d+)[\s,]+(-?\d+)[\s,]+(-?\d+)[\s,]*$`)
	indexParser = regexp.MustCompile(`^\s*#?(\d+)\s*$`)

	// ErrTooManyParsingErrors is returned by ReadMove if the user failed to input a valid move a few times in a row.
	ErrTooManyParsingErrors = errors.New("failed to read command 3 times")
)

// New creates a UI that reads from the standard input and prints to the standard output.
func New(color bool, clearScreen bool) *UI {
	return NewWithIO(os.Stdin, os.Stdout, color, clearScreen)
}

// NewWithIO creates a UI that reads commands from r and prints to w.
func NewWithIO(r io.Reader, w io.Writer, color bool, clearScreen bool) *UI {
	return &UI{
		color:       color,
		clearScreen: clearScreen,
		reader:      bufio.NewReader(r),
		writer:      w,
	}
}

func (ui *UI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(ui.writer, format, args...)
}

func (ui *UI) println(args ...any) {
	_, _ = fmt.Fprintln(ui.writer, args...)
}

// playerColors are the background colors (ANSI 16 colors palette) of each player.
var playerColors = [MaxPlayers]lipgloss.Color{"1", "2", "4", "3", "5", "6"}

// playerStyle returns the style used to display the player's pieces and name.
func (ui *UI) playerStyle(player PlayerNum) lipgloss.Style {
	style := lipgloss.NewStyle()
	if !ui.color || player >= PlayerNum(MaxPlayers) {
		return style
	}
	return style.Bold(true).Foreground(lipgloss.Color("0")).Background(playerColors[player])
}

// PlayerName returns the name of the player, colored if color is enabled.
func (ui *UI) PlayerName(player PlayerNum) string {
	return ui.playerStyle(player).Render(player.String() + " Player")
}

// CheckNoAvailableMove passes the turn if the current player has no moves available.
// It returns true if the player passed.
func (ui *UI) CheckNoAvailableMove(game *engine.Game) (bool, error) {
	board := game.CurrentBoard()
	if board.IsFinished() || !board.MustPass() {
		return false, nil
	}

	// Nothing to play, pass.
	ui.println()
	ui.printf("%s has no available moves, passing.\n\n", ui.PlayerName(board.NextPlayer))
	return true, game.Pass()
}

// RunNextMove reads the move of a human player and applies it to the game.
// Invalid moves are reported and the user is asked again.
func (ui *UI) RunNextMove(game *engine.Game) error {
	for {
		ui.Print(game.CurrentBoard(), true)
		ui.println()
		move, err := ui.ReadMove(game.CurrentBoard())
		if errors.Is(err, ErrTooManyParsingErrors) {
			continue
		}
		if err != nil {
			return errors.WithMessage(err, "failed to read move")
		}
		if move.IsPass() {
			err = game.Pass()
		} else {
			err = game.ApplyMove(move)
		}
		if errors.Is(err, engine.ErrIllegalMove) || errors.Is(err, engine.ErrOutOfBounds) {
			ui.printf("    * %v\n", err)
			continue
		}
		return err
	}
}

// Run the game until it is finished or stalled, with all players reading their moves from the UI.
func (ui *UI) Run(game *engine.Game) error {
	for !game.IsFinished() && !game.IsStalled() {
		if passed, err := ui.CheckNoAvailableMove(game); err != nil {
			return err
		} else if passed {
			continue
		}
		if err := ui.RunNextMove(game); err != nil {
			return err
		}
	}
	ui.Print(game.CurrentBoard(), false)
	ui.PrintWinner(game.CurrentBoard())
	return nil
}

// PrintWinner prints the result of the match.
func (ui *UI) PrintWinner(b *Board) {
	winner := b.Winner()
	ui.println()
	if winner == PlayerInvalid {
		reason := "no one reached their target corner"
		if b.IsStalled() {
			reason = "no player can move"
		}
		style := lipgloss.NewStyle()
		if ui.color {
			style = style.Background(lipgloss.Color("13")).Foreground(lipgloss.Color("0")).Padding(1, 2)
		}
		ui.printCentered(style.Render(fmt.Sprintf("*** UNFINISHED MATCH: %s! ***", reason)))
	} else {
		ui.printCentered(ui.playerStyle(winner).Padding(0, 1).Render(
			fmt.Sprintf("*** %s PLAYER WINS!! Congratulations! ***", strings.ToUpper(winner.String()))))
		ui.printf("    %s\n", b.FinishReason())
	}
	ui.println()
}

// ReadMove reads a move from the user for the board. It accepts the origin and destination positions
// ("q r q r"), the index of one of the listed moves, or "pass" when there are no moves available.
// The returned move is always one of the moves in board.Derived.Moves (or PassMove).
func (ui *UI) ReadMove(b *Board) (move Move, err error) {
	for numErrs := 0; numErrs < 3; numErrs++ {
		ui.printf("    %s move > ", ui.PlayerName(b.NextPlayer))
		var text string
		text, err = ui.reader.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			return
		}
		err = nil
		var parseErr error
		move, parseErr = ParseMove(b, text)
		if parseErr == nil {
			return
		}
		ui.printf("    * %v, please try again.\n", parseErr)
	}
	err = ErrTooManyParsingErrors
	return
}

// ParseMove parses the text input by the user as a move for the board.
// See UI.ReadMove for the accepted formats.
func ParseMove(b *Board, text string) (Move, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "pass" {
		if !b.MustPass() {
			return PassMove, errors.Wrapf(ErrIllegalMove, "%s can only pass if there are no moves available", b.NextPlayer)
		}
		return PassMove, nil
	}
	if matches := indexParser.FindStringSubmatch(text); len(matches) == 2 {
		idx, err := strconv.Atoi(matches[1])
		if err != nil || idx >= b.NumMoves() {
			return PassMove, errors.Wrapf(ErrIllegalMove, "move index %q is not one of the %d listed moves", matches[1], b.NumMoves())
		}
		return b.Derived.Moves[idx], nil
	}
	matches := moveParser.FindStringSubmatch(text)
	if len(matches) != 5 {
		return PassMove, errors.Errorf("failed to parse your input %q", text)
	}
	var coords [4]int8
	for ii := range coords {
		i64, err := strconv.ParseInt(matches[1+ii], 10, 8)
		if err != nil {
			return PassMove, errors.Wrapf(ErrOutOfBounds, "failed to parse coordinate %q", matches[1+ii])
		}
		coords[ii] = int8(i64)
	}
	from, to := Pos{coords[0], coords[1]}, Pos{coords[2], coords[3]}
	for _, pos := range []Pos{from, to} {
		if !pos.Valid() {
			return PassMove, errors.Wrapf(ErrOutOfBounds, "position %s is not on the board", pos)
		}
	}
	for _, move := range b.Derived.Moves {
		if move.From == from && move.Dest() == to {
			return move, nil
		}
	}
	return PassMove, errors.Wrapf(ErrIllegalMove, "%s can't move from %s to %s", b.NextPlayer, from, to)
}

// Print the board, and optionally the moves available.
func (ui *UI) Print(board *Board, includeAvailableMoves bool) {
	if board.Derived == nil {
		klog.Fatalf("Called UI.Print(board), with board without Derived set.")
	}
	if ui.clearScreen {
		ui.printf("\033c")
	}
	ui.printf("\n%s\n\n", lipgloss.NewStyle().Bold(ui.color).Render(fmt.Sprintf("Move #%d", board.MoveNumber)))
	ui.PrintBoard(board)
	ui.println()
	ui.PrintProgress(board)

	if board.IsFinished() {
		return
	}
	if includeAvailableMoves {
		ui.println()
		ui.printf("%s turn to play\n", ui.PlayerName(board.NextPlayer))
		ui.PrintMoves(board)
	} else {
		ui.printf("\tTurn to play: %s\n", ui.PlayerName(board.NextPlayer))
	}
}

// PrintBoard prints the star shaped board, with the row (R) coordinate on the left, and the range
// of the Q coordinate of the row on the right.
func (ui *UI) PrintBoard(board *Board) {
	snapshot := board.Snapshot()
	var sb strings.Builder
	numColumns := 4*BoardRadius + 1
	for row := range BoardLength {
		var line strings.Builder
		minQ, maxQ := int8(BoardRadius+1), int8(-BoardRadius-1)
		for col := range numColumns {
			pos, ok := FromDisplayPos(col, row)
			if !ok || !pos.Valid() {
				line.WriteByte(' ')
				continue
			}
			minQ, maxQ = min(minQ, pos.Q()), max(maxQ, pos.Q())
			cell := snapshot.At(pos)
			if cell.IsEmpty() {
				line.WriteString("·")
				continue
			}
			player := cell.Player()
			line.WriteString(ui.playerStyle(player).Render(strconv.Itoa(int(player) + 1)))
		}
		r := row - BoardRadius
		sb.WriteString(fmt.Sprintf("r=%3d %s   q=%d..%d\n", r, padRight(line.String(), numColumns), minQ, maxQ))
	}
	ui.printCentered(sb.String())
}

// padRight pads s with spaces, up to the given display width.
func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-displayWidth(s), 0))
}

// PrintProgress prints how many pieces of each player are in their target corner.
func (ui *UI) PrintProgress(board *Board) {
	for player := range PlayerNum(board.NumPlayers()) {
		ui.printf("%s: home %-9s target %-9s in target %2d/%d, distance to target %3d\n",
			ui.PlayerName(player), board.Home(player), board.Target(player),
			board.Derived.PiecesInTarget[player], PiecesPerPlayer, board.Derived.DistanceToTarget[player])
	}
}

// PrintMoves prints the list of moves available, organized by piece.
func (ui *UI) PrintMoves(b *Board) {
	if b.MustPass() {
		ui.println("  - All your pieces are blocked, no movement is possible: type 'pass'.")
		return
	}
	ui.println("- Available moves:")
	for idx, move := range b.Derived.Moves {
		ui.printf("  [%3d] %s\n", idx, move)
	}
	example := b.Derived.Moves[0]
	ui.printf("    Example: to move the piece at %s to %s, type the origin and destination positions '%d %d %d %d', or the index '0'\n",
		example.From, example.Dest(), example.From.Q(), example.From.R(), example.Dest().Q(), example.Dest().R())
}
