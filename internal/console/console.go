// Package console is the terminal side of the game: it reads coordinates and
// menu choices and prints boards and announcements.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/game"
)

var ErrNoInput = errors.New("no more input")

type Console struct {
	scanner *bufio.Scanner

	mu  sync.Mutex
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// NextCoordinatePair - reads "row col" lines until one parses.
func (that *Console) NextCoordinatePair(prompt game.Prompt) (int, int, error) {
	label := fmt.Sprintf("Enter %s coordinates (row col): ", prompt.Symbol)
	if prompt.Retry {
		label = fmt.Sprintf("Enter valid %s coordinates (row col): ", prompt.Symbol)
	}

	for {
		that.print(label)

		line, err := that.readLine()
		if err != nil {
			return 0, 0, err
		}

		row, col, err := parseCoordinates(line)
		if err != nil {
			that.println(err.Error() + ". Try again.")
			continue
		}

		return row, col, nil
	}
}

func parseCoordinates(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, errors.New("expected two numbers, e.g. 0 1")
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad row %q", fields[0])
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad column %q", fields[1])
	}

	return row, col, nil
}

// ChooseMode - asks for local, host or join until the answer is understood.
func (that *Console) ChooseMode() (entity.Mode, error) {
	for {
		that.print("Choose: (l)ocal, (h)ost or (j)oin? ")

		line, err := that.readLine()
		if err != nil {
			return "", err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "l", "local":
			return entity.ModeLocal, nil
		case "h", "host":
			return entity.ModeHost, nil
		case "j", "join":
			return entity.ModeJoin, nil
		}
	}
}

// AskHostAddress - asks for the address of the host to join.
func (that *Console) AskHostAddress() (string, error) {
	for {
		that.print("Enter host IP to connect: ")

		line, err := that.readLine()
		if err != nil {
			return "", err
		}

		if address := strings.TrimSpace(line); address != "" {
			return address, nil
		}
	}
}

func (that *Console) ShowBoard(board *entity.Board) {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(board.String(), "\n"), "\n") {
		sb.WriteString("\t\t" + line + "\n")
	}

	that.print(sb.String())
}

func (that *Console) Notify(message string) {
	that.println(message)
}

func (that *Console) AnnounceResult(result *entity.Result) {
	if result.IsDraw() {
		that.println("Game Draw!!!")
		return
	}

	that.println(fmt.Sprintf("Player %s Wins !!!", result.Winner))
}

// ReportError - prints err with its category.
func (that *Console) ReportError(err error) {
	that.println(fmt.Sprintf("Game ended with %s error: %v", apperror.Category(err), err))
}

// ShowHistory - prints the tally of recent results.
func (that *Console) ShowHistory(results []*entity.Result) {
	wins := map[entity.Symbol]int{}
	draws := 0

	for _, result := range results {
		if result.IsDraw() {
			draws++
			continue
		}
		wins[result.Winner]++
	}

	that.println(fmt.Sprintf("Last %d games: X won %d, O won %d, %d draws", len(results), wins[entity.X], wins[entity.O], draws))
}

func (that *Console) readLine() (string, error) {
	if !that.scanner.Scan() {
		if err := that.scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", apperror.ErrInput, err)
		}
		return "", fmt.Errorf("%w: %w", apperror.ErrInput, ErrNoInput)
	}

	return that.scanner.Text(), nil
}

func (that *Console) print(text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = io.WriteString(that.out, text)
}

func (that *Console) println(text string) {
	that.print(text + "\n")
}
