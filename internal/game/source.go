package game

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// MoveSource produces the next move for symbol, or fails.
type MoveSource interface {
	NextMove(board *entity.Board, symbol entity.Symbol) (entity.Move, error)
}

// LocalSource asks the local player, re-prompting until the placement is valid.
type LocalSource struct {
	input CoordinateInput
}

func NewLocalSource(input CoordinateInput) *LocalSource {
	return &LocalSource{input: input}
}

func (that *LocalSource) NextMove(board *entity.Board, symbol entity.Symbol) (entity.Move, error) {
	prompt := Prompt{Symbol: symbol}

	for {
		row, col, err := that.input.NextCoordinatePair(prompt)
		if err != nil {
			return entity.Move{}, fmt.Errorf("%w: failed to read coordinates: %w", apperror.ErrInput, err)
		}

		if board.IsValidPlacement(row, col) {
			return entity.NewMove(row, col, symbol), nil
		}

		prompt.Retry = true
	}
}

// RemoteSource reads the opponent's move from the link. Remote moves are held to
// the same placement rules as local ones; a move that breaks them is never applied.
type RemoteSource struct {
	link Link
}

func NewRemoteSource(link Link) *RemoteSource {
	return &RemoteSource{link: link}
}

func (that *RemoteSource) NextMove(board *entity.Board, symbol entity.Symbol) (entity.Move, error) {
	move, err := that.link.ReceiveMove()
	if err != nil {
		return entity.Move{}, err
	}

	if move.Symbol != symbol {
		return entity.Move{}, fmt.Errorf("%w: opponent played %s out of turn, expected %s", apperror.ErrProtocol, move.Symbol, symbol)
	}

	if !board.IsValidPlacement(move.Row, move.Col) {
		return entity.Move{}, fmt.Errorf("%w: %w: opponent move %s", apperror.ErrProtocol, apperror.ErrInvalidPlacement, move)
	}

	return move, nil
}
