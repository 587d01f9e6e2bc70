package game

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// Prompt tells the input collaborator whose coordinates are wanted.
type Prompt struct {
	Symbol entity.Symbol
	Retry  bool
}

// CoordinateInput supplies one coordinate pair per call, blocking until it has one.
type CoordinateInput interface {
	NextCoordinatePair(prompt Prompt) (int, int, error)
}

// Display receives everything the session wants a human to see.
type Display interface {
	ShowBoard(board *entity.Board)
	Notify(message string)
	AnnounceResult(result *entity.Result)
}

// Link is the session's view of an open connection to the opponent.
type Link interface {
	SendMove(move entity.Move) error
	ReceiveMove() (entity.Move, error)
	Session() string
	Close() error
}

type resultRecorder interface {
	Save(ctx context.Context, result *entity.Result) error
}
