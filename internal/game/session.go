package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

type State string

const (
	StateSettingUp      State = "setting_up"
	StateAwaitingLocal  State = "awaiting_local_move"
	StateAwaitingRemote State = "awaiting_remote_move"
	StateApplying       State = "applying"
	StateCheckEnd       State = "check_end"
	StateEnded          State = "ended"
)

type Owner string

const (
	OwnerLocal  Owner = "local"
	OwnerRemote Owner = "remote"
)

var (
	ErrMissingLink    = errors.New("network session needs a connection")
	ErrUnexpectedLink = errors.New("local session cannot have a connection")
	ErrUnknownMode    = errors.New("unknown session mode")
	ErrAlreadyRun     = errors.New("session already ran")
)

// Deps are the collaborators a session talks to. Recorder is optional.
type Deps struct {
	Logger   *slog.Logger
	Input    CoordinateInput
	Display  Display
	Recorder resultRecorder
}

// Session runs one game from the first move to teardown.
type Session struct {
	logger   *slog.Logger
	display  Display
	recorder resultRecorder

	id      string
	mode    entity.Mode
	board   *entity.Board
	link    Link
	local   entity.Symbol
	remote  entity.Symbol
	owners  map[entity.Symbol]Owner
	sources map[entity.Symbol]MoveSource

	state State
	turn  entity.Symbol
}

// NewSession - builds a session for mode. Host plays X and moves first, Join plays O.
// Local mode alternates two local prompts and must not be given a link.
func NewSession(mode entity.Mode, link Link, deps Deps) (*Session, error) {
	that := &Session{
		display:  deps.Display,
		recorder: deps.Recorder,
		mode:     mode,
		board:    entity.NewBoard(),
		link:     link,
		state:    StateSettingUp,
		turn:     entity.X,
	}

	localSource := NewLocalSource(deps.Input)

	switch mode {
	case entity.ModeLocal:
		if link != nil {
			return nil, ErrUnexpectedLink
		}
		that.id = uuid.NewString()
		that.owners = map[entity.Symbol]Owner{entity.X: OwnerLocal, entity.O: OwnerLocal}
		that.sources = map[entity.Symbol]MoveSource{entity.X: localSource, entity.O: localSource}
	case entity.ModeHost, entity.ModeJoin:
		if link == nil {
			return nil, ErrMissingLink
		}
		that.id = link.Session()
		that.local, that.remote = entity.X, entity.O
		if mode == entity.ModeJoin {
			that.local, that.remote = entity.O, entity.X
		}
		that.owners = map[entity.Symbol]Owner{that.local: OwnerLocal, that.remote: OwnerRemote}
		that.sources = map[entity.Symbol]MoveSource{that.local: localSource, that.remote: NewRemoteSource(link)}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	that.logger = deps.Logger.With("component", "session", "session", that.id, "mode", string(mode))

	return that, nil
}

// Run - plays the game to the end. The connection is closed and the board reset
// on every exit path. A canceled ctx closes the connection, which ends a pending receive.
func (that *Session) Run(ctx context.Context) (*entity.Result, error) {
	if that.state != StateSettingUp {
		return nil, ErrAlreadyRun
	}

	defer that.teardown()

	if that.link != nil {
		stop := context.AfterFunc(ctx, func() {
			_ = that.link.Close()
		})
		defer stop()
	}

	result := &entity.Result{
		ID:        that.id,
		Mode:      that.mode,
		StartedAt: time.Now().UTC(),
	}

	if that.mode.IsNetwork() {
		that.display.Notify(fmt.Sprintf("You are '%s'. Game starting...", that.local))
	}
	that.display.ShowBoard(that.board)

	for {
		move, err := that.play()
		if err != nil {
			that.logger.Error("session ended with error", "state", string(that.state), "error", err)
			return nil, err
		}

		result.Moves = append(result.Moves, move)

		that.state = StateCheckEnd
		if that.board.CheckWin(move.Symbol) {
			result.Winner = move.Symbol
			break
		}

		if that.board.Moves() == entity.MaxMoves {
			result.Draw = true
			break
		}

		that.turn = that.turn.Opponent()
	}

	that.state = StateEnded
	result.FinishedAt = time.Now().UTC()

	that.display.AnnounceResult(result)
	that.logger.Info("session finished", "outcome", result.Outcome(), "moves", len(result.Moves))

	that.record(ctx, result)

	return result, nil
}

// play - obtains, applies and, for a local move in a network game, sends one move.
func (that *Session) play() (entity.Move, error) {
	owner := that.owners[that.turn]

	if owner == OwnerLocal {
		that.state = StateAwaitingLocal
	} else {
		that.state = StateAwaitingRemote
		that.display.Notify("Waiting for opponent's move...")
	}

	move, err := that.sources[that.turn].NextMove(that.board, that.turn)
	if err != nil {
		return entity.Move{}, fmt.Errorf("failed to get move for %s: %w", that.turn, err)
	}

	that.state = StateApplying
	that.board.Apply(move)
	that.display.ShowBoard(that.board)

	if owner == OwnerRemote {
		that.display.Notify("Opponent moved: " + move.String())
		return move, nil
	}

	if that.link != nil {
		if err = that.link.SendMove(move); err != nil {
			return entity.Move{}, fmt.Errorf("failed to send move: %w", err)
		}
	}

	return move, nil
}

func (that *Session) record(ctx context.Context, result *entity.Result) {
	if that.recorder == nil {
		return
	}

	// the result is already announced; history is best effort
	if err := that.recorder.Save(context.WithoutCancel(ctx), result); err != nil {
		that.logger.Warn("failed to record result", "error", err)
	}
}

func (that *Session) teardown() {
	that.state = StateEnded

	if that.link != nil {
		if err := that.link.Close(); err != nil {
			that.logger.Warn("failed to close connection", "error", err)
		}
	}

	that.board.Reset()
}

func (that *Session) ID() string {
	return that.id
}

func (that *Session) State() State {
	return that.state
}

func (that *Session) LocalSymbol() entity.Symbol {
	return that.local
}

func (that *Session) RemoteSymbol() entity.Symbol {
	return that.remote
}

// Board - the live board. It is reset once Run returns.
func (that *Session) Board() *entity.Board {
	return that.board
}
