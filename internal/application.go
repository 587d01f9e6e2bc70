package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/config"
	"github.com/rocketscienceinc/tictactoe-duel/internal/console"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/game"
	"github.com/rocketscienceinc/tictactoe-duel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-duel/internal/repository/storage"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs one game on the terminal.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	defer close(done)

	go watchSignal(ctx, log, stop, done)

	return run(ctx, logger, conf, os.Stdin, os.Stdout)
}

// watchSignal - logs a signal that canceled ctx and restores the default handling,
// so a second signal kills the process even when it is blocked on stdin.
// Nothing is logged when done closes first.
func watchSignal(ctx context.Context, log *slog.Logger, stop context.CancelFunc, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		select {
		case <-done:
			// ctx was canceled by the deferred stop after a normal return
			return
		default:
		}
		log.Info("Received signal, shutting down", "cause", context.Cause(ctx))
		stop()
	case <-done:
	}
}

func run(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app")
	term := console.New(in, out)

	results, closeHistory := openHistory(ctx, logger, conf)
	defer closeHistory()

	if results != nil {
		showHistory(ctx, log, term, results, conf.History.Limit)
	}

	err := play(ctx, logger, conf, term, results)
	if err != nil {
		log.Error("game ended with error", "category", apperror.Category(err), "error", err)
		term.ReportError(err)
		return err
	}

	return nil
}

func play(ctx context.Context, logger *slog.Logger, conf *config.Config, term *console.Console, results repository.ResultRepository) error {
	mode := entity.Mode(conf.Mode)
	if mode == "" {
		var err error
		if mode, err = term.ChooseMode(); err != nil {
			return err
		}
	}

	var link game.Link

	if mode.IsNetwork() {
		conn, err := connect(ctx, logger, conf, term, mode)
		if err != nil {
			return err
		}
		link = conn
	}

	deps := game.Deps{
		Logger:  logger,
		Input:   term,
		Display: term,
	}
	if results != nil {
		deps.Recorder = results
	}

	session, err := game.NewSession(mode, link, deps)
	if err != nil {
		if link != nil {
			_ = link.Close()
		}
		return fmt.Errorf("could not start session: %w", err)
	}

	_, err = session.Run(ctx)

	return err
}

func connect(ctx context.Context, logger *slog.Logger, conf *config.Config, term *console.Console, mode entity.Mode) (game.Link, error) {
	setup := game.NewSetup(logger, term, conf.Port, conf.ConnectTimeout, conf.HandshakeTimeout)

	if mode == entity.ModeHost {
		conn, err := setup.Host(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	address := conf.HostAddress
	if address == "" {
		var err error
		if address, err = term.AskHostAddress(); err != nil {
			return nil, err
		}
	}

	conn, err := setup.Join(ctx, address)
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// openHistory - connects the result history when it is enabled. A history that
// cannot be reached is logged and the game goes on without it.
func openHistory(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.ResultRepository, func()) {
	log := logger.With("component", "app", "method", "openHistory")

	if !conf.History.Enabled {
		return nil, func() {}
	}

	redisAddrString := conf.History.Redis.GetRedisAddr()
	if conf.History.Redis.Host == "" {
		log.Warn("history disabled", "error", ErrAddrNotFound)
		return nil, func() {}
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		log.Warn("history disabled", "error", err)
		return nil, func() {}
	}

	return repository.NewResultRepository(redisStorage.Connection), func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}
}

func showHistory(ctx context.Context, log *slog.Logger, term *console.Console, results repository.ResultRepository, limit int64) {
	recent, err := results.Recent(ctx, limit)
	if err != nil {
		log.Warn("could not read history", "error", err)
		return
	}

	term.ShowHistory(recent)
}
