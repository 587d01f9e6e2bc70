package application

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/config"
)

// X takes the top row while O plays the middle one.
const xWinsTopRow = "0 0\n1 0\n0 1\n1 1\n0 2\n"

func testConfig(mode string) *config.Config {
	return &config.Config{
		LogLevel:         "debug",
		Mode:             mode,
		Port:             5000,
		ConnectTimeout:   time.Second,
		HandshakeTimeout: time.Second,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_Local(t *testing.T) {
	t.Run("Configured local mode plays to a win", func(t *testing.T) {
		// Given: local mode and a scripted terminal
		var out bytes.Buffer

		// When: running the app
		err := run(context.Background(), discardLogger(), testConfig("local"), strings.NewReader(xWinsTopRow), &out)

		// Then: the winner is announced
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Enter X coordinates (row col): ")
		assert.Contains(t, out.String(), "Enter O coordinates (row col): ")
		assert.Contains(t, out.String(), "Player X Wins !!!")
	})

	t.Run("Mode is asked when not configured", func(t *testing.T) {
		var out bytes.Buffer

		err := run(context.Background(), discardLogger(), testConfig(""), strings.NewReader("l\n"+xWinsTopRow), &out)

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Choose: (l)ocal, (h)ost or (j)oin? ")
		assert.Contains(t, out.String(), "Player X Wins !!!")
	})

	t.Run("Closed input ends the game with an input error", func(t *testing.T) {
		var out bytes.Buffer

		err := run(context.Background(), discardLogger(), testConfig("local"), strings.NewReader("0 0\n"), &out)

		require.ErrorIs(t, err, apperror.ErrInput)
		assert.Contains(t, out.String(), "Game ended with input error")
		assert.NotContains(t, out.String(), "Wins")
	})

	t.Run("Unreachable history does not stop the game", func(t *testing.T) {
		// Given: history enabled against a port nobody listens on
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := listener.Addr().(*net.TCPAddr).Port
		require.NoError(t, listener.Close())

		conf := testConfig("local")
		conf.History = config.History{
			Enabled: true,
			Limit:   10,
			Redis:   config.Redis{Host: "127.0.0.1", Port: strconv.Itoa(port)},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var out bytes.Buffer

		// When: running the app
		err = run(ctx, discardLogger(), conf, strings.NewReader(xWinsTopRow), &out)

		// Then: the game is played without a history
		require.NoError(t, err)
		assert.NotContains(t, out.String(), "Last ")
		assert.Contains(t, out.String(), "Player X Wins !!!")
	})
}

func TestRun_Join(t *testing.T) {
	t.Run("Refused connection is a setup error", func(t *testing.T) {
		// Given: a host address with nobody listening on the port
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := listener.Addr().(*net.TCPAddr).Port
		require.NoError(t, listener.Close())

		conf := testConfig("join")
		conf.Port = port
		conf.HostAddress = "127.0.0.1"

		var out bytes.Buffer

		// When: joining
		err = run(context.Background(), discardLogger(), conf, strings.NewReader(""), &out)

		// Then: the failure is reported as a setup error
		require.ErrorIs(t, err, apperror.ErrSetup)
		assert.Contains(t, out.String(), "Game ended with setup error")
	})
}

func TestWatchSignal(t *testing.T) {
	t.Run("Normal return logs nothing", func(t *testing.T) {
		// Given: the run finished, then ctx was canceled by the deferred stop
		var logs bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		close(done)
		cancel()

		// When: the watcher runs
		watchSignal(ctx, slog.New(slog.NewTextHandler(&logs, nil)), cancel, done)

		// Then: no shutdown is reported
		assert.Empty(t, logs.String())
	})

	t.Run("Cancel during the run is logged", func(t *testing.T) {
		var logs bytes.Buffer
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		cancel()

		watchSignal(ctx, slog.New(slog.NewTextHandler(&logs, nil)), cancel, done)

		assert.Contains(t, logs.String(), "Received signal, shutting down")
	})
}
