package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/tcp"
)

func TestSetup_HostAndJoin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Given: a host bound to a free loopback port
	listener, err := tcp.Listen(ctx, discardLogger(), 0)
	require.NoError(t, err)

	hostNotes := &recordingDisplay{}
	joinNotes := &recordingDisplay{}

	hostSetup := NewSetup(discardLogger(), hostNotes, listener.Port(), time.Second, time.Second)
	joinSetup := NewSetup(discardLogger(), joinNotes, listener.Port(), time.Second, time.Second)

	type opened struct {
		conn *tcp.Connection
		err  error
	}
	hosted := make(chan opened, 1)

	go func() {
		conn, hostErr := hostSetup.HostOn(ctx, listener)
		hosted <- opened{conn, hostErr}
	}()

	// When: the joiner connects to it
	joined, err := joinSetup.Join(ctx, "127.0.0.1")
	require.NoError(t, err)
	defer joined.Close()

	host := <-hosted
	require.NoError(t, host.err)
	defer host.conn.Close()

	// Then: both ends agree on the session and a move crosses the link
	assert.NotEmpty(t, host.conn.Session())
	assert.Equal(t, host.conn.Session(), joined.Session())

	move := entity.NewMove(1, 1, entity.X)
	require.NoError(t, host.conn.SendMove(move))

	got, err := joined.ReceiveMove()
	require.NoError(t, err)
	assert.Equal(t, move, got)

	assert.Contains(t, hostNotes.notesSnapshot(), "Waiting for opponent to connect...")
	assert.Contains(t, joinNotes.notesSnapshot(), "Connected to host: "+joined.RemoteAddr())
}

func TestSetup_Host(t *testing.T) {
	t.Run("Cancel stops waiting for an opponent", func(t *testing.T) {
		// Given: a host waiting on a free port
		ctx, cancel := context.WithCancel(context.Background())
		setup := NewSetup(discardLogger(), &recordingDisplay{}, 0, time.Second, time.Second)

		done := make(chan error, 1)
		go func() {
			_, err := setup.Host(ctx)
			done <- err
		}()

		// When: the context is canceled
		time.Sleep(50 * time.Millisecond)
		cancel()

		// Then: Host returns a setup error
		select {
		case err := <-done:
			require.ErrorIs(t, err, apperror.ErrSetup)
		case <-time.After(3 * time.Second):
			t.Fatal("host did not stop after cancel")
		}
	})
}
