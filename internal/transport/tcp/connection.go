package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/codec"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

type Role string

const (
	RoleHost Role = "host"
	RoleJoin Role = "join"
)

var (
	ErrRoleConflict    = errors.New("peer announced the same role")
	ErrVersionMismatch = errors.New("protocol version mismatch")
)

func (that Role) peer() Role {
	if that == RoleHost {
		return RoleJoin
	}
	return RoleHost
}

// Connection turns one socket into an ordered channel of moves.
// Sends are serialized against each other, receives likewise; a send and a
// receive may run at the same time.
type Connection struct {
	logger *slog.Logger
	conn   net.Conn

	writeMu sync.Mutex
	writer  *bufio.Writer

	readMu sync.Mutex
	reader *bufio.Reader

	closed atomic.Bool

	role    Role
	session string
}

// Open - wraps an established socket and runs the hello handshake.
//
// The host writes its hello and flushes before reading; the joiner reads first.
// Only one side ever writes first, so both peers cannot block on a read at once.
// On failure the socket is closed and an apperror.ErrSetup is returned.
func Open(ctx context.Context, logger *slog.Logger, conn net.Conn, role Role, sessionID string, timeout time.Duration) (*Connection, error) {
	that := &Connection{
		logger:  logger.With("component", "connection", "role", string(role), "remote", conn.RemoteAddr().String()),
		conn:    conn,
		writer:  bufio.NewWriter(conn),
		reader:  bufio.NewReader(conn),
		role:    role,
		session: sessionID,
	}

	if err := that.handshake(ctx, timeout); err != nil {
		if closeErr := that.Close(); closeErr != nil {
			that.logger.Warn("failed to close connection after handshake", "error", closeErr)
		}

		return nil, fmt.Errorf("%w: handshake: %w", apperror.ErrSetup, err)
	}

	that.logger.Info("connection opened", "session", that.session)

	return that, nil
}

func (that *Connection) handshake(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		if err := that.conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	// unblock a pending read or write when the caller gives up
	stop := context.AfterFunc(ctx, func() {
		_ = that.conn.SetDeadline(time.Now())
	})
	defer stop()

	var err error
	if that.role == RoleHost {
		if err = that.writeHello(); err == nil {
			err = that.readHello()
		}
	} else {
		if err = that.readHello(); err == nil {
			err = that.writeHello()
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}

	if err != nil {
		return err
	}

	if err = that.conn.SetDeadline(time.Time{}); err != nil {
		return fmt.Errorf("failed to clear deadline: %w", err)
	}

	return nil
}

func (that *Connection) writeHello() error {
	data, err := codec.EncodeHello(codec.HelloPayload{
		Version: codec.ProtocolVersion,
		Role:    string(that.role),
		Session: that.session,
	})
	if err != nil {
		return err
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	return writeFrame(that.writer, data)
}

func (that *Connection) readHello() error {
	that.readMu.Lock()
	defer that.readMu.Unlock()

	data, err := readFrame(that.reader)
	if err != nil {
		return err
	}

	hello, err := codec.DecodeHello(data)
	if err != nil {
		return err
	}

	if hello.Version != codec.ProtocolVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, hello.Version, codec.ProtocolVersion)
	}

	if Role(hello.Role) != that.role.peer() {
		return fmt.Errorf("%w: %s", ErrRoleConflict, hello.Role)
	}

	// the joiner adopts the host's session id
	if that.role == RoleJoin && hello.Session != "" {
		that.session = hello.Session
	}

	return nil
}

// SendMove - encodes and writes one move, blocking until the transport accepts it.
func (that *Connection) SendMove(move entity.Move) error {
	data, err := codec.EncodeMove(move)
	if err != nil {
		return fmt.Errorf("failed to encode move: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if that.closed.Load() {
		return fmt.Errorf("%w: send on closed connection: %w", apperror.ErrTransport, net.ErrClosed)
	}

	if err = writeFrame(that.writer, data); err != nil {
		return fmt.Errorf("%w: failed to send move: %w", apperror.ErrTransport, err)
	}

	that.logger.Debug("move sent", "move", move.String())

	return nil
}

// ReceiveMove - blocks until one full message arrives and decodes it as a move.
// A message that is not a move is a protocol error and must end the session.
func (that *Connection) ReceiveMove() (entity.Move, error) {
	that.readMu.Lock()
	defer that.readMu.Unlock()

	data, err := readFrame(that.reader)
	if err != nil {
		if isFramingError(err) {
			return entity.Move{}, fmt.Errorf("%w: %w", apperror.ErrProtocol, err)
		}

		return entity.Move{}, fmt.Errorf("%w: failed to receive move: %w", apperror.ErrTransport, err)
	}

	move, err := codec.DecodeMove(data)
	if err != nil {
		return entity.Move{}, fmt.Errorf("failed to decode move: %w", err)
	}

	that.logger.Debug("move received", "move", move.String())

	return move, nil
}

// Close - flushes the writer and closes the socket. Each step is attempted even
// if an earlier one failed. Calls after the first return nil.
func (that *Connection) Close() error {
	if !that.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error

	// a sender blocked on a dead peer holds the lock; closing the socket below unblocks it
	if that.writeMu.TryLock() {
		if err := that.writer.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush writer: %w", err))
		}
		that.writeMu.Unlock()
	}

	if err := that.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = append(errs, fmt.Errorf("failed to close socket: %w", err))
	}

	that.logger.Info("connection closed")

	return errors.Join(errs...)
}

// Session - the session id agreed during the handshake.
func (that *Connection) Session() string {
	return that.session
}

func (that *Connection) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}
