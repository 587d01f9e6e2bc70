package game

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/tcp"
)

// Notifier is the part of Display used while connecting.
type Notifier interface {
	Notify(message string)
}

// Setup establishes the connection for the network modes.
type Setup struct {
	logger   *slog.Logger
	notifier Notifier

	port             int
	connectTimeout   time.Duration
	handshakeTimeout time.Duration
}

func NewSetup(logger *slog.Logger, notifier Notifier, port int, connectTimeout, handshakeTimeout time.Duration) *Setup {
	return &Setup{
		logger:           logger.With("component", "setup"),
		notifier:         notifier,
		port:             port,
		connectTimeout:   connectTimeout,
		handshakeTimeout: handshakeTimeout,
	}
}

// Host - listens and waits, with no timeout, for one opponent.
func (that *Setup) Host(ctx context.Context) (*tcp.Connection, error) {
	listener, err := tcp.Listen(ctx, that.logger, that.port)
	if err != nil {
		return nil, err
	}

	return that.HostOn(ctx, listener)
}

// HostOn - like Host, on a listener the caller already bound.
func (that *Setup) HostOn(ctx context.Context, listener *tcp.Listener) (*tcp.Connection, error) {
	that.notifier.Notify(fmt.Sprintf("Host started. Local IP: %s  Port: %d", tcp.LocalIP(), listener.Port()))
	that.notifier.Notify("Waiting for opponent to connect...")

	raw, err := listener.AcceptOne(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := tcp.Open(ctx, that.logger, raw, tcp.RoleHost, uuid.NewString(), that.handshakeTimeout)
	if err != nil {
		return nil, err
	}

	that.notifier.Notify("Opponent connected from: " + conn.RemoteAddr())

	return conn, nil
}

// Join - connects to the host at address, giving up after the connect timeout.
func (that *Setup) Join(ctx context.Context, address string) (*tcp.Connection, error) {
	that.notifier.Notify("Your local IP (for reference): " + tcp.LocalIP())
	that.notifier.Notify(fmt.Sprintf("Connecting to %s ...", net.JoinHostPort(address, strconv.Itoa(that.port))))

	raw, err := tcp.ConnectTo(ctx, that.logger, address, that.port, that.connectTimeout)
	if err != nil {
		return nil, err
	}

	conn, err := tcp.Open(ctx, that.logger, raw, tcp.RoleJoin, "", that.handshakeTimeout)
	if err != nil {
		return nil, err
	}

	that.notifier.Notify("Connected to host: " + conn.RemoteAddr())

	return conn, nil
}
