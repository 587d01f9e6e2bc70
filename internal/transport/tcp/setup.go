package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
)

const fallbackIP = "127.0.0.1"

// Listener accepts exactly one peer.
type Listener struct {
	logger   *slog.Logger
	listener net.Listener
}

// Listen - binds the host side to port on every interface. Port 0 picks a free port.
func Listen(ctx context.Context, logger *slog.Logger, port int) (*Listener, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on port %d: %w", apperror.ErrSetup, port, err)
	}

	return &Listener{
		logger:   logger.With("component", "listener"),
		listener: listener,
	}, nil
}

func (that *Listener) Addr() net.Addr {
	return that.listener.Addr()
}

// Port - the port actually bound.
func (that *Listener) Port() int {
	if addr, ok := that.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// AcceptOne - blocks without timeout until a peer connects or ctx is canceled.
// The listener is closed afterwards either way.
func (that *Listener) AcceptOne(ctx context.Context) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = that.listener.Close()
	})
	defer stop()

	defer func() {
		if err := that.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			that.logger.Warn("failed to close listener", "error", err)
		}
	}()

	that.logger.Info("waiting for opponent", "addr", that.listener.Addr().String())

	conn, err := that.listener.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: accept interrupted: %w", apperror.ErrSetup, ctxErr)
		}

		return nil, fmt.Errorf("%w: failed to accept: %w", apperror.ErrSetup, err)
	}

	that.logger.Info("opponent connected", "remote", conn.RemoteAddr().String())

	return conn, nil
}

// ListenAndAccept - Listen followed by AcceptOne.
func ListenAndAccept(ctx context.Context, logger *slog.Logger, port int) (net.Conn, error) {
	listener, err := Listen(ctx, logger, port)
	if err != nil {
		return nil, err
	}

	return listener.AcceptOne(ctx)
}

// ConnectTo - dials the host, giving up after timeout.
func ConnectTo(ctx context.Context, logger *slog.Logger, address string, port int, timeout time.Duration) (net.Conn, error) {
	log := logger.With("component", "dialer")

	target := net.JoinHostPort(address, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: timeout}

	log.Info("connecting", "target", target, "timeout", timeout.String())

	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", apperror.ErrSetup, target, err)
	}

	log.Info("connected to host", "remote", conn.RemoteAddr().String())

	return conn, nil
}

// LocalIP - best effort guess of the address a peer on the LAN could reach.
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return fallbackIP
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}

		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}

	return fallbackIP
}
