package apperror

import "errors"

var (
	ErrInvalidPlacement = errors.New("cell is out of range or already occupied")
	ErrInput            = errors.New("local input unavailable")
	ErrSetup            = errors.New("connection setup failed")
	ErrTransport        = errors.New("connection failure")
	ErrProtocol         = errors.New("protocol violation")
	ErrDecode           = errors.New("malformed move message")
)

const (
	CategorySetup     = "setup"
	CategoryTransport = "transport"
	CategoryProtocol  = "protocol"
	CategoryInput     = "input"
	CategoryUnknown   = "unknown"
)

// Category - returns the user-facing error category of err.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrSetup):
		return CategorySetup
	case errors.Is(err, ErrDecode), errors.Is(err, ErrProtocol):
		return CategoryProtocol
	case errors.Is(err, ErrTransport):
		return CategoryTransport
	case errors.Is(err, ErrInput):
		return CategoryInput
	default:
		return CategoryUnknown
	}
}
