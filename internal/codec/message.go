package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

const (
	ActionMove  = "move"
	ActionHello = "hello"

	ProtocolVersion = 1
)

var (
	ErrUnexpectedAction = errors.New("unexpected message action")
	ErrMissingField     = errors.New("missing field")
	ErrUnknownField     = errors.New("unknown field")
	ErrDuplicateField   = errors.New("duplicate field")
	ErrNotObject        = errors.New("not a json object")
	ErrTrailingData     = errors.New("trailing data after message")
)

// Message is the envelope of every frame exchanged between peers.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var (
	envelopeKeys = []string{"action", "payload"}
	moveKeys     = []string{"row", "col", "symbol"}
	helloKeys    = []string{"version", "role", "session"}
)

type movePayload struct {
	Row    *int    `json:"row"`
	Col    *int    `json:"col"`
	Symbol *string `json:"symbol"`
}

// HelloPayload is exchanged once when a connection is opened.
type HelloPayload struct {
	Version int    `json:"version"`
	Role    string `json:"role"`
	Session string `json:"session"`
}

// EncodeMove - serializes a move into a message.
func EncodeMove(move entity.Move) ([]byte, error) {
	row, col, symbol := move.Row, move.Col, string(move.Symbol)

	return encode(ActionMove, movePayload{Row: &row, Col: &col, Symbol: &symbol})
}

// DecodeMove - parses a move message. It checks the shape, the coordinate domain
// and the symbol; occupancy is left to the board.
func DecodeMove(data []byte) (entity.Move, error) {
	var payload movePayload
	if err := decode(data, ActionMove, &payload, moveKeys); err != nil {
		return entity.Move{}, err
	}

	if payload.Row == nil || payload.Col == nil || payload.Symbol == nil {
		return entity.Move{}, fmt.Errorf("%w: %w: move needs row, col and symbol", apperror.ErrDecode, ErrMissingField)
	}

	symbol, err := entity.ParseSymbol(*payload.Symbol)
	if err != nil {
		return entity.Move{}, fmt.Errorf("%w: %w", apperror.ErrDecode, err)
	}

	move := entity.NewMove(*payload.Row, *payload.Col, symbol)
	if !move.InBounds() {
		return entity.Move{}, fmt.Errorf("%w: coordinates (%d, %d) out of range", apperror.ErrDecode, move.Row, move.Col)
	}

	return move, nil
}

// EncodeHello - serializes the handshake message.
func EncodeHello(hello HelloPayload) ([]byte, error) {
	return encode(ActionHello, hello)
}

// DecodeHello - parses the handshake message.
func DecodeHello(data []byte) (HelloPayload, error) {
	var hello HelloPayload
	if err := decode(data, ActionHello, &hello, helloKeys); err != nil {
		return HelloPayload{}, err
	}

	if hello.Role == "" {
		return HelloPayload{}, fmt.Errorf("%w: %w: hello needs a role", apperror.ErrDecode, ErrMissingField)
	}

	return hello, nil
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", action, err)
	}

	return data, nil
}

func decode(data []byte, action string, payload any, keys []string) error {
	var msg Message
	if err := strictUnmarshal(data, &msg, envelopeKeys); err != nil {
		return fmt.Errorf("%w: failed to unmarshal message: %w", apperror.ErrDecode, err)
	}

	if msg.Action != action {
		return fmt.Errorf("%w: %w: got %q, want %q", apperror.ErrDecode, ErrUnexpectedAction, msg.Action, action)
	}

	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: %w: %s payload", apperror.ErrDecode, ErrMissingField, action)
	}

	if err := strictUnmarshal(msg.Payload, payload, keys); err != nil {
		return fmt.Errorf("%w: failed to unmarshal %s payload: %w", apperror.ErrDecode, action, err)
	}

	return nil
}

// strictUnmarshal - decodes data into v after checkObject has accepted it.
func strictUnmarshal(data []byte, v any, keys []string) error {
	if err := checkObject(data, keys); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	return dec.Decode(v)
}

// checkObject - data must be exactly one JSON object. Its keys must be among keys,
// spelled with the same case, and appear at most once.
func checkObject(data []byte, keys []string) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	seen := make(map[string]bool, len(keys))

	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return err
		}

		key, _ := tok.(string)
		if !slices.Contains(keys, key) {
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}

		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateField, key)
		}
		seen[key] = true

		var value json.RawMessage
		if err = dec.Decode(&value); err != nil {
			return err
		}
	}

	// closing brace
	if _, err = dec.Token(); err != nil {
		return err
	}

	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	return nil
}
