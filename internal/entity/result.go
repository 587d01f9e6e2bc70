package entity

import "time"

type Mode string

const (
	ModeLocal Mode = "local"
	ModeHost  Mode = "host"
	ModeJoin  Mode = "join"
)

func (that Mode) IsNetwork() bool {
	return that == ModeHost || that == ModeJoin
}

// Result describes how a finished session ended.
type Result struct {
	ID         string    `json:"id"`
	Mode       Mode      `json:"mode"`
	Winner     Symbol    `json:"winner,omitempty"`
	Draw       bool      `json:"draw"`
	Moves      []Move    `json:"moves"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (that *Result) IsDraw() bool {
	return that.Draw
}

// Outcome - short human readable summary.
func (that *Result) Outcome() string {
	if that.Draw {
		return "draw"
	}
	return "winner " + string(that.Winner)
}
