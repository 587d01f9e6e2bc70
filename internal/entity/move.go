package entity

import "fmt"

// Move is a single placement. It is passed by value and never mutated.
type Move struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Symbol Symbol `json:"symbol"`
}

func NewMove(row, col int, symbol Symbol) Move {
	return Move{Row: row, Col: col, Symbol: symbol}
}

// InBounds - reports whether the coordinates lie on the board, ignoring occupancy.
func (that Move) InBounds() bool {
	return inRange(that.Row, that.Col)
}

func (that Move) String() string {
	return fmt.Sprintf("%s at (%d, %d)", that.Symbol, that.Row, that.Col)
}
