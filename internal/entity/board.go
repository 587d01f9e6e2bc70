package entity

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Dimension = 3
	MaxMoves  = Dimension * Dimension

	renderEmpty = "_"
)

type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"
)

var ErrUnknownSymbol = errors.New("unknown symbol")

// ParseSymbol - accepts only the two player symbols.
func ParseSymbol(value string) (Symbol, error) {
	switch Symbol(value) {
	case X:
		return X, nil
	case O:
		return O, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownSymbol, value)
	}
}

func (that Symbol) IsPlayer() bool {
	return that == X || that == O
}

// Opponent - returns the symbol of the other player, Empty for Empty.
func (that Symbol) Opponent() Symbol {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board is a 3x3 grid. The zero value is an empty board ready to use.
type Board struct {
	cells [Dimension][Dimension]Symbol
	moves int
}

func NewBoard() *Board {
	return &Board{}
}

func inRange(row, col int) bool {
	return row >= 0 && row < Dimension && col >= 0 && col < Dimension
}

// IsValidPlacement - reports whether (row, col) is on the board and empty.
func (that *Board) IsValidPlacement(row, col int) bool {
	if !inRange(row, col) {
		return false
	}

	return that.cells[row][col] == Empty
}

// Place - puts symbol at (row, col). The caller must check IsValidPlacement first,
// a violated precondition is a bug and panics.
func (that *Board) Place(row, col int, symbol Symbol) {
	if !symbol.IsPlayer() {
		panic(fmt.Sprintf("entity: place of non-player symbol %q", symbol))
	}

	if !that.IsValidPlacement(row, col) {
		panic(fmt.Sprintf("entity: invalid placement of %s at (%d, %d)", symbol, row, col))
	}

	that.cells[row][col] = symbol
	that.moves++
}

// Apply - places a move that has already been validated.
func (that *Board) Apply(move Move) {
	that.Place(move.Row, move.Col, move.Symbol)
}

// CheckWin - reports whether symbol holds a full diagonal, row or column.
func (that *Board) CheckWin(symbol Symbol) bool {
	if !symbol.IsPlayer() {
		return false
	}

	if that.mainDiagonal(symbol) || that.antiDiagonal(symbol) {
		return true
	}

	for i := 0; i < Dimension; i++ {
		if that.row(i, symbol) {
			return true
		}
	}

	for i := 0; i < Dimension; i++ {
		if that.column(i, symbol) {
			return true
		}
	}

	return false
}

func (that *Board) mainDiagonal(symbol Symbol) bool {
	for i := 0; i < Dimension; i++ {
		if that.cells[i][i] != symbol {
			return false
		}
	}
	return true
}

func (that *Board) antiDiagonal(symbol Symbol) bool {
	for i := 0; i < Dimension; i++ {
		if that.cells[i][Dimension-1-i] != symbol {
			return false
		}
	}
	return true
}

func (that *Board) row(row int, symbol Symbol) bool {
	for col := 0; col < Dimension; col++ {
		if that.cells[row][col] != symbol {
			return false
		}
	}
	return true
}

func (that *Board) column(col int, symbol Symbol) bool {
	for row := 0; row < Dimension; row++ {
		if that.cells[row][col] != symbol {
			return false
		}
	}
	return true
}

// IsFull - true once every cell is taken.
func (that *Board) IsFull() bool {
	return that.moves == MaxMoves
}

// Moves - number of occupied cells.
func (that *Board) Moves() int {
	return that.moves
}

// Cell - returns the symbol at (row, col), Empty when out of range.
func (that *Board) Cell(row, col int) Symbol {
	if !inRange(row, col) {
		return Empty
	}
	return that.cells[row][col]
}

// Reset - clears every cell.
func (that *Board) Reset() {
	that.cells = [Dimension][Dimension]Symbol{}
	that.moves = 0
}

func (that *Board) String() string {
	var sb strings.Builder

	for row := 0; row < Dimension; row++ {
		for col := 0; col < Dimension; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}

			cell := string(that.cells[row][col])
			if cell == "" {
				cell = renderEmpty
			}
			sb.WriteString(cell)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
