package board

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Size is the number of cells on a board.
const Size = 9

type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"
)

func (s Symbol) Valid() bool {
	return s == Empty || s == X || s == O
}

// Opponent returns the other player symbol. Empty has no opponent.
func (s Symbol) Opponent() Symbol {
	switch s {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board holds cells in row-major order, index 0 is top-left.
type Board [Size]Symbol

var errBadCell = errors.New("invalid_cell")

// lines lists rows, then columns, then diagonals. DetectOutcome relies on this order.
var lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// DetectOutcome returns the symbol occupying the first completed line.
func DetectOutcome(b Board) (Symbol, bool) {
	for _, l := range lines {
		s := b[l[0]]
		if s != Empty && s == b[l[1]] && s == b[l[2]] {
			return s, true
		}
	}
	return Empty, false
}

func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

func (b Board) Empty() bool {
	for _, c := range b {
		if c != Empty {
			return false
		}
	}
	return true
}

func InRange(pos int) bool {
	return pos >= 0 && pos < Size
}

func (b Board) Cell(pos int) Symbol {
	if !InRange(pos) {
		return Empty
	}
	return b[pos]
}

func (b *Board) Place(pos int, s Symbol) {
	b[pos] = s
}

// String renders the board as nine characters, '.' for empty cells.
func (b Board) String() string {
	out := make([]byte, Size)
	for i, c := range b {
		if c == Empty {
			out[i] = '.'
		} else {
			out[i] = c[0]
		}
	}
	return string(out)
}

func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]string, Size)
	for i, c := range b {
		cells[i] = string(c)
	}
	return json.Marshal(cells)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []string
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	if len(cells) != Size {
		return fmt.Errorf("board: want %d cells, got %d", Size, len(cells))
	}
	for i, c := range cells {
		s := Symbol(c)
		if !s.Valid() {
			return fmt.Errorf("board: cell %d: %w", i, errBadCell)
		}
		b[i] = s
	}
	return nil
}
