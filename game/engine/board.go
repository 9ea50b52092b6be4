package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrBoardSize    = errors.New("board size out of range")
	ErrInvalidLabel = errors.New("invalid cell label")
)

// Board is the immutable grid geometry shared by an Engine and its sessions.
type Board struct {
	size int
}

// NewBoard returns a board with side length size. Boards too small to hold two
// distinct interior cells with a connected knight graph are rejected here.
func NewBoard(size int) (Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return Board{}, fmt.Errorf("%w: must be between %d and %d, got %d", ErrBoardSize, MinBoardSize, MaxBoardSize, size)
	}
	return Board{size: size}, nil
}

// Size returns the side length of the board.
func (b Board) Size() int {
	return b.size
}

// InBounds reports whether both coordinates lie in [0, size).
func (b Board) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < b.size && c.Col >= 0 && c.Col < b.size
}

// IsBorder reports whether c sits on the outer ring.
func (b Board) IsBorder(c Cell) bool {
	return c.Row == 0 || c.Col == 0 || c.Row == b.size-1 || c.Col == b.size-1
}

// IsInterior reports whether c may take part in the move graph.
func (b Board) IsInterior(c Cell) bool {
	return b.InBounds(c) && !b.IsBorder(c)
}

// InteriorCells lists every interior cell in row-major order.
func (b Board) InteriorCells() []Cell {
	n := b.size - 2
	if n <= 0 {
		return nil
	}
	cells := make([]Cell, 0, n*n)
	for r := 1; r < b.size-1; r++ {
		for c := 1; c < b.size-1; c++ {
			cells = append(cells, Cell{Row: r, Col: c})
		}
	}
	return cells
}

// RandomInteriorCell picks a uniformly random interior cell, different from
// excluding when it is non-nil. It draws from the enumerated interior, so it
// never retries.
func (b Board) RandomInteriorCell(rng *rand.Rand, excluding *Cell) Cell {
	cells := b.InteriorCells()
	if excluding != nil {
		for i, c := range cells {
			if c == *excluding {
				cells = append(cells[:i], cells[i+1:]...)
				break
			}
		}
	}
	return cells[rng.IntN(len(cells))]
}

// Label renders c the way the board edge is annotated: a row letter starting
// at A for row 1 followed by the column number. Border coordinates read "@".
func (b Board) Label(c Cell) string {
	var sb strings.Builder
	if c.Row <= 0 || c.Row >= b.size-1 {
		sb.WriteByte('@')
	} else {
		sb.WriteByte(byte('A' + c.Row - 1))
	}
	if c.Col <= 0 || c.Col >= b.size-1 {
		sb.WriteByte('@')
	} else {
		sb.WriteString(strconv.Itoa(c.Col))
	}
	return sb.String()
}

// ParseLabel is the inverse of Label for interior cells, e.g. "C4" -> (3,4).
func (b Board) ParseLabel(label string) (Cell, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	letter := unicode.ToUpper(rune(label[0]))
	if letter < 'A' || letter > 'Z' {
		return Cell{}, fmt.Errorf("%w: %q: row must be a letter", ErrInvalidLabel, label)
	}
	col, err := strconv.Atoi(label[1:])
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %q: column must be a number", ErrInvalidLabel, label)
	}
	c := Cell{Row: int(letter-'A') + 1, Col: col}
	if !b.IsInterior(c) {
		return Cell{}, fmt.Errorf("%w: %q is not an interior cell of a %dx%d board", ErrInvalidLabel, label, b.size, b.size)
	}
	return c, nil
}
