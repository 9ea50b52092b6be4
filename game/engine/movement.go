package engine

// knightMoves is the move catalog. Its order decides which shortest path is
// returned when several exist, so it must not be reordered.
var knightMoves = [8]Move{
	{DRow: 1, DCol: 2},
	{DRow: -1, DCol: 2},
	{DRow: 2, DCol: 1},
	{DRow: 2, DCol: -1},
	{DRow: 1, DCol: -2},
	{DRow: -1, DCol: -2},
	{DRow: -2, DCol: -1},
	{DRow: -2, DCol: 1},
}

// KnightMoves returns a copy of the move catalog in enumeration order.
func KnightMoves() []Move {
	moves := make([]Move, len(knightMoves))
	copy(moves, knightMoves[:])
	return moves
}

// Apply returns the cell reached from c by m.
func (c Cell) Apply(m Move) Cell {
	return Cell{Row: c.Row + m.DRow, Col: c.Col + m.DCol}
}

// MoveBetween returns the offset that takes from to to.
func MoveBetween(from, to Cell) Move {
	return Move{DRow: to.Row - from.Row, DCol: to.Col - from.Col}
}

// IsKnightMove reports whether m is in the catalog.
func IsKnightMove(m Move) bool {
	for _, k := range knightMoves {
		if k == m {
			return true
		}
	}
	return false
}

// Neighbors returns the interior cells one knight move away from c, in catalog order.
func (b Board) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, len(knightMoves))
	for _, m := range knightMoves {
		if n := c.Apply(m); b.IsInterior(n) {
			out = append(out, n)
		}
	}
	return out
}

// CanStep reports whether a knight may legally move from one interior cell to another.
func (b Board) CanStep(from, to Cell) bool {
	return b.IsInterior(from) && b.IsInterior(to) && IsKnightMove(MoveBetween(from, to))
}
