package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, size int) *Engine {
	t.Helper()
	board, err := NewBoard(size)
	require.NoError(t, err)
	return NewEngine(board)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// bruteForceDistances runs Floyd-Warshall over the interior knight graph.
func bruteForceDistances(board Board) map[[2]Cell]int {
	cells := board.InteriorCells()
	const inf = 1 << 20
	dist := make(map[[2]Cell]int)
	for _, a := range cells {
		for _, b := range cells {
			dr, dc := abs(a.Row-b.Row), abs(a.Col-b.Col)
			switch {
			case a == b:
				dist[[2]Cell{a, b}] = 0
			case (dr == 1 && dc == 2) || (dr == 2 && dc == 1):
				dist[[2]Cell{a, b}] = 1
			default:
				dist[[2]Cell{a, b}] = inf
			}
		}
	}
	for _, k := range cells {
		for _, i := range cells {
			for _, j := range cells {
				if d := dist[[2]Cell{i, k}] + dist[[2]Cell{k, j}]; d < dist[[2]Cell{i, j}] {
					dist[[2]Cell{i, j}] = d
				}
			}
		}
	}
	return dist
}

func assertLegalWalk(t *testing.T, board Board, path Path) {
	t.Helper()
	seen := make(map[Cell]bool, len(path))
	for i, c := range path {
		assert.True(t, board.IsInterior(c), "cell %v is not interior", c)
		assert.False(t, seen[c], "cell %v repeats", c)
		seen[c] = true
		if i > 0 {
			assert.True(t, IsKnightMove(MoveBetween(path[i-1], c)), "%v -> %v is not a knight move", path[i-1], c)
		}
	}
}

func TestShortestPath_SameCell(t *testing.T) {
	eng := newTestEngine(t, 10)
	for _, c := range eng.Board().InteriorCells() {
		assert.Equal(t, Path{c}, eng.ShortestPath(c, c))
	}
}

func TestShortestPath_MatchesBruteForce(t *testing.T) {
	eng := newTestEngine(t, 6)
	board := eng.Board()
	want := bruteForceDistances(board)

	for _, a := range board.InteriorCells() {
		for _, b := range board.InteriorCells() {
			path := eng.ShortestPath(a, b)
			require.NotEmpty(t, path, "%v -> %v", a, b)
			assert.Equal(t, a, path[0])
			assert.Equal(t, b, path[len(path)-1])
			assert.Equal(t, want[[2]Cell{a, b}], path.Moves(), "%v -> %v", a, b)
			assertLegalWalk(t, board, path)
		}
	}
}

func TestShortestPath_LegalWalksOnDefaultBoard(t *testing.T) {
	eng := newTestEngine(t, DefaultBoardSize)
	board := eng.Board()
	for _, a := range board.InteriorCells() {
		dist := eng.Distances(a)
		for _, b := range board.InteriorCells() {
			path := eng.ShortestPath(a, b)
			assertLegalWalk(t, board, path)
			assert.Equal(t, dist[b], path.Moves())
		}
	}
}

func TestShortestPath_OrthogonalNeighbourIsThreeMoves(t *testing.T) {
	eng := newTestEngine(t, 10)
	path := eng.ShortestPath(Cell{4, 4}, Cell{4, 5})
	assert.Len(t, path, 4)
	assert.Equal(t, 3, path.Moves())
}

func TestShortestPath_TieBreakFollowsCatalogOrder(t *testing.T) {
	eng := newTestEngine(t, 10)
	want := Path{{4, 4}, {5, 6}, {6, 4}, {4, 5}}
	assert.Equal(t, want, eng.ShortestPath(Cell{4, 4}, Cell{4, 5}))
}

func TestShortestPath_RejectsBorderAndOutOfBounds(t *testing.T) {
	eng := newTestEngine(t, 10)
	tests := []struct {
		name     string
		from, to Cell
	}{
		{"border origin", Cell{0, 3}, Cell{4, 4}},
		{"border destination", Cell{4, 4}, Cell{9, 2}},
		{"corner", Cell{0, 0}, Cell{0, 0}},
		{"negative", Cell{-1, 4}, Cell{4, 4}},
		{"beyond board", Cell{4, 4}, Cell{12, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, eng.ShortestPath(tt.from, tt.to))
			assert.Equal(t, Unreachable, eng.Distance(tt.from, tt.to))
		})
	}
}

func TestShortestPath_NeverUsesBorder(t *testing.T) {
	// On an open board (1,1) -> (2,2) takes two moves, through (0,3) or (3,0).
	eng := newTestEngine(t, 10)
	path := eng.ShortestPath(Cell{1, 1}, Cell{2, 2})
	assertLegalWalk(t, eng.Board(), path)
	assert.Equal(t, 4, path.Moves())
	for _, c := range path {
		assert.False(t, eng.Board().IsBorder(c))
	}
}

func TestShortestPath_IsolatedCellYieldsEmptyPath(t *testing.T) {
	// The centre of a 5x5 board has every knight move landing on the border.
	eng := NewEngine(Board{size: 5})
	assert.Empty(t, eng.ShortestPath(Cell{2, 2}, Cell{1, 1}))
	assert.Empty(t, eng.ShortestPath(Cell{1, 1}, Cell{2, 2}))
	assert.Equal(t, Unreachable, eng.Distance(Cell{1, 1}, Cell{2, 2}))
}

func TestShortestPath_Deterministic(t *testing.T) {
	eng := newTestEngine(t, 12)
	from, to := Cell{1, 1}, Cell{10, 10}
	first := eng.ShortestPath(from, to)

	// Interleave unrelated queries that share cells with the first one.
	for _, c := range first {
		eng.ShortestPath(c, Cell{5, 5})
		eng.ShortestPath(Cell{10, 1}, c)
	}

	assert.Equal(t, first, eng.ShortestPath(from, to))
}

func TestShortestPath_ConcurrentCallers(t *testing.T) {
	eng := newTestEngine(t, 12)
	board := eng.Board()
	cells := board.InteriorCells()

	want := make(map[Cell]Path, len(cells))
	for _, c := range cells {
		want[c] = eng.ShortestPath(Cell{1, 1}, c)
	}

	var wg sync.WaitGroup
	errs := make(chan Cell, len(cells)*4)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range cells {
				got := eng.ShortestPath(Cell{1, 1}, c)
				if len(got) != len(want[c]) {
					errs <- c
					continue
				}
				for i := range got {
					if got[i] != want[c][i] {
						errs <- c
						break
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for c := range errs {
		t.Errorf("concurrent path to %v differs from sequential result", c)
	}
}

func TestPathMoves(t *testing.T) {
	assert.Equal(t, Unreachable, Path{}.Moves())
	assert.Equal(t, 0, Path{{1, 1}}.Moves())
	assert.Equal(t, 1, Path{{1, 1}, {2, 3}}.Moves())
}

func TestStats(t *testing.T) {
	eng := newTestEngine(t, 10)
	stats := eng.Stats()

	assert.Equal(t, 64, stats.InteriorCells)
	assert.True(t, stats.Connected)
	assert.Equal(t, 6, stats.Diameter)
	assert.Equal(t, 6, eng.Eccentricity(Cell{1, 1}))

	total := 0
	for _, d := range stats.SortedDistances() {
		total += stats.Histogram[d]
	}
	assert.Equal(t, 64*63, total)
}
