package engine

// Engine answers shortest-path queries on a fixed board.
//
// An Engine holds no mutable state, so one value may serve any number of
// sessions and goroutines at once.
type Engine struct {
	board Board
}

// NewEngine creates a path engine for the given board.
func NewEngine(board Board) *Engine {
	return &Engine{board: board}
}

// NewEngineWithDefaults creates a path engine for the default 10x10 board.
func NewEngineWithDefaults() *Engine {
	return &Engine{board: Board{size: DefaultBoardSize}}
}

// Board returns the board the engine searches.
func (e *Engine) Board() Board {
	return e.board
}

// ShortestPath returns a minimal knight walk from origin to destination over
// interior cells, or an empty path when either endpoint is not interior or no
// route exists.
//
// The search is breadth-first with visited-on-dequeue. Neighbours are pushed in
// catalog order and each cell remembers the first cell that reached it, so ties
// between equal-length paths always resolve the same way.
func (e *Engine) ShortestPath(origin, destination Cell) Path {
	if !e.board.IsInterior(origin) || !e.board.IsInterior(destination) {
		return Path{}
	}
	if origin == destination {
		return Path{origin}
	}

	queue := []Cell{origin}
	expanded := make(map[Cell]bool)
	parent := make(map[Cell]Cell)

	for head := 0; head < len(queue); head++ {
		current := queue[head]

		if current == destination {
			return rebuild(parent, origin, destination)
		}

		if expanded[current] {
			continue
		}
		expanded[current] = true

		for _, m := range knightMoves {
			next := current.Apply(m)
			if !e.board.IsInterior(next) || expanded[next] {
				continue
			}
			if _, seen := parent[next]; !seen && next != origin {
				parent[next] = current
			}
			queue = append(queue, next)
		}
	}

	return Path{}
}

// rebuild follows predecessor links from destination back to origin.
func rebuild(parent map[Cell]Cell, origin, destination Cell) Path {
	path := Path{destination}
	for c := destination; c != origin; {
		c = parent[c]
		path = append(path, c)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Distance returns the number of knight moves between a and b, or Unreachable.
func (e *Engine) Distance(a, b Cell) int {
	return e.ShortestPath(a, b).Moves()
}

// Neighbors returns the legal knight targets from c in catalog order.
func (e *Engine) Neighbors(c Cell) []Cell {
	return e.board.Neighbors(c)
}

// Distances runs a single breadth-first sweep from origin and returns the move
// count to every reachable interior cell.
func (e *Engine) Distances(origin Cell) map[Cell]int {
	dist := make(map[Cell]int)
	if !e.board.IsInterior(origin) {
		return dist
	}
	dist[origin] = 0
	queue := []Cell{origin}
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		for _, next := range e.board.Neighbors(current) {
			if _, ok := dist[next]; ok {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return dist
}
