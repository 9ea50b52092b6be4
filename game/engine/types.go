package engine

// Validation constants
const (
	MinBoardSize     = 6 // a 5x5 board leaves its centre cell isolated
	MaxBoardSize     = 28 // row labels run A..Z over the interior
	DefaultBoardSize = 10
	MaxBulkMoves     = 50
	Unreachable      = -1
)

// Cell is a (row, column) coordinate on the board.
//
// Cell is comparable and is used directly as a map key, so two cells are the
// same key exactly when both coordinates match.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move is a relative knight offset.
type Move struct {
	DRow int `json:"drow"`
	DCol int `json:"dcol"`
}

// Path is an ordered walk of cells from an origin to a destination.
// An empty path means there is no route.
type Path []Cell

// Moves returns the number of knight moves in the path, or Unreachable when the path is empty.
func (p Path) Moves() int {
	if len(p) == 0 {
		return Unreachable
	}
	return len(p) - 1
}

// GameState is a read-only snapshot of a session, shaped for clients.
type GameState struct {
	State       State  `json:"state"`
	BoardSize   int    `json:"board_size"`
	Start       Cell   `json:"start"`
	Destination Cell   `json:"destination"`
	Trail       []Cell `json:"trail"`
	Current     *Cell  `json:"current,omitempty"`

	MinMoves          int `json:"min_moves"`
	MaxMoves          int `json:"max_moves"`
	MovesMade         int `json:"moves_made"`
	MovesLeft         int `json:"moves_left"`
	RemainingDistance int `json:"remaining_distance"`

	Message    string `json:"message"`
	ConfigName string `json:"config_name"`
	GameOver   bool   `json:"game_over"`
	Won        bool   `json:"won"`

	// Computed helper views (not required for core game logic)
	PossibleMoves []Cell   `json:"possible_moves,omitempty"`
	TrailLabels   []string `json:"trail_labels,omitempty"`
	BoardView     []string `json:"board_view,omitempty"`
}

// Snapshot is the persisted form of a session: just enough to rebuild it.
type Snapshot struct {
	Start       Cell   `json:"start"`
	Destination Cell   `json:"destination"`
	Trail       []Cell `json:"trail"`
	State       State  `json:"state"`
}
