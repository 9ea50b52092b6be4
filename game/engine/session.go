package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrIllegalMove       = errors.New("illegal move")
	ErrMovesNotAccepted  = errors.New("session does not accept moves")
	ErrInvalidEndpoints  = errors.New("invalid session endpoints")
	ErrNoRoute           = errors.New("no route between start and destination")
	ErrInvalidSnapshot   = errors.New("invalid session snapshot")
)

// Session tracks one run from start to destination and derives win/loss from
// the remaining shortest-path distance after every move.
//
// A Session is owned by a single controller and is not safe for concurrent use.
type Session struct {
	engine      *Engine
	start       Cell
	destination Cell
	minMoves    int
	maxMoves    int

	trail     []Cell
	remaining int
	state     State
	listener  Listener
}

// NewSession creates a session in the created state. start and destination
// must be distinct interior cells joined by at least one knight walk.
func NewSession(eng *Engine, start, destination Cell) (*Session, error) {
	board := eng.Board()
	if !board.IsInterior(start) || !board.IsInterior(destination) {
		return nil, fmt.Errorf("%w: start %v and destination %v must be interior cells", ErrInvalidEndpoints, start, destination)
	}
	if start == destination {
		return nil, fmt.Errorf("%w: start and destination are both %v", ErrInvalidEndpoints, start)
	}

	minMoves := eng.Distance(start, destination)
	if minMoves == Unreachable {
		return nil, fmt.Errorf("%w: %v -> %v", ErrNoRoute, start, destination)
	}

	return &Session{
		engine:      eng,
		start:       start,
		destination: destination,
		minMoves:    minMoves,
		maxMoves:    2 * (minMoves - 1),
		trail:       []Cell{},
		remaining:   minMoves,
		state:       StateCreated,
	}, nil
}

// SetListener installs the receiver of trail and state notifications. Passing
// nil silences the session.
func (s *Session) SetListener(l Listener) {
	s.listener = l
}

func (s *Session) Engine() *Engine        { return s.engine }
func (s *Session) Start() Cell            { return s.start }
func (s *Session) Destination() Cell      { return s.destination }
func (s *Session) MinMoves() int          { return s.minMoves }
func (s *Session) MaxMoves() int          { return s.maxMoves }
func (s *Session) State() State           { return s.state }
func (s *Session) RemainingDistance() int { return s.remaining }

// Trail returns a copy of the visited cells.
func (s *Session) Trail() []Cell {
	out := make([]Cell, len(s.trail))
	copy(out, s.trail)
	return out
}

// Current returns the last visited cell, if any.
func (s *Session) Current() (Cell, bool) {
	if len(s.trail) == 0 {
		return Cell{}, false
	}
	return s.trail[len(s.trail)-1], true
}

// MovesMade is the number of knight moves since the start cell was placed.
func (s *Session) MovesMade() int {
	if len(s.trail) == 0 {
		return 0
	}
	return len(s.trail) - 1
}

// MovesLeft is the budget still available.
func (s *Session) MovesLeft() int {
	return s.maxMoves - s.MovesMade()
}

// Begin asks the controller to place the knight: created -> starting.
func (s *Session) Begin() error {
	if s.state != StateCreated {
		return s.rejectTransition("begin")
	}
	s.setState(StateStarting)
	return nil
}

// Place puts the knight on the start cell. It is the forced first append.
func (s *Session) Place() error {
	return s.Append(s.start, true)
}

// MarkStarted signals that placement finished: starting -> started.
func (s *Session) MarkStarted() error {
	if s.state != StateStarting || len(s.trail) == 0 {
		return s.rejectTransition("start")
	}
	s.setState(StateStarted)
	return nil
}

// Autosolve hands control to the solver: started -> autosolving.
func (s *Session) Autosolve() error {
	if s.state != StateStarted {
		return s.rejectTransition("autosolve")
	}
	s.setState(StateAutosolving)
	return nil
}

// Stop aborts an active session.
func (s *Session) Stop() error {
	if !s.state.IsActive() {
		return s.rejectTransition("stop")
	}
	s.setState(StateStopped)
	return nil
}

// Move appends a regular knight move.
func (s *Session) Move(cell Cell) error {
	return s.Append(cell, false)
}

// Append adds cell to the trail. Unless forced, cell must be one knight move
// from the current cell. A forced append is only accepted on an empty trail and
// only for the start cell, which keeps the trail a legal walk.
//
// On success the remaining distance is recomputed, the listener is told about
// the new trail, and then won/failed are evaluated.
//
// While autosolving only the solver appends; player moves are rejected.
func (s *Session) Append(cell Cell, force bool) error {
	if s.state == StateAutosolving {
		return fmt.Errorf("%w: the solver is moving the knight", ErrMovesNotAccepted)
	}
	return s.appendCell(cell, force)
}

func (s *Session) appendCell(cell Cell, force bool) error {
	if !s.state.acceptsMoves() {
		return fmt.Errorf("%w: state is %s", ErrMovesNotAccepted, s.state)
	}

	current, placed := s.Current()
	switch {
	case !placed && !force:
		return fmt.Errorf("%w: the knight has not been placed yet", ErrIllegalMove)
	case !placed && cell != s.start:
		return fmt.Errorf("%w: the first cell must be the start %v, got %v", ErrIllegalMove, s.start, cell)
	case placed && force:
		return fmt.Errorf("%w: the knight is already on the board", ErrIllegalMove)
	case placed && s.state == StateStarting:
		return fmt.Errorf("%w: state is %s", ErrMovesNotAccepted, s.state)
	case placed && !s.engine.Board().CanStep(current, cell):
		return fmt.Errorf("%w: %v -> %v is not a knight move between interior cells", ErrIllegalMove, current, cell)
	}

	s.trail = append(s.trail, cell)
	s.remaining = s.engine.Distance(cell, s.destination)

	if s.listener != nil {
		s.listener.TrailUpdated(s.Trail())
	}

	switch {
	case cell == s.destination:
		s.setState(StateWon)
	case s.state == StateStarted && s.outOfBudget():
		s.setState(StateFailed)
	}
	return nil
}

// outOfBudget holds when the budget is spent or the destination can no longer
// be reached with the moves left.
func (s *Session) outOfBudget() bool {
	movesMade := len(s.trail) - 1
	return len(s.trail) > s.maxMoves+1 ||
		s.remaining == Unreachable ||
		s.remaining > s.maxMoves-movesMade
}

// Hint returns the next cell on a shortest path from the current cell.
func (s *Session) Hint() (Cell, bool) {
	current, ok := s.Current()
	if !ok || current == s.destination {
		return Cell{}, false
	}
	path := s.engine.ShortestPath(current, s.destination)
	if len(path) < 2 {
		return Cell{}, false
	}
	return path[1], true
}

// AutoStep appends the next solver move while autosolving.
func (s *Session) AutoStep() (Cell, error) {
	if s.state != StateAutosolving {
		return Cell{}, fmt.Errorf("%w: state is %s", ErrMovesNotAccepted, s.state)
	}
	next, ok := s.Hint()
	if !ok {
		return Cell{}, fmt.Errorf("%w: from %v", ErrNoRoute, s.trail[len(s.trail)-1])
	}
	return next, s.appendCell(next, false)
}

// PossibleMoves lists the legal targets from the current cell.
func (s *Session) PossibleMoves() []Cell {
	current, ok := s.Current()
	if !ok {
		return nil
	}
	return s.engine.Neighbors(current)
}

func (s *Session) setState(next State) {
	if next == s.state {
		return
	}
	s.state = next
	if s.listener != nil {
		s.listener.StateChanged(next)
	}
}

func (s *Session) rejectTransition(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, s.state)
}

// Snapshot captures the session for persistence.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Start:       s.start,
		Destination: s.destination,
		Trail:       s.Trail(),
		State:       s.state,
	}
}

// RestoreSession rebuilds a session from a snapshot without firing notifications.
func RestoreSession(eng *Engine, snap Snapshot) (*Session, error) {
	s, err := NewSession(eng, snap.Start, snap.Destination)
	if err != nil {
		return nil, err
	}
	if !snap.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidSnapshot, snap.State)
	}
	if len(snap.Trail) > 0 {
		if snap.Trail[0] != snap.Start {
			return nil, fmt.Errorf("%w: trail must begin at the start cell", ErrInvalidSnapshot)
		}
		for i := 1; i < len(snap.Trail); i++ {
			if !eng.Board().CanStep(snap.Trail[i-1], snap.Trail[i]) {
				return nil, fmt.Errorf("%w: step %d %v -> %v is not a knight move", ErrInvalidSnapshot, i, snap.Trail[i-1], snap.Trail[i])
			}
		}
		s.trail = append(s.trail, snap.Trail...)
		s.remaining = eng.Distance(snap.Trail[len(snap.Trail)-1], snap.Destination)
	}
	if err := s.checkRestoredState(snap.State); err != nil {
		return nil, err
	}
	s.state = snap.State
	return s, nil
}

// checkRestoredState re-evaluates the won and failed predicates against the
// restored trail and rejects a state that play could not have produced.
func (s *Session) checkRestoredState(state State) error {
	n := len(s.trail)
	for i := 0; i < n-1; i++ {
		if s.trail[i] == s.destination {
			return fmt.Errorf("%w: trail passes the destination at step %d", ErrInvalidSnapshot, i)
		}
	}
	arrived := n > 0 && s.trail[n-1] == s.destination

	switch state {
	case StateCreated:
		if n > 0 {
			return fmt.Errorf("%w: state %s has a trail of %d cells", ErrInvalidSnapshot, state, n)
		}
		return nil
	case StateStarting:
		if n > 1 {
			return fmt.Errorf("%w: state %s allows only the placement, got %d cells", ErrInvalidSnapshot, state, n)
		}
		return nil
	case StateWon:
		if !arrived {
			return fmt.Errorf("%w: state %s but the trail ends away from the destination", ErrInvalidSnapshot, state)
		}
		return nil
	}

	if n == 0 {
		return fmt.Errorf("%w: state %s requires a placed knight", ErrInvalidSnapshot, state)
	}
	if arrived {
		return fmt.Errorf("%w: state %s but the trail reaches the destination", ErrInvalidSnapshot, state)
	}
	switch {
	case state == StateStarted && s.outOfBudget():
		return fmt.Errorf("%w: state %s but the budget of %d moves is spent", ErrInvalidSnapshot, state, s.maxMoves)
	case state == StateFailed && !s.outOfBudget():
		return fmt.Errorf("%w: state %s but the destination is still reachable in time", ErrInvalidSnapshot, state)
	}
	return nil
}

// GameState renders a client snapshot of the session.
func (s *Session) GameState() *GameState {
	board := s.engine.Board()
	gs := &GameState{
		State:             s.state,
		BoardSize:         board.Size(),
		Start:             s.start,
		Destination:       s.destination,
		Trail:             s.Trail(),
		MinMoves:          s.minMoves,
		MaxMoves:          s.maxMoves,
		MovesMade:         s.MovesMade(),
		MovesLeft:         s.MovesLeft(),
		RemainingDistance: s.remaining,
		GameOver:          s.state.IsTerminal(),
		Won:               s.state == StateWon,
	}
	if current, ok := s.Current(); ok {
		gs.Current = &current
	}
	if s.state.IsActive() {
		gs.PossibleMoves = s.PossibleMoves()
	}
	gs.TrailLabels = make([]string, len(s.trail))
	for i, c := range s.trail {
		gs.TrailLabels[i] = board.Label(c)
	}
	gs.BoardView = s.boardView()
	return gs
}

// boardView draws the board one string per row:
// '#' border, '.' open, '*' visited, 'S' start, 'D' destination, 'K' knight.
func (s *Session) boardView() []string {
	board := s.engine.Board()
	visited := make(map[Cell]bool, len(s.trail))
	for _, c := range s.trail {
		visited[c] = true
	}
	current, placed := s.Current()

	rows := make([]string, board.Size())
	for r := 0; r < board.Size(); r++ {
		var sb strings.Builder
		for c := 0; c < board.Size(); c++ {
			cell := Cell{Row: r, Col: c}
			switch {
			case placed && cell == current:
				sb.WriteByte('K')
			case cell == s.destination:
				sb.WriteByte('D')
			case cell == s.start:
				sb.WriteByte('S')
			case visited[cell]:
				sb.WriteByte('*')
			case board.IsBorder(cell):
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
		rows[r] = sb.String()
	}
	return rows
}
