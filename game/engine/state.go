package engine

// State is a session lifecycle state.
type State string

const (
	StateCreated     State = "created"
	StateStarting    State = "starting"
	StateStarted     State = "started"
	StateStopped     State = "stopped"
	StateAutosolving State = "autosolving"
	StateWon         State = "won"
	StateFailed      State = "failed"
)

// IsTerminal reports whether no further moves or transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateWon || s == StateFailed || s == StateStopped
}

// IsActive reports whether the session is in play.
func (s State) IsActive() bool {
	return s == StateStarted || s == StateAutosolving
}

// acceptsMoves reports whether trail appends are allowed; starting only accepts
// the forced placement of the start cell and autosolving only solver steps.
func (s State) acceptsMoves() bool {
	return s == StateStarting || s == StateStarted || s == StateAutosolving
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateCreated, StateStarting, StateStarted, StateStopped, StateAutosolving, StateWon, StateFailed:
		return true
	}
	return false
}

// Listener receives session notifications synchronously on the caller's goroutine.
// For a single append TrailUpdated always fires before StateChanged.
type Listener interface {
	TrailUpdated(trail []Cell)
	StateChanged(state State)
}

// ListenerFuncs adapts a pair of functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnTrail func(trail []Cell)
	OnState func(state State)
}

func (l ListenerFuncs) TrailUpdated(trail []Cell) {
	if l.OnTrail != nil {
		l.OnTrail(trail)
	}
}

func (l ListenerFuncs) StateChanged(state State) {
	if l.OnState != nil {
		l.OnState(state)
	}
}
