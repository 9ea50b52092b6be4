package service

import (
	"time"

	"github.com/wricardo/lost-knight/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigID       string              `json:"config_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	BoardConfig    *engine.BoardConfig `json:"board_config"`
}

// MoveResult contains the result of a single move or control operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of several moves or an autosolve run
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // illegal_move|game_over|won|failed
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartCell engine.Cell `json:"start_cell"`
	EndCell   engine.Cell `json:"end_cell"`

	Steps []StepInfo `json:"steps,omitempty"`

	GameOver bool   `json:"game_over"`
	Message  string `json:"message,omitempty"`
}

// StepInfo is a compact record for one executed move
type StepInfo struct {
	Idx               int          `json:"idx"`
	From              engine.Cell  `json:"from"`
	To                engine.Cell  `json:"to"`
	Label             string       `json:"label"`
	RemainingDistance int          `json:"remaining_distance"`
	State             engine.State `json:"state"`
	Success           bool         `json:"success"`
}

// Event types
const (
	EventPlaced       = "placed"
	EventMove         = "move"
	EventStateChanged = "state_changed"
	EventReset        = "reset"
	EventReplay       = "replay"
)

// GameEvent represents something that happened during play
type GameEvent struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Cell      *engine.Cell `json:"cell,omitempty"`
	State     engine.State `json:"state,omitempty"`
}

// HintResult suggests the next move and the rest of a shortest route
type HintResult struct {
	Available         bool          `json:"available"`
	Next              *engine.Cell  `json:"next,omitempty"`
	NextLabel         string        `json:"next_label,omitempty"`
	Route             []engine.Cell `json:"route,omitempty"`
	RouteLabels       []string      `json:"route_labels,omitempty"`
	RemainingDistance int           `json:"remaining_distance"`
	MovesLeft         int           `json:"moves_left"`
}

// PathResult answers a standalone shortest-path query
type PathResult struct {
	BoardSize int           `json:"board_size"`
	From      engine.Cell   `json:"from"`
	To        engine.Cell   `json:"to"`
	Reachable bool          `json:"reachable"`
	Moves     int           `json:"moves"`
	Path      []engine.Cell `json:"path"`
	Labels    []string      `json:"labels"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// MoveHistoryEntry is one cell of the trail. Move 0 is the placement on the start cell.
type MoveHistoryEntry struct {
	MoveNumber        int          `json:"move_number"`
	From              *engine.Cell `json:"from,omitempty"`
	To                engine.Cell  `json:"to"`
	Label             string       `json:"label"`
	RemainingDistance int          `json:"remaining_distance"`
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []MoveHistoryEntry `json:"moves"`
	TotalMoves  int                `json:"total_moves"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalPages  int                `json:"total_pages"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	BoardSize   int    `json:"board_size"`
	Start       string `json:"start,omitempty"`
	Destination string `json:"destination,omitempty"`
}
