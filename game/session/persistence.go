package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/lost-knight/game/engine"
	"github.com/wricardo/lost-knight/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session. It carries its own
// board configuration so that later edits to the config files cannot
// invalidate a stored trail.
type PersistedSessionData struct {
	ID             string              `json:"id"`
	ConfigID       string              `json:"config_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Config         *engine.BoardConfig `json:"config"`
	Game           engine.Snapshot     `json:"game"`
}

func marshalSession(session *service.Session) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	data := PersistedSessionData{
		ID:             session.ID,
		ConfigID:       session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Config:         session.Config,
		Game:           session.Game.Snapshot(),
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return jsonData, nil
}

func unmarshalSession(jsonData []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Config == nil {
		return nil, fmt.Errorf("session %s has no board configuration", data.ID)
	}

	board, err := data.Config.Board()
	if err != nil {
		return nil, fmt.Errorf("failed to restore board: %w", err)
	}
	game, err := engine.RestoreSession(engine.NewEngine(board), data.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigID,
		Config:         data.Config,
		Game:           game,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
