package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/wricardo/lost-knight/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Begin(ctx context.Context, sessionID string) (*MoveResult, error)
	Move(ctx context.Context, sessionID string, target engine.Cell) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, targets []engine.Cell) (*BulkMoveResult, error)
	Autosolve(ctx context.Context, sessionID string) (*BulkMoveResult, error)
	Stop(ctx context.Context, sessionID string) (*engine.GameState, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)
	Replay(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Path queries
	ShortestPath(ctx context.Context, configID string, from, to engine.Cell) (*PathResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configID string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configID string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.BoardConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configID string, config *engine.BoardConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(id string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(id string, config *engine.BoardConfig) error
}

// EventPublisher receives the events produced by each game operation.
type EventPublisher interface {
	PublishEvents(sessionID string, events []GameEvent, state *engine.GameState)
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Config         *engine.BoardConfig
	Game           *engine.Session
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewSession builds a session for config, drawing random endpoints from rng
// when the configuration leaves them open.
func NewSession(id, configID string, config *engine.BoardConfig, rng *rand.Rand) (*Session, error) {
	board, err := config.Board()
	if err != nil {
		return nil, err
	}
	start, dest, err := config.Endpoints(rng)
	if err != nil {
		return nil, err
	}
	game, err := engine.NewSession(engine.NewEngine(board), start, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	now := time.Now()
	return &Session{
		ID:             id,
		ConfigID:       configID,
		Config:         config,
		Game:           game,
		CreatedAt:      now,
		LastAccessedAt: now,
	}, nil
}
