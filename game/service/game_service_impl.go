package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wricardo/lost-knight/game/engine"
	"github.com/wricardo/lost-knight/internal/logging"
	"github.com/wricardo/lost-knight/internal/metrics"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher EventPublisher
	mu        sync.RWMutex
}

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithMetrics records session and path metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *gameServiceImpl) {
		s.metrics = m
	}
}

// WithPublisher forwards game events, typically to the WebSocket hub.
func WithPublisher(p EventPublisher) Option {
	return func(s *gameServiceImpl) {
		s.publisher = p
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// loadConfig resolves a config ID, falling back to the default for "".
func (s *gameServiceImpl) loadConfig(configID string) (*engine.BoardConfig, string, error) {
	if configID == "" {
		config := s.configs.GetDefault()
		return config, s.getConfigID(config.Name), nil
	}
	config, err := s.configs.LoadConfig(configID)
	if err == nil {
		return config, configID, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, "", fmt.Errorf("failed to load config %s: %w", configID, err)
	}
	// Provide helpful error message with available options
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return nil, "", fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, configIDs)
	}
	return nil, "", fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configID)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// buildState renders the session's game state with its message.
func (s *gameServiceImpl) buildState(sess *Session) *engine.GameState {
	state := sess.Game.GameState()
	state.Message = stateMessage(sess, state.State)
	state.ConfigName = sess.ConfigID
	return state
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      s.buildState(sess),
		BoardConfig:    sess.Config,
	}
}

// finish persists the session and publishes what the operation produced.
func (s *gameServiceImpl) finish(sess *Session, events []GameEvent, state *engine.GameState) {
	if err := s.sessions.Save(sess.ID); err != nil {
		s.logger.Warn("failed to persist session", "session", sess.ID, "error", err)
	}
	if s.publisher != nil && len(events) > 0 {
		s.publisher.PublishEvents(sess.ID, events, state)
	}
}

func (s *gameServiceImpl) recordMove(ok bool) {
	if s.metrics == nil {
		return
	}
	if ok {
		s.metrics.MovesTotal.WithLabelValues("accepted").Inc()
	} else {
		s.metrics.MovesTotal.WithLabelValues("rejected").Inc()
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, configID, err := s.loadConfig(configID)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
		s.metrics.ActiveSessions.Set(float64(len(s.sessions.List())))
	}
	s.logger.Info("session created", "session", sess.ID, "config", configID,
		"start", sess.Game.Start(), "destination", sess.Game.Destination(), "min_moves", sess.Game.MinMoves())

	return s.info(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(len(s.sessions.List())))
	}
	return nil
}

// Begin places the knight on the start cell and hands control to the player.
func (s *gameServiceImpl) Begin(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	c := s.attach(sess)
	defer c.detach()

	if err := sess.Game.Begin(); err != nil {
		return nil, err
	}
	if err := sess.Game.Place(); err != nil {
		return nil, err
	}
	if err := sess.Game.MarkStarted(); err != nil {
		return nil, err
	}

	state := s.buildState(sess)
	s.finish(sess, c.events, state)
	return &MoveResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    c.events,
	}, nil
}

// Move executes a single knight move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, target engine.Cell) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	c := s.attach(sess)
	defer c.detach()

	from, _ := sess.Game.Current()
	moveErr := sess.Game.Move(target)
	s.recordMove(moveErr == nil)

	state := s.buildState(sess)
	result := &MoveResult{
		Success:   moveErr == nil,
		GameState: state,
		Message:   state.Message,
		Events:    c.events,
	}
	if moveErr != nil {
		result.Message = moveErr.Error()
		return result, nil
	}

	result.Step = &StepInfo{
		Idx:               1,
		From:              from,
		To:                target,
		Label:             sess.Game.Engine().Board().Label(target),
		RemainingDistance: sess.Game.RemainingDistance(),
		State:             sess.Game.State(),
		Success:           true,
	}
	s.finish(sess, c.events, state)
	return result, nil
}

// BulkMove executes moves in sequence, stopping at the first rejected move or
// when the game ends.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, targets []engine.Cell) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	c := s.attach(sess)
	defer c.detach()

	startCell, _ := sess.Game.Current()
	result := &BulkMoveResult{
		RequestedMoves: len(targets),
		Success:        true,
		StartCell:      startCell,
	}

	// Limit moves to prevent abuse
	if len(targets) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		targets = targets[:engine.MaxBulkMoves]
	}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sess.Game.State().IsTerminal() {
			result.StoppedReason = fmt.Sprintf("game is %s", sess.Game.State())
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}

		from, _ := sess.Game.Current()
		if err := sess.Game.Move(target); err != nil {
			s.recordMove(false)
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d rejected: %v", i+1, err)
			result.StopReasonCode = "illegal_move"
			result.StoppedOnMove = i + 1
			break
		}
		s.recordMove(true)
		result.MovesExecuted++
		result.Steps = append(result.Steps, s.step(sess, i+1, from, target))
	}

	s.completeBulk(sess, c, result)
	return result, nil
}

// Autosolve hands the session to the solver and runs it to completion. Calling
// it on a session that is already autosolving resumes the run.
func (s *gameServiceImpl) Autosolve(ctx context.Context, sessionID string) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	c := s.attach(sess)
	defer c.detach()

	// A run interrupted by its context left the session autosolving; keep stepping.
	if sess.Game.State() != engine.StateAutosolving {
		if err := sess.Game.Autosolve(); err != nil {
			return nil, err
		}
	}

	startCell, _ := sess.Game.Current()
	result := &BulkMoveResult{Success: true, StartCell: startCell}
	for i := 1; sess.Game.State() == engine.StateAutosolving; i++ {
		if err := ctx.Err(); err != nil {
			// The session stays autosolving until a later call finishes it.
			s.completeBulk(sess, c, result)
			return nil, err
		}
		from, _ := sess.Game.Current()
		next, err := sess.Game.AutoStep()
		if err != nil {
			result.Success = false
			result.StoppedReason = err.Error()
			result.StopReasonCode = "illegal_move"
			result.StoppedOnMove = i
			break
		}
		s.recordMove(true)
		result.MovesExecuted++
		result.Steps = append(result.Steps, s.step(sess, i, from, next))
	}
	result.RequestedMoves = result.MovesExecuted

	s.completeBulk(sess, c, result)
	return result, nil
}

func (s *gameServiceImpl) step(sess *Session, idx int, from, to engine.Cell) StepInfo {
	return StepInfo{
		Idx:               idx,
		From:              from,
		To:                to,
		Label:             sess.Game.Engine().Board().Label(to),
		RemainingDistance: sess.Game.RemainingDistance(),
		State:             sess.Game.State(),
		Success:           true,
	}
}

func (s *gameServiceImpl) completeBulk(sess *Session, c *eventCollector, result *BulkMoveResult) {
	state := s.buildState(sess)
	result.GameState = state
	result.Events = c.events
	if result.Events == nil {
		result.Events = []GameEvent{}
	}
	result.EndCell, _ = sess.Game.Current()
	result.GameOver = state.GameOver
	result.Message = state.Message
	if result.StopReasonCode == "" {
		switch state.State {
		case engine.StateWon:
			result.StopReasonCode = "won"
		case engine.StateFailed:
			result.StopReasonCode = "failed"
		}
	}
	s.finish(sess, c.events, state)
}

// Stop aborts an active session.
func (s *gameServiceImpl) Stop(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	c := s.attach(sess)
	defer c.detach()

	if err := sess.Game.Stop(); err != nil {
		return nil, err
	}
	state := s.buildState(sess)
	s.finish(sess, c.events, state)
	return state, nil
}

// Hint suggests the next move without changing the session.
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	game := sess.Game
	result := &HintResult{
		RemainingDistance: game.RemainingDistance(),
		MovesLeft:         game.MovesLeft(),
	}
	current, ok := game.Current()
	if !ok || !game.State().IsActive() {
		return result, nil
	}
	next, ok := game.Hint()
	if !ok {
		return result, nil
	}

	board := game.Engine().Board()
	route := game.Engine().ShortestPath(current, game.Destination())
	result.Available = true
	result.Next = &next
	result.NextLabel = board.Label(next)
	result.Route = route
	result.RouteLabels = board.PathLabels(route)
	return result, nil
}

// Reset restarts the session with the same endpoints.
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	return s.restart(sessionID, EventReset, "Game reset to initial state", func(sess *Session) (engine.Cell, engine.Cell, error) {
		return sess.Game.Start(), sess.Game.Destination(), nil
	})
}

// Replay starts a new game on the session's board. Endpoints the
// configuration leaves open are drawn again; fixed and seeded ones repeat.
func (s *gameServiceImpl) Replay(ctx context.Context, sessionID string) (*engine.GameState, error) {
	return s.restart(sessionID, EventReplay, "New game started", func(sess *Session) (engine.Cell, engine.Cell, error) {
		return sess.Config.Endpoints(nil)
	})
}

func (s *gameServiceImpl) restart(sessionID, eventType, message string, endpoints func(*Session) (engine.Cell, engine.Cell, error)) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	start, dest, err := endpoints(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to restart session: %w", err)
	}
	game, err := engine.NewSession(sess.Game.Engine(), start, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to restart session: %w", err)
	}
	sess.Game = game

	c := &eventCollector{svc: s, sess: sess}
	c.add(GameEvent{
		Type:    eventType,
		Message: message,
		State:   game.State(),
	})

	state := s.buildState(sess)
	s.finish(sess, c.events, state)
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildState(sess), nil
}

// GetMoveHistory returns the trail, paginated
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := trailHistory(sess.Game)
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

func trailHistory(game *engine.Session) []MoveHistoryEntry {
	trail := game.Trail()
	eng := game.Engine()
	history := make([]MoveHistoryEntry, len(trail))
	for i, c := range trail {
		entry := MoveHistoryEntry{
			MoveNumber:        i,
			To:                c,
			Label:             eng.Board().Label(c),
			RemainingDistance: eng.Distance(c, game.Destination()),
		}
		if i > 0 {
			from := trail[i-1]
			entry.From = &from
		}
		history[i] = entry
	}
	return history
}

// ShortestPath answers a path query on the board of a configuration.
func (s *gameServiceImpl) ShortestPath(ctx context.Context, configID string, from, to engine.Cell) (*PathResult, error) {
	s.mu.RLock()
	config, _, err := s.loadConfig(configID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	board, err := config.Board()
	if err != nil {
		return nil, err
	}
	path := engine.NewEngine(board).ShortestPath(from, to)

	if s.metrics != nil {
		s.metrics.PathQueries.Inc()
		if len(path) > 0 {
			s.metrics.PathLength.Observe(float64(path.Moves()))
		}
	}

	return &PathResult{
		BoardSize: board.Size(),
		From:      from,
		To:        to,
		Reachable: len(path) > 0,
		Moves:     path.Moves(),
		Path:      path,
		Labels:    board.PathLabels(path),
	}, nil
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration, or the default for ""
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.BoardConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	config, _, err := s.loadConfig(configID)
	return config, err
}

// SaveConfig saves a board configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configID, config)
}
