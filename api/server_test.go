package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/lost-knight/game/config"
	"github.com/wricardo/lost-knight/game/engine"
	"github.com/wricardo/lost-knight/game/service"
	"github.com/wricardo/lost-knight/game/session"
	"github.com/wricardo/lost-knight/internal/metrics"
	"github.com/wricardo/lost-knight/transport/websocket"
)

const cornerConfig = `{
  "name": "Corner",
  "description": "A1 to H8",
  "board_size": 10,
  "start": "A1",
  "destination": "H8",
  "messages": {"welcome": "Go", "won": "Home", "lost": "Lost", "stopped": "Stopped"}
}`

const shortConfig = `name: Short
description: One move
board_size: 10
start: A1
destination: B3
messages:
  welcome: Go
  won: Home
  lost: Lost
`

type testEnv struct {
	server  *Server
	hub     *websocket.Hub
	metrics *metrics.Metrics
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corner.json"), []byte(cornerConfig), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "short.yaml"), []byte(shortConfig), 0644))

	configs, err := config.NewManager(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	m := metrics.New()
	svc := service.NewGameService(session.NewManager(), configs,
		service.WithMetrics(m),
		service.WithPublisher(hub),
	)
	return &testEnv{
		server:  NewServer(svc, hub, WithMetrics(m)),
		hub:     hub,
		metrics: m,
		dir:     dir,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) createSession(t *testing.T, configID string) *service.SessionInfo {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", map[string]string{"config_id": configID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[*service.SessionInfo](t, w)
}

func (e *testEnv) begin(t *testing.T, id string) *service.MoveResult {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions/"+id+"/begin", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[*service.MoveResult](t, w)
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)

	t.Run("default config", func(t *testing.T) {
		info := env.createSession(t, "")
		assert.NotEmpty(t, info.ID)
		assert.Equal(t, "corner", info.ConfigID)
		require.NotNil(t, info.GameState)
		assert.Equal(t, engine.StateCreated, info.GameState.State)
		assert.Equal(t, 6, info.GameState.MinMoves)
		assert.Equal(t, 10, info.GameState.MaxMoves)
	})

	t.Run("yaml config", func(t *testing.T) {
		info := env.createSession(t, "short")
		assert.Equal(t, engine.Cell{Row: 2, Col: 3}, info.GameState.Destination)
	})

	t.Run("unknown config", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions", map[string]string{"config_id": "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Available configs")
	})
}

func TestSessionCRUD(t *testing.T) {
	env := newTestEnv(t)
	a := env.createSession(t, "corner")
	b := env.createSession(t, "short")
	env.begin(t, b.ID)

	w := env.do(t, http.MethodGet, "/api/sessions/"+a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, a.ID, decode[*service.SessionInfo](t, w).ID)

	w = env.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}](t, w)
	assert.Equal(t, 2, list.Count)

	w = env.do(t, http.MethodGet, "/api/sessions?state=started", nil)
	list = decode[struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}](t, w)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 2, list.Total)

	w = env.do(t, http.MethodGet, "/api/sessions?limit=1&sort=created&order=asc", nil)
	list = decode[struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}](t, w)
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, a.ID, list.Sessions[0].ID)

	w = env.do(t, http.MethodDelete, "/api/sessions/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/sessions/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBeginAndMove(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "corner")

	// Moves before begin are rejected without an HTTP error
	w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]string{"to": "B3"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[*service.MoveResult](t, w).Success)

	result := env.begin(t, info.ID)
	assert.True(t, result.Success)
	assert.Equal(t, engine.StateStarted, result.GameState.State)
	require.NotNil(t, result.GameState.Current)
	assert.Equal(t, engine.Cell{Row: 1, Col: 1}, *result.GameState.Current)
	assert.NotEmpty(t, result.Events)

	w = env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/begin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	t.Run("by label", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]string{"to": "b3"})
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[*service.MoveResult](t, w)
		assert.True(t, res.Success)
		require.NotNil(t, res.Step)
		assert.Equal(t, "B3", res.Step.Label)
		assert.Equal(t, 5, res.Step.RemainingDistance)
	})

	t.Run("illegal move", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]string{"to": "B4"})
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[*service.MoveResult](t, w)
		assert.False(t, res.Success)
		assert.Equal(t, 1, res.GameState.MovesMade)
	})

	t.Run("by coordinates", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]int{"row": 3, "col": 5})
		require.Equal(t, http.StatusOK, w.Code)
		res := decode[*service.MoveResult](t, w)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.GameState.MovesMade)
	})

	t.Run("bad label", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]string{"to": "Z99"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing target", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+info.ID+"/move", strings.NewReader("{"))
		w := httptest.NewRecorder()
		env.server.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/zzzz/move", map[string]string{"to": "B3"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBulkMoveToVictory(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "corner")
	env.begin(t, info.ID)

	w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/bulk-move", map[string][]string{
		"moves": {"B3", "C5", "D7", "F8", "G6", "H8"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[*service.BulkMoveResult](t, w)
	assert.Equal(t, 6, res.MovesExecuted)
	assert.Equal(t, "won", res.StopReasonCode)
	assert.True(t, res.GameOver)
	assert.True(t, res.GameState.Won)
	assert.Equal(t, engine.Cell{Row: 1, Col: 1}, res.StartCell)
	assert.Equal(t, engine.Cell{Row: 8, Col: 8}, res.EndCell)

	w = env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/bulk-move", map[string][]string{"moves": {}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkMoveStopsOnIllegalMove(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "corner")
	env.begin(t, info.ID)

	w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/bulk-move", map[string]interface{}{
		"cells": []map[string]int{{"row": 2, "col": 3}, {"row": 2, "col": 4}, {"row": 3, "col": 5}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[*service.BulkMoveResult](t, w)
	assert.Equal(t, 1, res.MovesExecuted)
	assert.Equal(t, 3, res.RequestedMoves)
	assert.Equal(t, "illegal_move", res.StopReasonCode)
	assert.Equal(t, 2, res.StoppedOnMove)
}

func TestMoveThatLosesTheGame(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "short")
	env.begin(t, info.ID)

	w := env.do(t, http.MethodPost, "/api/sessions/"+info.ID+"/move", map[string]string{"to": "C2"})
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[*service.MoveResult](t, w)
	assert.Equal(t, engine.StateFailed, res.GameState.State)
	assert.True(t, res.GameState.GameOver)
	assert.False(t, res.GameState.Won)
}

func TestAutosolveHintStopReset(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "corner")
	base := "/api/sessions/" + info.ID

	w := env.do(t, http.MethodPost, base+"/autosolve", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "autosolve needs a started game")

	env.begin(t, info.ID)

	w = env.do(t, http.MethodGet, base+"/hint", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hint := decode[*service.HintResult](t, w)
	assert.True(t, hint.Available)
	assert.Equal(t, "B3", hint.NextLabel)
	assert.Equal(t, 6, hint.RemainingDistance)

	w = env.do(t, http.MethodPost, base+"/autosolve", nil)
	require.Equal(t, http.StatusOK, w.Code)
	solved := decode[*service.BulkMoveResult](t, w)
	assert.Equal(t, 6, solved.MovesExecuted)
	assert.Equal(t, engine.StateWon, solved.GameState.State)

	w = env.do(t, http.MethodPost, base+"/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "a won game cannot be stopped")

	w = env.do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[struct {
		State *engine.GameState `json:"state"`
	}](t, w)
	assert.Equal(t, engine.StateCreated, reset.State.State)
	assert.Empty(t, reset.State.Trail)

	w = env.do(t, http.MethodPost, base+"/replay", nil)
	require.Equal(t, http.StatusOK, w.Code)
	replay := decode[struct {
		State *engine.GameState `json:"state"`
	}](t, w)
	assert.Equal(t, engine.StateCreated, replay.State.State)
	assert.Equal(t, engine.Cell{Row: 1, Col: 1}, replay.State.Start, "fixed endpoints repeat")

	w = env.do(t, http.MethodPost, "/api/sessions/missing/replay", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.begin(t, info.ID)
	w = env.do(t, http.MethodPost, base+"/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, engine.StateStopped, decode[*engine.GameState](t, w).State)
}

func TestGameStateAndHistory(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "corner")
	base := "/api/sessions/" + info.ID
	env.begin(t, info.ID)
	env.do(t, http.MethodPost, base+"/move", map[string]string{"to": "B3"})

	w := env.do(t, http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[*engine.GameState](t, w)
	assert.Equal(t, []string{"A1", "B3"}, state.TrailLabels)
	assert.Len(t, state.BoardView, 10)

	w = env.do(t, http.MethodGet, base+"/history?order=asc&limit=1&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[*service.HistoryResponse](t, w)
	assert.Equal(t, 2, history.TotalMoves)
	require.Len(t, history.Moves, 1)
	assert.Equal(t, "B3", history.Moves[0].Label)
	assert.True(t, history.HasPrevious)

	w = env.do(t, http.MethodGet, "/api/sessions/zzzz/state", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShortestPath(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/path?config=corner&from=D4&to=D5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[*service.PathResult](t, w)
	assert.True(t, res.Reachable)
	assert.Equal(t, 3, res.Moves)
	assert.Equal(t, []string{"D4", "E6", "F4", "D5"}, res.Labels)

	w = env.do(t, http.MethodGet, "/api/path?from=4,4&to=4,4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[*service.PathResult](t, w)
	assert.Equal(t, 0, res.Moves)
	assert.Equal(t, []engine.Cell{{Row: 4, Col: 4}}, res.Path)

	w = env.do(t, http.MethodGet, "/api/path?from=0,0&to=D5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[*service.PathResult](t, w)
	assert.False(t, res.Reachable)
	assert.Equal(t, engine.Unreachable, res.Moves)

	w = env.do(t, http.MethodGet, "/api/path?from=Q1&to=D5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/path?config=nope&from=A1&to=D5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigs(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/configs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	configs := decode[[]*service.ConfigInfo](t, w)
	require.Len(t, configs, 2)
	assert.Equal(t, "corner", configs[0].ConfigID)
	assert.Equal(t, "short", configs[1].ConfigID)

	w = env.do(t, http.MethodGet, "/api/configs/short", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Short", decode[*engine.BoardConfig](t, w).Name)

	w = env.do(t, http.MethodGet, "/api/configs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{
			"name":        "Big Board",
			"description": "Random endpoints",
			"board_size":  16,
			"messages":    map[string]string{"welcome": "Hi", "won": "Won", "lost": "Lost"},
		}
		w := env.do(t, http.MethodPost, "/api/configs", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "big-board", decode[map[string]interface{}](t, w)["config_id"])
		assert.FileExists(t, filepath.Join(env.dir, "big-board.json"))

		info := env.createSession(t, "big-board")
		assert.Equal(t, 16, info.GameState.BoardSize)
	})

	t.Run("create invalid", func(t *testing.T) {
		body := map[string]interface{}{"name": "Tiny", "description": "x", "board_size": 4}
		w := env.do(t, http.MethodPost, "/api/configs", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create without name", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/configs", map[string]interface{}{"board_size": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestIDAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/configs", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))

	env.createSession(t, "corner")

	w = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `lostknight_http_request_duration_seconds_count{method="GET",route="/api/configs"} 1`)
	assert.Contains(t, body, "lostknight_sessions_created_total 1")
}

// failingService answers every call it overrides with an internal error.
type failingService struct {
	service.GameService
}

func (failingService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalErrors(t *testing.T) {
	srv := NewServer(failingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/configs", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "disk on fire")

	req = httptest.NewRequest(http.MethodGet, "/ws?session=x", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "no hub, no websocket route")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(service.ErrSessionNotFound))
	assert.Equal(t, http.StatusNotFound, statusFor(config.ErrConfigNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(engine.ErrInvalidTransition))
	assert.Equal(t, http.StatusBadRequest, statusFor(engine.ErrInvalidLabel))
	assert.Equal(t, http.StatusBadRequest, statusFor(engine.ErrConfigValidation))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestWebSocket(t *testing.T) {
	env := newTestEnv(t)
	info := env.createSession(t, "corner")

	ts := httptest.NewServer(env.server)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + info.ID

	_, resp, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session=nope", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	readMessage := func() websocket.Message {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	}

	initial := readMessage()
	assert.Equal(t, websocket.EventStateUpdate, initial.Event)
	assert.Equal(t, engine.StateCreated, initial.GameState.State)

	require.Eventually(t, func() bool {
		n, err := env.hub.ClientCount(context.Background(), info.ID)
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)

	env.begin(t, info.ID)

	update := readMessage()
	assert.Equal(t, websocket.EventGameEvents, update.Event)
	assert.Equal(t, engine.StateStarted, update.GameState.State)
	assert.NotEmpty(t, update.Events)
}
