package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/lost-knight/game/engine"
	"github.com/wricardo/lost-knight/game/service"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(hub, "s1")
	c2 := newTestClient(hub, "s1")

	hub.registerClient(c1)
	hub.registerClient(c2)
	assert.Len(t, hub.sessions["s1"], 2)

	hub.unregisterClient(c1)
	assert.Len(t, hub.sessions["s1"], 1)
	assert.True(t, hub.sessions["s1"][c2])

	_, open := <-c1.send
	assert.False(t, open, "send channel is closed on unregister")

	hub.unregisterClient(c2)
	_, exists := hub.sessions["s1"]
	assert.False(t, exists, "empty sessions are removed")

	// Unregistering twice is a no-op
	hub.unregisterClient(c2)
}

func TestHubBroadcastOnlyReachesSession(t *testing.T) {
	hub := NewHub()
	mine := newTestClient(hub, "mine")
	other := newTestClient(hub, "other")
	hub.registerClient(mine)
	hub.registerClient(other)

	cell := engine.Cell{Row: 2, Col: 3}
	hub.broadcastMessage(&Message{
		SessionID: "mine",
		Event:     EventGameEvents,
		GameState: &engine.GameState{State: engine.StateStarted, BoardSize: 10, Current: &cell},
		Events:    []service.GameEvent{{ID: "e1", Type: service.EventMove, Cell: &cell}},
	})

	select {
	case data := <-mine.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "mine", msg.SessionID)
		assert.Equal(t, EventGameEvents, msg.Event)
		require.NotNil(t, msg.GameState)
		assert.Equal(t, engine.StateStarted, msg.GameState.State)
		require.Len(t, msg.Events, 1)
		assert.Equal(t, service.EventMove, msg.Events[0].Type)
		assert.Equal(t, cell, *msg.Events[0].Cell)
	default:
		t.Fatal("expected a message for the subscribed session")
	}

	assert.Empty(t, other.send)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "s", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "s", Event: EventStateUpdate})

	_, exists := hub.sessions["s"]
	assert.False(t, exists)
}

func TestHubPublishEventsNeverBlocks(t *testing.T) {
	hub := NewHub()
	for i := 0; i < broadcastBuffer+10; i++ {
		hub.PublishEvents("s", nil, nil)
	}
	assert.Len(t, hub.broadcast, broadcastBuffer)
}

func TestHubImplementsEventPublisher(t *testing.T) {
	var _ service.EventPublisher = NewHub()
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		var initial *engine.GameState
		if r.URL.Query().Get("initial") != "" {
			initial = &engine.GameState{State: engine.StateCreated, BoardSize: 10}
		}
		hub.ServeWS(w, r, sessionID, initial)
	}))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func clientCount(t *testing.T, hub *Hub, sessionID string) int {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := hub.ClientCount(ctx, sessionID)
	require.NoError(t, err)
	return n
}

func TestWebSocketLifecycle(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "session=ws-test")

	require.Eventually(t, func() bool { return clientCount(t, hub, "ws-test") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return clientCount(t, hub, "ws-test") == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketInitialState(t *testing.T) {
	_, server := startHub(t)
	conn := dial(t, server, "session=init&initial=1")

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, EventStateUpdate, msg.Event)
	require.NotNil(t, msg.GameState)
	assert.Equal(t, engine.StateCreated, msg.GameState.State)
}

func TestWebSocketReceivesPublishedEvents(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "session=pub")
	require.Eventually(t, func() bool { return clientCount(t, hub, "pub") == 1 }, time.Second, 10*time.Millisecond)

	state := &engine.GameState{State: engine.StateWon, BoardSize: 10, Won: true, GameOver: true}
	hub.PublishEvents("pub", []service.GameEvent{{ID: "e1", Type: service.EventStateChanged, State: engine.StateWon}}, state)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "pub", msg.SessionID)
	assert.True(t, msg.GameState.Won)
	require.Len(t, msg.Events, 1)
	assert.Equal(t, engine.StateWon, msg.Events[0].State)
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(hub, "s")

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	hub.register <- client
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-client.send
	assert.False(t, open)

	n, err := hub.ClientCount(context.Background(), "s")
	assert.NoError(t, err)
	assert.Zero(t, n)
}
