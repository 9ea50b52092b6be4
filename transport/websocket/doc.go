// Package websocket pushes live game updates to browser clients.
//
// A Hub keeps the connected clients of every session and is the game
// service's EventPublisher: after each operation the service hands the hub
// the emitted events together with the new game state, and the hub fans them
// out to every client watching that session.
//
// Clients connect to /ws?session=<id>. The first message is the current
// state; later messages look like
//
//	{"session_id":"a1b2","event":"game_events","game_state":{...},"events":[...]}
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, configs, service.WithPublisher(hub))
//
// All client bookkeeping runs on the Run goroutine. PublishEvents never
// blocks the caller; updates are dropped when the queue is full.
package websocket
