// Package api provides the HTTP REST API for Lost Knight.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - create a session ({"config_id": "classic"}, optional)
//   - GET /api/sessions - list sessions (?sort=created|accessed&order=asc|desc&limit=N&state=started)
//   - GET /api/sessions/{id} - session details
//   - DELETE /api/sessions/{id} - delete a session
//
// Game operations:
//   - GET /api/sessions/{id}/state - current game state
//   - POST /api/sessions/{id}/begin - place the knight and start
//   - POST /api/sessions/{id}/move - {"to": "B3"} or {"row": 2, "col": 3}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["B3", "C5"]} or {"cells": [{"row": 2, "col": 3}]}
//   - POST /api/sessions/{id}/autosolve - walk a shortest route to the destination
//   - POST /api/sessions/{id}/stop - stop an active game
//   - GET /api/sessions/{id}/hint - next cell on a shortest route
//   - POST /api/sessions/{id}/reset - restart with the same endpoints
//   - POST /api/sessions/{id}/replay - new game, random endpoints drawn again
//   - GET /api/sessions/{id}/history - trail with pagination (?page=&limit=&order=)
//
// Paths and configuration:
//   - GET /api/path?config=<id>&from=<cell>&to=<cell> - standalone shortest path
//   - GET /api/configs - list board configurations
//   - POST /api/configs - save a configuration
//   - GET /api/configs/{name} - one configuration
//
// Other:
//   - GET /ws?session=<id> - WebSocket updates for a session
//   - GET /metrics - Prometheus metrics, when enabled
//   - GET /healthz - liveness
//
// Rejected moves are reported in the response body with success=false and a
// 200 status. Unknown sessions and configs map to 404, invalid state
// transitions to 409 and malformed input to 400. Every response carries an
// X-Request-ID header.
package api
