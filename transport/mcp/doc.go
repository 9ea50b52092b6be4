// Package mcp exposes Lost Knight to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against the
// game server, and the JSON response is rendered as plain text for the agent.
// Cells are addressed by label (row letter, column number) in both directions.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - begin, game_state, move, bulk_move, hint, autosolve, stop, reset_game, new_game
//   - move_history, shortest_path, list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	err := client.ServeStdio()
//
//	// HTTP mode: hand JSON-RPC bodies to the server directly
//	resp := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
