package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/lost-knight/game/engine"
	"github.com/wricardo/lost-knight/game/service"
)

// Version is reported to MCP clients during initialization.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Lost Knight",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Lost Knight - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Guide a chess knight from its start cell to the destination cell within the move budget.
Cells are labelled with a row letter and a column number, e.g. A1 or H8.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage games
- begin: place the knight on its start cell
- game_state: board, trail, budget and legal next moves
- move / bulk_move: knight moves by target cell label - require intent explanation
- hint: next cell on a shortest route
- autosolve: let the knight walk a shortest route
- stop / reset_game / new_game: end a game, restart it, or play fresh endpoints
- move_history: trail so far
- shortest_path: standalone path query on a configuration's board
- list_configs: available boards
- game_instructions: full rules

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session with optional config selection"),
		mcp.WithString("config_id", mcp.Description("ID of the board config to use (optional, see list_configs)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionIDParam(),
	), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current game state"),
		sessionIDParam(),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("begin",
		mcp.WithDescription("Place the knight on its start cell and start the game"),
		sessionIDParam(),
	), c.handleBegin)

	c.mcpServer.AddTool(mcp.NewTool("move",
		mcp.WithDescription("Move the knight to a cell one knight move away"),
		sessionIDParam(),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target cell label, e.g. C2")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)")),
	), c.handleMove)

	c.mcpServer.AddTool(mcp.NewTool("bulk_move",
		mcp.WithDescription(fmt.Sprintf("Execute up to %d knight moves in sequence, stopping at the first illegal move or when the game ends", engine.MaxBulkMoves)),
		sessionIDParam(),
		mcp.WithArray("moves",
			mcp.Required(),
			mcp.Items(map[string]any{"type": "string"}),
			mcp.Description("Target cell labels in order, e.g. [\"B3\", \"D4\"]"),
		),
		mcp.WithString("intent", mcp.Description("Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)")),
	), c.handleBulkMove)

	c.mcpServer.AddTool(mcp.NewTool("hint",
		mcp.WithDescription("Suggest the next cell on a shortest route to the destination"),
		sessionIDParam(),
	), c.handleHint)

	c.mcpServer.AddTool(mcp.NewTool("autosolve",
		mcp.WithDescription("Let the knight walk a shortest route to the destination"),
		sessionIDParam(),
	), c.handleAutosolve)

	c.mcpServer.AddTool(mcp.NewTool("stop",
		mcp.WithDescription("Stop the game"),
		sessionIDParam(),
	), c.handleStop)

	c.mcpServer.AddTool(mcp.NewTool("reset_game",
		mcp.WithDescription("Reset the game to its initial state, keeping start and destination"),
		sessionIDParam(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("new_game",
		mcp.WithDescription("Start a new game in the same session; random start and destination are drawn again"),
		sessionIDParam(),
	), c.handleNewGame)

	c.mcpServer.AddTool(mcp.NewTool("move_history",
		mcp.WithDescription("Get move history for a session"),
		sessionIDParam(),
		mcp.WithNumber("page", mcp.Description("Page number")),
		mcp.WithNumber("limit", mcp.Description("Items per page")),
	), c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.NewTool("shortest_path",
		mcp.WithDescription("Find a shortest knight path between two cells on a config's board"),
		mcp.WithString("from", mcp.Required(), mcp.Description("Origin cell label")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination cell label")),
		mcp.WithString("config_id", mcp.Description("Board config (optional, defaults to the server default)")),
	), c.handleShortestPath)

	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available board configurations"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get comprehensive game instructions and rules"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the MCP protocol on stdin and stdout.
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func sessionPath(args map[string]any, suffix string) (string, error) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := ""
		if s.GameState != nil {
			state = string(s.GameState.State)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, State: %s, Created: %s)\n",
			s.ID, s.ConfigID, state, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleBegin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/begin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to := stringArg(args, "to")
	if to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}

	// The intent argument is only for the caller's benefit
	var result service.MoveResult
	if err := c.apiCall(ctx, http.MethodPost, path, map[string]string{"to": to}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/bulk-move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var moves []string
	switch raw := args["moves"].(type) {
	case []any:
		for _, m := range raw {
			if label, ok := m.(string); ok {
				moves = append(moves, strings.TrimSpace(label))
			}
		}
	case string:
		for _, label := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
			moves = append(moves, label)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must list at least one cell label"), nil
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, http.MethodPost, path, map[string]any{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(stringArg(args, "session_id"), &result)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/hint")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var hint service.HintResult
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHint(&hint)), nil
}

func (c *Client) handleAutosolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/autosolve")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(stringArg(args, "session_id"), &result)), nil
}

func (c *Client) handleStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), "/stop")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.restart(ctx, request, "/reset")
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.restart(ctx, request, "/replay")
}

func (c *Client) restart(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	path, err := sessionPath(request.GetArguments(), action)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, http.MethodPost, path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleShortestPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	from, to := stringArg(args, "from"), stringArg(args, "to")
	if from == "" || to == "" {
		return mcp.NewToolResultError("from and to are required"), nil
	}

	query := url.Values{"from": {from}, "to": {to}}
	if configID := stringArg(args, "config_id"); configID != "" {
		query.Set("config", configID)
	}

	var result service.PathResult
	if err := c.apiCall(ctx, http.MethodGet, "/api/path?"+query.Encode(), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPath(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		endpoints := "random start and destination"
		if config.Start != "" || config.Destination != "" {
			endpoints = fmt.Sprintf("start %s, destination %s", orRandom(config.Start), orRandom(config.Destination))
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, %s\n\n",
			config.Name, config.ConfigID, config.Description, config.BoardSize, config.BoardSize, endpoints)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func orRandom(label string) string {
	if label == "" {
		return "random"
	}
	return label
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Lost Knight - Complete Instructions

GAME OBJECTIVE:
A chess knight is lost on a square board. Move it from its start cell (S) to the
destination cell (D) before the move budget runs out.

THE BOARD:
• The outermost ring of cells is a border (#); the knight can never stand on it.
• Playable cells are labelled with a row letter and a column number: A1 is the
  top-left playable cell, and on a 10x10 board H8 is the bottom-right one.

MOVES:
• The knight moves in an L: two cells in one direction and one cell sideways.
• From C3 the candidates are A2, A4, B1, B5, D1, D5, E2 and E4 (when on the board).
• The game state lists the legal next moves for the current cell.

MOVE BUDGET:
• min_moves is the length of a shortest route from start to destination.
• max_moves is 2 x (min_moves - 1): the most moves you may spend.
• After every move the remaining shortest distance is recomputed. If it is larger
  than the moves you have left, the knight is lost and the game is failed.

GAME FLOW:
1. create_session - a new game in state "created"
2. begin - the knight is placed on the start cell and the game is "started"
3. move / bulk_move - walk the knight; reaching D wins
4. hint - the next cell of a shortest route from where the knight stands
5. autosolve - the knight walks a shortest route by itself
6. stop - ends the game; reset_game starts it over with the same endpoints,
   new_game draws new random endpoints unless the board fixes them

BOARD VIEW LEGEND:
• # - border    . - playable cell    * - visited cell
• S - start     D - destination      K - knight

STRATEGY:
- Ask for shortest_path before committing to a long detour.
- Moves that look like progress often are not: a knight needs 3 moves to reach the
  cell directly next to it, and 4 moves between diagonal neighbours near a corner.
- Use bulk_move for efficiency once a route is planned.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func labelFor(state *engine.GameState, c engine.Cell) string {
	board, err := engine.NewBoard(state.BoardSize)
	if err != nil {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return board.Label(c)
}

func labelsFor(state *engine.GameState, cells []engine.Cell) []string {
	labels := make([]string, len(cells))
	for i, c := range cells {
		labels[i] = labelFor(state, c)
	}
	return labels
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	current := "-"
	if state.Current != nil {
		current = labelFor(state, *state.Current)
	}
	fmt.Fprintf(&b, "State: %s | Knight: %s | Start: %s | Destination: %s\n",
		state.State, current, labelFor(state, state.Start), labelFor(state, state.Destination))
	fmt.Fprintf(&b, "Moves: %d/%d (min %d) | Moves left: %d | Remaining distance: %d\n\n",
		state.MovesMade, state.MaxMoves, state.MinMoves, state.MovesLeft, state.RemainingDistance)

	for _, row := range state.BoardView {
		b.WriteString(row)
		b.WriteString("\n")
	}

	if len(state.TrailLabels) > 0 {
		fmt.Fprintf(&b, "\nTrail: %s\n", strings.Join(state.TrailLabels, " → "))
	}
	if len(state.PossibleMoves) > 0 && !state.GameOver {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(labelsFor(state, state.PossibleMoves), ","))
	}

	if state.GameOver {
		switch {
		case state.Won:
			b.WriteString("\n🎉 VICTORY!")
		case state.State == engine.StateFailed:
			b.WriteString("\n💀 LOST")
		default:
			b.WriteString("\n⏹ STOPPED")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		fmt.Fprintf(&b, "✗ Move rejected: %s\n", result.Message)
	}

	if s := result.Step; s != nil && result.GameState != nil {
		fmt.Fprintf(&b, "Step: %s→%s remaining=%d state=%s\n",
			labelFor(result.GameState, s.From), s.Label, s.RemainingDistance, s.State)
	}

	formatEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	configName, size := "", 0
	if result.GameState != nil {
		configName, size = result.GameState.ConfigName, result.GameState.BoardSize
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Board: %dx%d\n", sessionID, configName, size, size)
	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s (%s", result.StoppedReason, result.StopReasonCode)
		if result.StoppedOnMove > 0 {
			fmt.Fprintf(&b, ", move %d", result.StoppedOnMove)
		}
		b.WriteString(")\n")
	}

	if len(result.Steps) > 0 && result.GameState != nil {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			fmt.Fprintf(&b, "%d. %s→%s remaining=%d\n", s.Idx, labelFor(result.GameState, s.From), s.Label, s.RemainingDistance)
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\n")
		formatEvents(&b, result.Events)
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHint(hint *service.HintResult) string {
	if !hint.Available {
		return fmt.Sprintf("No hint available (remaining distance: %d, moves left: %d)", hint.RemainingDistance, hint.MovesLeft)
	}
	return fmt.Sprintf("Next move: %s\nShortest route: %s\nRemaining distance: %d | Moves left: %d",
		hint.NextLabel, strings.Join(hint.RouteLabels, " → "), hint.RemainingDistance, hint.MovesLeft)
}

func formatPath(result *service.PathResult) string {
	if !result.Reachable {
		return fmt.Sprintf("No route on the %dx%d board", result.BoardSize, result.BoardSize)
	}
	return fmt.Sprintf("Shortest path (%d moves): %s", result.Moves, strings.Join(result.Labels, " → "))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, entry := range history.Moves {
		if entry.MoveNumber == 0 {
			fmt.Fprintf(&b, "#0: placed on %s (distance %d)\n", entry.Label, entry.RemainingDistance)
			continue
		}
		fmt.Fprintf(&b, "#%d: → %s (distance %d)\n", entry.MoveNumber, entry.Label, entry.RemainingDistance)
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page.")
	}
	return b.String()
}
