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

	"github.com/wricardo/mcp-training/blockfall/game/engine"
	"github.com/wricardo/mcp-training/blockfall/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Blockfall",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Blockfall - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Pieces fall into a 10x20 well. Steer and rotate them so they complete rows.
Full rows clear and score lines x 100 x level. The game ends when a new piece cannot spawn.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions / get_session: Inspect sessions
- game_state: Board, active piece, score and level
- act: Apply one intent (left, right, rotate, soft_drop, hard_drop, pause, tick)
- bulk_act: Apply up to 100 intents at once
- tick: Advance gravity by one row
- autotick: Start or stop real-time gravity
- suggest: Ask the planner for a placement and the intents that reach it
- reset_game: Start over
- list_configs: List difficulty presets
- game_instructions: Full rules

NOTE: The 'reason' parameter on act/bulk_act serves as rubber duck debugging - explain your plan!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentNames() []string {
	names := make([]string, 0, len(engine.Intents()))
	for _, intent := range engine.Intents() {
		names = append(names, string(intent))
	}
	return names
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (optional, see list_configs)",
				},
				"auto_tick": map[string]interface{}{
					"type":        "boolean",
					"description": "Start real-time gravity immediately",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, active piece, score and level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "act",
		Description: "Apply one intent to the active piece",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"intent": map[string]interface{}{
					"type":        "string",
					"enum":        intentNames(),
					"description": "Intent to apply",
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "intent"},
		},
	}, c.handleAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_act",
		Description: "Apply several intents in order; stops early on game over or pause",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"intents": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": intentNames(),
					},
					"description": fmt.Sprintf("Intents to apply (max %d)", engine.MaxBulkIntents),
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the plan",
				},
			},
			Required: []string{"session_id", "intents"},
		},
	}, c.handleBulkAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance gravity by one row, locking the piece if it cannot fall",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "autotick",
		Description: "Start or stop real-time gravity for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"enabled": map[string]interface{}{
					"type":        "boolean",
					"description": "true starts gravity, false stops it",
				},
			},
			Required: []string{"session_id", "enabled"},
		},
	}, c.handleAutoTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "suggest",
		Description: "Ask the planner for the best placement of the active piece",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleSuggest)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available difficulty presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules and strategy tips",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
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

// arguments returns the tool call arguments, tolerating a missing object
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	autoTick, _ := args["auto_tick"].(bool)

	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}
	if autoTick {
		body["auto_tick"] = true
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, status := 0, engine.StatusRunning
		if s.GameState != nil {
			score, status = s.GameState.Score, s.GameState.Status
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, score, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	intent, _ := args["intent"].(string)

	var result service.ActionResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/action"), map[string]string{"intent": intent}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleBulkAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	intentsRaw, _ := args["intents"].([]interface{})

	intents := make([]string, 0, len(intentsRaw))
	for _, raw := range intentsRaw {
		if intent, ok := raw.(string); ok {
			intents = append(intents, intent)
		}
	}

	var result service.BulkActionResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/actions"), map[string]interface{}{"intents": intents}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkActionResult(sessionID, &result)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleAutoTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	enabled, _ := args["enabled"].(bool)

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/autotick"), map[string]bool{"enabled": enabled}, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "stopped"
	if session.AutoTick {
		status = "running"
	}
	interval := int64(0)
	if session.GameState != nil {
		interval = session.GameState.IntervalMS
	}
	return mcp.NewToolResultText(fmt.Sprintf("Gravity %s for session %s (interval %dms)", status, session.ID, interval)), nil
}

func (c *Client) handleSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var suggestion service.SuggestionResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/suggest"), nil, &suggestion); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSuggestion(&suggestion)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Gravity: %dms at level 1", config.Name, config.ConfigID, config.Description, config.BaseIntervalMS)
		if config.RescheduleOnLevelUp {
			b.WriteString(", speeds up with level")
		}
		if config.Scripted {
			b.WriteString(", scripted pieces")
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Blockfall - Complete Instructions

GAME OBJECTIVE:
Place falling pieces in a 10 wide by 20 tall well. Every completely filled row
is removed and the rows above it drop down. Survive as long as possible and
score as many points as you can.

BOARD LEGEND:
• . - Empty cell
• # - Settled block
• @ - Active (falling) piece
Rows are numbered 0 (top) to 19 (bottom), columns 0 (left) to 9 (right).

PIECES:
I, O, T, S, Z, J and L. New pieces appear at column 4, row 0.
An O piece never changes when rotated.

INTENTS:
• left / right - Shift one column if the cells are free
• rotate - Turn clockwise; rejected if the result would collide (no wall kicks)
• soft_drop - Fall one row; locks the piece if it cannot fall
• hard_drop - Fall to the lowest free row and lock immediately
• tick - Gravity step, same as soft_drop
• pause - Toggle pause; every other intent is ignored while paused

SCORING:
• Clearing n rows at once scores n x 100 x current level
• Level = score / 1000 + 1
• Gravity runs at base interval / level when the session starts

GAME OVER:
When a new piece overlaps settled blocks at its spawn position the game ends.
Only reset_game starts a new game.

STRATEGY TIPS:
• Keep the surface flat; bumps and holes make later pieces hard to place
• Leave one column open for I pieces to clear several rows at once
• Use suggest to see what the planner would do and the intents to get there
• Prefer bulk_act with a full placement (rotations, shifts, hard_drop)
• Read the board row by row; a single gap keeps a row from clearing

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- With autotick enabled the piece keeps falling between your calls

Good luck stacking!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	gravity := "manual"
	if session.AutoTick {
		gravity = "auto"
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nGravity: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, gravity,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// renderBoard draws committed cells as '#' and the active piece as '@'
func renderBoard(state *engine.GameState) []string {
	width, height := state.Width, state.Height
	if height == 0 {
		height = len(state.Board)
	}
	if width == 0 && height > 0 && len(state.Board) > 0 {
		width = len(state.Board[0])
	}

	grid := make([][]byte, height)
	for y := range grid {
		grid[y] = bytes.Repeat([]byte{'.'}, width)
		if y < len(state.Board) {
			for x := 0; x < width && x < len(state.Board[y]); x++ {
				if state.Board[y][x] != engine.Empty {
					grid[y][x] = '#'
				}
			}
		}
	}

	if p := state.Piece; p != nil {
		for r, row := range p.Shape {
			for col, filled := range row {
				x, y := p.Position.X+col, p.Position.Y+r
				if filled && x >= 0 && x < width && y >= 0 && y < height {
					grid[y][x] = '@'
				}
			}
		}
	}

	rows := make([]string, height)
	for y := range grid {
		rows[y] = string(grid[y])
	}
	return rows
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Score: %d | Level: %d | Lines: %d | Status: %s | Gravity: %dms\n",
		state.Score, state.Level, state.Lines, state.Status, state.IntervalMS)
	if p := state.Piece; p != nil {
		fmt.Fprintf(&b, "Piece: %s at (%d,%d) rotation %d\n", p.Type, p.Position.X, p.Position.Y, p.Rotation)
	}
	b.WriteString("\n")

	for y, row := range renderBoard(state) {
		fmt.Fprintf(&b, "%2d |%s|\n", y, row)
	}
	if state.Width > 0 {
		fmt.Fprintf(&b, "   +%s+\n", strings.Repeat("-", state.Width))
		b.WriteString("    ")
		for x := 0; x < state.Width; x++ {
			fmt.Fprintf(&b, "%d", x%10)
		}
		b.WriteString("\n")
	}

	switch state.Status {
	case engine.StatusGameOver:
		b.WriteString("\nGAME OVER - use reset_game to play again")
	case engine.StatusPaused:
		b.WriteString("\nPAUSED - send the pause intent to resume")
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

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "✗ %s\n", result.Message)
	}

	out := result.Outcome
	if out.DropDistance > 0 {
		fmt.Fprintf(&b, "Dropped %d rows\n", out.DropDistance)
	}
	if out.LinesCleared > 0 {
		fmt.Fprintf(&b, "Cleared rows %v for %d points\n", out.ClearedRows, out.ScoreDelta)
	}

	formatEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkActionResult(sessionID string, result *service.BulkActionResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)
	fmt.Fprintf(&b, "Executed %d/%d intents\n", result.IntentsExecuted, result.RequestedIntents)
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StopReasonCode)
		if result.StoppedOnIntent > 0 {
			fmt.Fprintf(&b, " (before intent %d)", result.StoppedOnIntent)
		}
		b.WriteString("\n")
	}
	if result.Truncated {
		fmt.Fprintf(&b, "Only the first %d intents were accepted\n", result.Limit)
	}
	fmt.Fprintf(&b, "Pieces locked: %d | Lines: %d | Score: %d → %d (%+d)\n",
		result.PiecesLocked, result.LinesCleared, result.StartScore, result.EndScore, result.ScoreDelta)

	rejected := 0
	for _, out := range result.Outcomes {
		if !out.Applied {
			rejected++
		}
	}
	if rejected > 0 {
		fmt.Fprintf(&b, "Rejected intents: %d (blocked moves or rotations)\n", rejected)
	}

	b.WriteString("\n")
	formatEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatSuggestion(suggestion *service.SuggestionResult) string {
	p := suggestion.Placement
	if p == nil {
		return "No placement available"
	}

	var b strings.Builder
	pieceType := engine.PieceType("?")
	if suggestion.Piece != nil {
		pieceType = suggestion.Piece.Type
	}
	fmt.Fprintf(&b, "Suggested placement for %s: rotation %d, column %d, row %d\n",
		pieceType, p.Rotation, p.Position.X, p.Position.Y)
	fmt.Fprintf(&b, "Lines cleared: %d | Holes: %d | Height: %d | Bumpiness: %d | Score: %.3f\n",
		p.LinesCleared, p.Holes, p.Height, p.Bumpiness, p.Score)

	names := make([]string, 0, len(p.Intents))
	for _, intent := range p.Intents {
		names = append(names, string(intent))
	}
	fmt.Fprintf(&b, "Intents: %s\n", strings.Join(names, ", "))
	return b.String()
}
