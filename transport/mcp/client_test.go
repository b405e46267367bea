package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/blockfall/game/autoplay"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
	"github.com/wricardo/mcp-training/blockfall/game/service"
)

func newRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected text content in result")
	return text.Text
}

// sampleState is a board with a settled bottom row (gap at column 9) and a T piece
func sampleState() *engine.GameState {
	board := make([][]engine.Color, engine.BoardHeight)
	for y := range board {
		board[y] = make([]engine.Color, engine.BoardWidth)
	}
	for x := 0; x < engine.BoardWidth-1; x++ {
		board[engine.BoardHeight-1][x] = "#f00000"
	}

	return &engine.GameState{
		Board:  board,
		Width:  engine.BoardWidth,
		Height: engine.BoardHeight,
		Piece: &engine.ActivePiece{
			Type:     engine.PieceT,
			Position: engine.Position{X: 4, Y: 0},
			Shape:    engine.Shape{{false, true, false}, {true, true, true}, {false, false, false}},
		},
		SessionState: engine.SessionState{Score: 1200, Level: 2, Lines: 12},
		Status:       engine.StatusRunning,
		IntervalMS:   1000,
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12", nil, &response)
	require.NoError(t, err)
	assert.Equal(t, "ab12", response["id"])
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	t.Run("json error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session ab12: session not found"})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/sessions/ab12", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "session ab12: session not found", err.Error())
	})

	t.Run("plain error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/health", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})
}

func TestClient_createSession(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "marathon",
			AutoTick:   true,
			GameState:  sampleState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), newRequest("create_session", map[string]interface{}{
		"config_id": "marathon",
		"auto_tick": true,
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "test-session-123")
	assert.Contains(t, text, "Gravity: auto")
	assert.Equal(t, "marathon", body["config_id"])
	assert.Equal(t, true, body["auto_tick"])
}

func TestClient_createSession_NilArguments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.SessionInfo{ID: "ab12", ConfigName: "classic"})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleCreateSession(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "ab12")
}

func TestClient_act(t *testing.T) {
	var gotPath, gotIntent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		gotIntent = req["intent"]

		json.NewEncoder(w).Encode(service.ActionResult{
			Success: true,
			Intent:  engine.IntentHardDrop,
			Outcome: engine.Outcome{
				Intent: engine.IntentHardDrop, Applied: true, Locked: true,
				DropDistance: 17, LinesCleared: 1, ClearedRows: []int{19}, ScoreDelta: 200,
			},
			GameState: sampleState(),
			Message:   "Cleared 1 lines, score 1200",
			Events:    []service.GameEvent{{Type: service.EventLineClear, Message: "Cleared 1 lines for 200 points"}},
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleAct(context.Background(), newRequest("act", map[string]interface{}{
		"session_id": "ab12",
		"intent":     "hard_drop",
		"reason":     "fill the gap at column 9",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Equal(t, "/api/sessions/ab12/action", gotPath)
	assert.Equal(t, "hard_drop", gotIntent)
	assert.Contains(t, text, "Dropped 17 rows")
	assert.Contains(t, text, "Cleared rows [19] for 200 points")
	assert.Contains(t, text, "line_clear")
}

func TestClient_act_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": `unknown intent: "hold"`})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleAct(context.Background(), newRequest("act", map[string]interface{}{
		"session_id": "ab12",
		"intent":     "hold",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown intent")
}

func TestClient_bulkAct(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Intents []string `json:"intents"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		got = req.Intents

		state := sampleState()
		state.Status = engine.StatusGameOver
		json.NewEncoder(w).Encode(service.BulkActionResult{
			IntentsExecuted:  2,
			RequestedIntents: 3,
			StopReasonCode:   service.StopReasonGameOver,
			StoppedOnIntent:  3,
			PiecesLocked:     2,
			Outcomes:         []engine.Outcome{{Applied: true}, {Applied: false}},
			GameState:        state,
			GameOver:         true,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleBulkAct(context.Background(), newRequest("bulk_act", map[string]interface{}{
		"session_id": "ab12",
		"intents":    []interface{}{"left", "hard_drop", "hard_drop"},
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Equal(t, []string{"left", "hard_drop", "hard_drop"}, got)
	assert.Contains(t, text, "Executed 2/3 intents")
	assert.Contains(t, text, "Stopped: game_over (before intent 3)")
	assert.Contains(t, text, "Rejected intents: 1")
	assert.Contains(t, text, "GAME OVER")
}

func TestClient_suggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/ab12/suggest", r.URL.Path)
		json.NewEncoder(w).Encode(service.SuggestionResult{
			SessionID: "ab12",
			Piece:     sampleState().Piece,
			Placement: &autoplay.Placement{
				Rotation:     2,
				Position:     engine.Position{X: 7, Y: 17},
				LinesCleared: 1,
				Intents:      []engine.Intent{engine.IntentRotateCW, engine.IntentRotateCW, engine.IntentMoveRight, engine.IntentHardDrop},
			},
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleSuggest(context.Background(), newRequest("suggest", map[string]interface{}{"session_id": "ab12"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Suggested placement for T: rotation 2, column 7, row 17")
	assert.Contains(t, text, "Intents: rotate, rotate, right, hard_drop")
}

func TestClient_autoTick(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]bool
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(service.SessionInfo{ID: "ab12", AutoTick: req["enabled"], GameState: sampleState()})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleAutoTick(context.Background(), newRequest("autotick", map[string]interface{}{"session_id": "ab12", "enabled": true}))
	require.NoError(t, err)
	assert.Equal(t, "Gravity running for session ab12 (interval 1000ms)", resultText(t, result))

	result, err = client.handleAutoTick(context.Background(), newRequest("autotick", map[string]interface{}{"session_id": "ab12", "enabled": false}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Gravity stopped")
}

func TestClient_listConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]service.ConfigInfo{
			{ConfigID: "classic", Name: "Classic", Description: "Standard", BaseIntervalMS: 1000},
			{ConfigID: "tutorial", Name: "Tutorial", Description: "Fixed pieces", BaseIntervalMS: 1500, Scripted: true},
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleListConfigs(context.Background(), newRequest("list_configs", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Classic (config_id: classic)")
	assert.Contains(t, text, "scripted pieces")
}

func TestFormatGameState(t *testing.T) {
	text := formatGameState(sampleState())

	assert.Contains(t, text, "Score: 1200 | Level: 2 | Lines: 12")
	assert.Contains(t, text, "Piece: T at (4,0) rotation 0")
	assert.Contains(t, text, " 0 |.....@....|")
	assert.Contains(t, text, " 1 |....@@@...|")
	assert.Contains(t, text, "19 |#########.|")
	assert.NotContains(t, text, "GAME OVER")
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := sampleState()
	state.Status = engine.StatusGameOver
	state.IsGameOver = true

	assert.Contains(t, formatGameState(state), "GAME OVER")
}

func TestFormatGameState_Paused(t *testing.T) {
	state := sampleState()
	state.Status = engine.StatusPaused

	assert.Contains(t, formatGameState(state), "PAUSED")
}

func TestFormatGameState_Nil(t *testing.T) {
	assert.Equal(t, "No game state available", formatGameState(nil))
}

func TestRenderBoard_ClipsPieceAboveTop(t *testing.T) {
	state := sampleState()
	state.Piece.Position = engine.Position{X: 0, Y: -1}

	rows := renderBoard(state)
	require.Len(t, rows, engine.BoardHeight)
	assert.Equal(t, "@@@.......", rows[0])
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), newRequest("game_instructions", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, content := range []string{
		"Blockfall - Complete Instructions",
		"GAME OBJECTIVE:",
		"BOARD LEGEND:",
		"INTENTS:",
		"SCORING:",
		"GAME OVER:",
		"Good luck stacking!",
	} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestIntentNames(t *testing.T) {
	names := intentNames()
	assert.Len(t, names, len(engine.Intents()))
	assert.Contains(t, names, "hard_drop")
}
