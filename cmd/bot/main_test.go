package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/blockfall/api"
	"github.com/wricardo/mcp-training/blockfall/game/config"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
	"github.com/wricardo/mcp-training/blockfall/game/service"
	"github.com/wricardo/mcp-training/blockfall/game/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	preset := `{"name": "Only O", "description": "O pieces only", "piece_sequence": ["O"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "opieces.json"), []byte(preset), 0644))

	configs, err := config.NewManager(dir)
	require.NoError(t, err)
	sessions := session.NewManager()
	t.Cleanup(sessions.StopAll)

	ts := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configs), nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestClientSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	client := NewClient(ts.URL + "/")

	state, err := client.CreateSession(ctx, "opieces")
	require.NoError(t, err)
	require.NotEmpty(t, client.SessionID())
	require.NotNil(t, state.Piece)
	assert.Equal(t, engine.PieceO, state.Piece.Type)

	suggestion, err := client.Suggest(ctx)
	require.NoError(t, err)
	require.NotNil(t, suggestion.Placement)
	assert.Equal(t, engine.IntentHardDrop, suggestion.Placement.Intents[len(suggestion.Placement.Intents)-1])

	bulk, err := client.BulkAct(ctx, suggestion.Placement.Intents)
	require.NoError(t, err)
	assert.Equal(t, 1, bulk.PiecesLocked)

	state, err = client.Reset(ctx)
	require.NoError(t, err)
	assert.Zero(t, state.Score)
	assert.Equal(t, 1, state.PiecesSpawned)

	other := NewClient(ts.URL)
	resumed, err := other.Resume(ctx, client.SessionID())
	require.NoError(t, err)
	assert.Equal(t, client.SessionID(), other.SessionID())
	assert.False(t, resumed.IsGameOver)
}

func TestClientErrors(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	client := NewClient(ts.URL)

	_, err := client.Resume(ctx, "zzzz")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Empty(t, client.SessionID(), "failed resume forgets the session")

	_, err = client.CreateSession(ctx, "missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = client.CreateSession(ctx, "opieces")
	require.NoError(t, err)
	_, err = client.BulkAct(ctx, []engine.Intent{"teleport"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "400 Bad Request")
}

func TestPlayerPlaysToPieceLimit(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	client := NewClient(ts.URL)

	state, err := client.CreateSession(ctx, "opieces")
	require.NoError(t, err)

	player := &Player{client: client, maxPieces: 10}
	result, err := player.Play(ctx, state)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Pieces)
	assert.False(t, result.GameOver)
	assert.Positive(t, result.Lines)
	assert.Equal(t, result.Lines*100, result.Score)
}

func TestPlayerResumesPausedGame(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	client := NewClient(ts.URL)

	_, err := client.CreateSession(ctx, "opieces")
	require.NoError(t, err)
	bulk, err := client.BulkAct(ctx, []engine.Intent{engine.IntentTogglePause})
	require.NoError(t, err)
	require.True(t, bulk.GameState.IsPaused)

	player := &Player{client: client, maxPieces: 2}
	result, err := player.Play(ctx, bulk.GameState)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Pieces)
}

func TestPlayerStopsOnCancel(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.URL)

	state, err := client.CreateSession(context.Background(), "opieces")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	player := &Player{client: client, maxPieces: 10}
	_, err = player.Play(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
}
