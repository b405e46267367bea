// Command bot plays Blockfall against a running server through the REST API.
// Each piece is placed by asking /suggest for the planner's placement and
// sending the returned intents to /actions in one batch. The bot plays a
// number of attempts, resetting between them, and reports the best score.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

const sessionFile = ".session"

// AttemptResult summarizes one game played by the bot
type AttemptResult struct {
	Pieces   int
	Lines    int
	Score    int
	Level    int
	GameOver bool
}

// Player drives a Client until game over or the piece limit
type Player struct {
	client    *Client
	maxPieces int
	delay     time.Duration
	verbose   bool
}

// Play runs one attempt starting from state
func (p *Player) Play(ctx context.Context, state *engine.GameState) (AttemptResult, error) {
	var result AttemptResult

	if state.IsPaused {
		// pause toggles, so a second pause resumes
		bulk, err := p.client.BulkAct(ctx, []engine.Intent{engine.IntentTogglePause})
		if err != nil {
			return result, err
		}
		state = bulk.GameState
	}

	for !state.IsGameOver && result.Pieces < p.maxPieces {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		suggestion, err := p.client.Suggest(ctx)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				// no placement left or the game just ended
				break
			}
			return result, err
		}

		bulk, err := p.client.BulkAct(ctx, suggestion.Placement.Intents)
		if err != nil {
			return result, err
		}
		state = bulk.GameState
		result.Pieces += bulk.PiecesLocked

		if p.verbose && result.Pieces%25 == 0 {
			log.Info().Int("pieces", result.Pieces).Int("lines", state.Lines).Int("score", state.Score).Msg("progress")
		}

		if p.delay > 0 {
			time.Sleep(p.delay)
		}
	}

	result.Lines = state.Lines
	result.Score = state.Score
	result.Level = state.Level
	result.GameOver = state.IsGameOver
	return result, nil
}

func main() {
	app := &cli.Command{
		Name:  "bot",
		Usage: "Play Blockfall through the REST API using the server's planner",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "preset", Usage: "Preset to play (classic, marathon, tutorial, ...)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-pieces", Value: 500, Usage: "Maximum pieces per attempt"},
			&cli.IntFlag{Name: "attempts", Value: 3, Usage: "Number of games to play"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between pieces in milliseconds (0 = no delay)"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bot failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	serverURL := cmd.String("url")
	log.Info().Str("url", serverURL).Msg("connecting to game server")
	client := NewClient(serverURL)

	state, err := openSession(ctx, client, cmd.String("continue"), cmd.String("preset"))
	if err != nil {
		return err
	}

	player := &Player{
		client:    client,
		maxPieces: int(cmd.Int("max-pieces")),
		delay:     time.Duration(cmd.Int("delay")) * time.Millisecond,
		verbose:   cmd.Bool("v"),
	}

	attempts := int(cmd.Int("attempts"))
	var best AttemptResult
	for attempt := 1; attempt <= attempts; attempt++ {
		state, err = client.Reset(ctx)
		if err != nil {
			return err
		}

		log.Info().Int("attempt", attempt).Int("of", attempts).Msg("starting attempt")
		result, err := player.Play(ctx, state)
		if err != nil {
			return err
		}

		log.Info().
			Int("attempt", attempt).
			Int("pieces", result.Pieces).
			Int("lines", result.Lines).
			Int("score", result.Score).
			Int("level", result.Level).
			Bool("game_over", result.GameOver).
			Msg("attempt finished")

		if result.Score > best.Score || attempt == 1 {
			best = result
		}
	}

	fmt.Printf("Best: score %d, %d lines, level %d, %d pieces (session %s)\n",
		best.Score, best.Lines, best.Level, best.Pieces, client.SessionID())
	return nil
}

// openSession resumes the given or saved session, or creates a new one and
// saves its ID for the next run
func openSession(ctx context.Context, client *Client, sessionID, preset string) (*engine.GameState, error) {
	if sessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			sessionID = string(bytes.TrimSpace(data))
		}
	}

	if sessionID != "" {
		state, err := client.Resume(ctx, sessionID)
		if err == nil {
			log.Info().Str("session", sessionID).Msg("resumed session")
			return state, nil
		}
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to resume session (may be expired), creating a new one")
	}

	state, err := client.CreateSession(ctx, preset)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", client.SessionID()).Msg("session created")

	if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
		log.Warn().Err(err).Msg("failed to save session ID")
	}
	return state, nil
}
