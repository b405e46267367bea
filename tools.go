package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/blockfall/game/autoplay"
	"github.com/wricardo/mcp-training/blockfall/game/config"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
	"github.com/wricardo/mcp-training/blockfall/validate"
)

// simulationReport is what simulate prints with --json
type simulationReport struct {
	Preset  string           `json:"preset"`
	Seed    int64            `json:"seed,omitempty"`
	Summary autoplay.Summary `json:"summary"`
	Board   []string         `json:"board"`
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Play a headless game with the autoplay planner",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Value: config.BuiltinName, Usage: "Preset to play"},
			&cli.IntFlag{Name: "seed", Usage: "Random seed for the piece order (0 uses the preset's)"},
			&cli.IntFlag{Name: "pieces", Value: 100, Usage: "Maximum pieces to lock"},
			&cli.BoolFlag{Name: "json", Usage: "Print the report as JSON"},
		},
		Action: runSimulate,
	}
}

func runSimulate(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	configs, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	report, err := simulate(configs, cmd.String("preset"), int64(cmd.Int("seed")), int(cmd.Int("pieces")))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printSimulation(w, report)
	return nil
}

// simulate plays one game of the named preset. A non-zero seed replaces the
// preset's seed; it is ignored for presets with a fixed piece sequence.
func simulate(configs *config.Manager, preset string, seed int64, pieces int) (*simulationReport, error) {
	if pieces <= 0 {
		return nil, fmt.Errorf("pieces must be positive, got %d", pieces)
	}

	base, err := configs.LoadConfig(preset)
	if err != nil {
		return nil, err
	}

	cfg := *base
	if seed != 0 {
		if len(cfg.PieceSequence) > 0 {
			log.Warn().Str("preset", preset).Msg("ignoring --seed for a preset with a fixed piece sequence")
		} else {
			cfg.Seed = seed
		}
	}

	e, err := engine.NewEngine(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	summary := autoplay.NewDefaultPlanner().Play(e, pieces)
	log.Debug().
		Str("preset", preset).
		Int("pieces", summary.Pieces).
		Int("lines", summary.Lines).
		Int("score", summary.Score).
		Bool("game_over", summary.GameOver).
		Msg("simulation finished")

	return &simulationReport{
		Preset:  preset,
		Seed:    cfg.Seed,
		Summary: summary,
		Board:   boardRows(e.Board()),
	}, nil
}

// boardRows renders settled cells as '#' and empty cells as '.'
func boardRows(b *engine.Board) []string {
	rows := make([]string, 0, b.Height())
	for _, row := range b.Rows() {
		var sb strings.Builder
		for _, c := range row {
			if c == engine.Empty {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func printSimulation(w io.Writer, r *simulationReport) {
	fmt.Fprintf(w, "Preset: %s\n", r.Preset)
	if r.Seed != 0 {
		fmt.Fprintf(w, "Seed: %d\n", r.Seed)
	}
	fmt.Fprintf(w, "Pieces: %d | Lines: %d | Score: %d | Level: %d | Intents: %d\n",
		r.Summary.Pieces, r.Summary.Lines, r.Summary.Score, r.Summary.Level, r.Summary.Intents)
	if r.Summary.GameOver {
		fmt.Fprintln(w, "Result: GAME OVER")
	} else {
		fmt.Fprintln(w, "Result: piece limit reached")
	}
	for _, row := range r.Board {
		fmt.Fprintf(w, "|%s|\n", row)
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate preset JSON files (defaults to every file in the config directory)",
		ArgsUsage: "[files...]",
		Action:    runValidate,
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	var results []validate.Result
	if files := cmd.Args().Slice(); len(files) > 0 {
		for _, f := range files {
			results = append(results, validate.File(f))
		}
	} else {
		results, err = validate.Dir(s.ConfigDir)
		if err != nil {
			return err
		}
	}

	if !validate.Report(cmd.Root().Writer, results) {
		return errors.New("some presets are invalid")
	}
	return nil
}
