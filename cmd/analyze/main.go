// Command analyze prints quick, human-readable statistics about the presets
// in the project's configs directory. For each preset it plays several
// autoplay games with different seeds and summarizes pieces placed, lines,
// score and how often the planner topped out, which highlights presets that
// are too fast or whose fixed piece sequence is unfriendly.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/blockfall/game/autoplay"
	"github.com/wricardo/mcp-training/blockfall/game/config"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// PresetStats aggregates autoplay results for one preset
type PresetStats struct {
	ID         string
	Name       string
	Games      int
	Pieces     int
	Lines      int
	Score      int
	BestScore  int
	MaxLevel   int
	TopOuts    int
	IntervalMS int64
	Scripted   bool
}

// AvgPieces returns the mean number of pieces locked per game
func (s PresetStats) AvgPieces() float64 { return s.avg(s.Pieces) }

// AvgLines returns the mean number of lines cleared per game
func (s PresetStats) AvgLines() float64 { return s.avg(s.Lines) }

// AvgScore returns the mean score per game
func (s PresetStats) AvgScore() float64 { return s.avg(s.Score) }

func (s PresetStats) avg(total int) float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(total) / float64(s.Games)
}

func main() {
	app := &cli.Command{
		Name:  "analyze",
		Usage: "Play autoplay games against every preset and print statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game presets"},
			&cli.IntFlag{Name: "games", Value: 5, Usage: "Games per preset"},
			&cli.IntFlag{Name: "pieces", Value: 200, Usage: "Maximum pieces per game"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), int(cmd.Int("games")), int(cmd.Int("pieces")))
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, configDir string, games, pieces int) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError loading preset: %v\n", info.ConfigID, err)
			continue
		}
		stats := analyzePreset(info.ConfigID, cfg, games, pieces)
		printStats(w, stats, pieces)
	}
	return nil
}

// analyzePreset plays games with seeds 1..games. Presets with a fixed piece
// sequence are deterministic and are played once.
func analyzePreset(id string, cfg *engine.GameConfig, games, pieces int) PresetStats {
	stats := PresetStats{
		ID:         id,
		Name:       cfg.Name,
		IntervalMS: cfg.BaseInterval().Milliseconds(),
		Scripted:   len(cfg.PieceSequence) > 0,
	}
	if stats.Scripted {
		games = 1
	}

	planner := autoplay.NewDefaultPlanner()
	for seed := 1; seed <= games; seed++ {
		trial := *cfg
		if !stats.Scripted {
			trial.Seed = int64(seed)
		}
		e, err := engine.NewEngine(&trial)
		if err != nil {
			continue
		}

		summary := planner.Play(e, pieces)
		stats.Games++
		stats.Pieces += summary.Pieces
		stats.Lines += summary.Lines
		stats.Score += summary.Score
		if summary.Score > stats.BestScore {
			stats.BestScore = summary.Score
		}
		if summary.Level > stats.MaxLevel {
			stats.MaxLevel = summary.Level
		}
		if summary.GameOver {
			stats.TopOuts++
		}
	}
	return stats
}

func printStats(w io.Writer, s PresetStats, pieces int) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", s.ID)
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "Gravity: %dms at level 1\n", s.IntervalMS)
	if s.Scripted {
		fmt.Fprintf(w, "Pieces: fixed sequence\n")
	}
	fmt.Fprintf(w, "Games: %d (up to %d pieces each)\n", s.Games, pieces)
	fmt.Fprintf(w, "Avg pieces: %.1f | Avg lines: %.1f | Avg score: %.0f\n", s.AvgPieces(), s.AvgLines(), s.AvgScore())
	fmt.Fprintf(w, "Best score: %d | Max level: %d\n", s.BestScore, s.MaxLevel)

	if s.TopOuts > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: the planner topped out in %d/%d games\n", s.TopOuts, s.Games)
	} else {
		fmt.Fprintf(w, "✅ The planner survived every game\n")
	}
}
