// Package validate checks game preset JSON files before they are deployed.
// It checks:
//   - JSON structure, unknown keys and required fields
//   - Gravity interval bounds
//   - Piece sequence members and the seed/sequence exclusivity
//   - Playability: the planner can lock pieces from the preset without
//     topping out immediately
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/blockfall/game/autoplay"
	"github.com/wricardo/mcp-training/blockfall/game/engine"
)

// PlayabilityPieces is how many pieces the playability check locks
const PlayabilityPieces = 50

// minPlayablePieces is the fewest pieces a valid preset must accept
// before game over
const minPlayablePieces = 10

// Result captures the outcome of validating a single file.
// Errors lists problems when Valid is false; Info lists what was checked.
type Result struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
	Info   []string `json:"info,omitempty"`
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) note(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// File loads and validates one preset file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, ok := decode(data, &result)
	if !ok {
		return result
	}

	checkFields(config, &result)
	if !result.Valid {
		return result
	}

	// Catches anything the field checks above do not cover
	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	checkPlayability(config, &result)

	if result.Valid {
		result.note("Name: %s", config.Name)
		result.note("Gravity: %s at level 1", config.BaseInterval())
		if config.RescheduleOnLevelUp {
			result.note("Gravity follows the current level")
		}
		switch {
		case len(config.PieceSequence) > 0:
			result.note("Pieces: fixed cycle of %d", len(config.PieceSequence))
		case config.Seed != 0:
			result.note("Pieces: random, seed %d", config.Seed)
		default:
			result.note("Pieces: random")
		}
	}

	return result
}

// Dir validates every *.json file in dir, in name order
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding preset files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no preset files in %s", dir)
	}

	results := make([]Result, 0, len(files))
	for _, f := range files {
		results = append(results, File(f))
	}
	return results, nil
}

// Report prints results and returns true when every file is valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  ✓ "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, e := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+e)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All presets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid
}

func decode(data []byte, result *Result) (*engine.GameConfig, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var config engine.GameConfig
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return nil, false
	}
	for i, t := range config.PieceSequence {
		config.PieceSequence[i] = engine.PieceType(strings.ToUpper(string(t)))
	}
	return &config, true
}

func checkFields(config *engine.GameConfig, result *Result) {
	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	if ms := config.BaseIntervalMS; ms != 0 && (ms < engine.MinBaseIntervalMS || ms > engine.MaxBaseIntervalMS) {
		result.fail("base_interval_ms must be between %d and %d, got %d",
			engine.MinBaseIntervalMS, engine.MaxBaseIntervalMS, ms)
	}

	if len(config.PieceSequence) > engine.MaxPieceSequence {
		result.fail("piece_sequence may hold at most %d pieces, got %d",
			engine.MaxPieceSequence, len(config.PieceSequence))
	}
	for i, t := range config.PieceSequence {
		if !t.Valid() {
			result.fail("piece_sequence[%d]: unknown piece %q", i, t)
		}
	}
	if len(config.PieceSequence) > 0 && config.Seed != 0 {
		result.fail("seed and piece_sequence are mutually exclusive")
	}
}

// checkPlayability runs the planner against the preset. Unseeded presets
// are played with a fixed seed so the check is repeatable.
func checkPlayability(config *engine.GameConfig, result *Result) {
	trial := *config
	if len(trial.PieceSequence) == 0 && trial.Seed == 0 {
		trial.Seed = 1
	}

	e, err := engine.NewEngine(&trial)
	if err != nil {
		result.fail("Cannot start a game: %v", err)
		return
	}

	summary := autoplay.NewDefaultPlanner().Play(e, PlayabilityPieces)
	if summary.GameOver && summary.Pieces < minPlayablePieces {
		result.fail("Playability failure: topped out after %d pieces", summary.Pieces)
		return
	}
	result.note("Autoplay: %d pieces, %d lines, score %d", summary.Pieces, summary.Lines, summary.Score)
}
