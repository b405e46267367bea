package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"valid", func(c *GameConfig) {}, ""},
		{"zero interval uses default", func(c *GameConfig) { c.BaseIntervalMS = 0 }, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"interval too fast", func(c *GameConfig) { c.BaseIntervalMS = 10 }, "base_interval_ms"},
		{"interval too slow", func(c *GameConfig) { c.BaseIntervalMS = 60000 }, "base_interval_ms"},
		{"bad sequence piece", func(c *GameConfig) { c.PieceSequence = []PieceType{PieceI, "Q"} }, "piece_sequence[1]"},
		{"seed with sequence", func(c *GameConfig) {
			c.Seed = 7
			c.PieceSequence = []PieceType{PieceI}
		}, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestParseGameConfig(t *testing.T) {
	data := []byte(`{
		"name": "tutorial",
		"description": "Scripted pieces",
		"base_interval_ms": 800,
		"piece_sequence": ["i", "o", "T"]
	}`)

	config, err := ParseGameConfig(data)
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	if config.BaseInterval() != 800*time.Millisecond {
		t.Errorf("Expected 800ms base interval, got %v", config.BaseInterval())
	}
	want := []PieceType{PieceI, PieceO, PieceT}
	for i, pt := range want {
		if config.PieceSequence[i] != pt {
			t.Errorf("Sequence %d: expected %s, got %s", i, pt, config.PieceSequence[i])
		}
	}

	source := config.NewSource()
	if _, ok := source.(*SequenceSource); !ok {
		t.Errorf("Expected a sequence source, got %T", source)
	}

	if _, err := ParseGameConfig([]byte(`{not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fast.json")
	content := `{"name": "fast", "description": "Quick gravity", "base_interval_ms": 200, "seed": 9}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "fast" || config.Seed != 9 {
		t.Errorf("Unexpected config %+v", config)
	}
	if _, ok := config.NewSource().(*RandomSource); !ok {
		t.Error("Expected a random source for a seeded preset")
	}

	t.Setenv("CONFIG_DIR", dir)
	if _, err := LoadGameConfig("configs/fast.json"); err != nil {
		t.Errorf("Expected CONFIG_DIR to redirect configs/ paths, got %v", err)
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if err := ValidateGameConfig(config); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
	if config.RescheduleOnLevelUp {
		t.Error("Expected default cadence to stay fixed at the start level")
	}
}

func TestParseIntent(t *testing.T) {
	tests := map[string]Intent{
		"left":         IntentMoveLeft,
		"Move-Left":    IntentMoveLeft,
		"right":        IntentMoveRight,
		"rotate_cw":    IntentRotateCW,
		"down":         IntentSoftDrop,
		"soft_drop":    IntentSoftDrop,
		" drop ":       IntentHardDrop,
		"toggle_pause": IntentTogglePause,
		"tick":         IntentTick,
	}
	for input, want := range tests {
		got, err := ParseIntent(input)
		if err != nil || got != want {
			t.Errorf("ParseIntent(%q): expected %s, got %s err=%v", input, want, got, err)
		}
	}

	if _, err := ParseIntent("jump"); !errors.Is(err, ErrUnknownIntent) {
		t.Errorf("Expected ErrUnknownIntent, got %v", err)
	}

	for _, intent := range Intents() {
		if parsed, err := ParseIntent(string(intent)); err != nil || parsed != intent {
			t.Errorf("Expected canonical name %s to round trip", intent)
		}
	}
}
