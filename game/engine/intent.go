package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Intent is a user or driver request dispatched into a session
type Intent string

const (
	IntentMoveLeft    Intent = "left"
	IntentMoveRight   Intent = "right"
	IntentRotateCW    Intent = "rotate"
	IntentSoftDrop    Intent = "soft_drop"
	IntentHardDrop    Intent = "hard_drop"
	IntentTogglePause Intent = "pause"
	IntentTick        Intent = "tick"
)

var ErrUnknownIntent = errors.New("unknown intent")

var intentAliases = map[string]Intent{
	"left":         IntentMoveLeft,
	"move_left":    IntentMoveLeft,
	"right":        IntentMoveRight,
	"move_right":   IntentMoveRight,
	"rotate":       IntentRotateCW,
	"rotate_cw":    IntentRotateCW,
	"soft_drop":    IntentSoftDrop,
	"down":         IntentSoftDrop,
	"hard_drop":    IntentHardDrop,
	"drop":         IntentHardDrop,
	"pause":        IntentTogglePause,
	"toggle_pause": IntentTogglePause,
	"tick":         IntentTick,
}

// Intents lists the canonical intents
func Intents() []Intent {
	return []Intent{
		IntentMoveLeft, IntentMoveRight, IntentRotateCW,
		IntentSoftDrop, IntentHardDrop, IntentTogglePause, IntentTick,
	}
}

// ParseIntent maps a wire name (or alias) to an Intent
func ParseIntent(s string) (Intent, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if intent, ok := intentAliases[key]; ok {
		return intent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}
