// Package config provides difficulty preset management for the Blockfall game server.
//
// The config package handles:
//   - Loading presets from JSON files
//   - Preset validation
//   - Default preset management with a built-in classic fallback
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are stored as JSON files in the configs directory:
//
//	{
//	  "name": "marathon",
//	  "description": "Gravity speeds up with every level",
//	  "base_interval_ms": 1000,
//	  "reschedule_on_level_up": true
//	}
//
// A preset may fix the random order with "seed" or script it entirely with
// "piece_sequence"; the two are mutually exclusive.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	gameConfig, err := manager.LoadConfig("marathon")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
