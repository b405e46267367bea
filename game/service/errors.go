package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidName     = errors.New("invalid configuration name")
	ErrNoIntents       = errors.New("no intents provided")
	ErrGameOver        = errors.New("game is over")
)
