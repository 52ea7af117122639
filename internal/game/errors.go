package game

import "errors"

var (
	// ErrGameNotStarted is returned when a card is selected before StartGame.
	ErrGameNotStarted = errors.New("game not started")

	// ErrInvalidConfig is returned by NewEngine for an unusable EngineConfig.
	ErrInvalidConfig = errors.New("invalid engine config")
)
