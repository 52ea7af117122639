// Package domain defines the core game entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrUnknownCard is returned when a card id does not address a position
	// in the current deck. This signals caller misuse, not player noise.
	ErrUnknownCard = errors.New("unknown card")

	// ErrInvalidPairCount is returned when a deck is requested with fewer than one pair
	// or with more pairs than there are symbols available.
	ErrInvalidPairCount = errors.New("invalid pair count")

	// ErrEmptySymbol is returned when a symbol is the empty string.
	ErrEmptySymbol = errors.New("symbol cannot be empty")

	// ErrDuplicateSymbol is returned when the same symbol is supplied twice.
	ErrDuplicateSymbol = errors.New("duplicate symbol")

	// ErrInvalidDeck is returned when a deck violates the two-of-each invariant.
	ErrInvalidDeck = errors.New("invalid deck")

	// ErrInvalidCardState is returned when a card state is not recognised.
	ErrInvalidCardState = errors.New("invalid card state")
)
