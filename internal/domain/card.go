package domain

import (
	"fmt"
)

// CardState is the face a card currently shows.
type CardState string

// Card states. A card moves Hidden -> Revealed -> Matched, or back to Hidden
// when its pair turns out to be a mismatch.
const (
	CardHidden   CardState = "hidden"
	CardRevealed CardState = "revealed"
	CardMatched  CardState = "matched"
)

// Valid checks if the card state is one of the defined values.
func (s CardState) Valid() bool {
	switch s {
	case CardHidden, CardRevealed, CardMatched:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s CardState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCardState, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CardState) UnmarshalText(text []byte) error {
	state := CardState(text)
	if !state.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCardState, string(text))
	}
	*s = state
	return nil
}

// Card is one position on the board.
// ID is the stable position index within the deck.
type Card struct {
	ID     int       `json:"id"`
	Symbol string    `json:"symbol"`
	State  CardState `json:"state"`
}

// IsHidden reports whether the card is face down.
func (c Card) IsHidden() bool {
	return c.State == CardHidden
}
