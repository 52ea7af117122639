package domain

import (
	"fmt"
)

// Deck is the ordered set of cards on the board. Each symbol appears exactly
// twice and every card's ID equals its index.
type Deck []Card

// NewDeck lays out symbols followed by their duplicates, all face down.
// The result is unshuffled: for [A B] it is [A B A B].
func NewDeck(symbols []string) (Deck, error) {
	if err := ValidateSymbols(symbols); err != nil {
		return nil, err
	}

	n := len(symbols)
	deck := make(Deck, 2*n)
	for i, s := range symbols {
		deck[i] = Card{ID: i, Symbol: s, State: CardHidden}
		deck[i+n] = Card{ID: i + n, Symbol: s, State: CardHidden}
	}
	return deck, nil
}

// PairCount returns N, the number of distinct symbols in the deck.
func (d Deck) PairCount() int {
	return len(d) / 2
}

// Card returns the card at position id.
func (d Deck) Card(id int) (Card, error) {
	if id < 0 || id >= len(d) {
		return Card{}, fmt.Errorf("%w: %d (deck has %d cards)", ErrUnknownCard, id, len(d))
	}
	return d[id], nil
}

// Contains reports whether id addresses a position in the deck.
func (d Deck) Contains(id int) bool {
	return id >= 0 && id < len(d)
}

// Shuffle permutes the deck in place with Fisher-Yates: for i from the last
// index down to 1, swap position i with a uniform j in [0, i]. Card IDs are
// reassigned so they keep matching positions.
func (d Deck) Shuffle(rng RandomSource) {
	for i := len(d) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
	for i := range d {
		d[i].ID = i
	}
}

// Validate checks the deck invariants: even, non-zero length, IDs equal to
// positions, valid states, and every symbol present exactly twice.
func (d Deck) Validate() error {
	if len(d) == 0 || len(d)%2 != 0 {
		return fmt.Errorf("%w: length %d", ErrInvalidDeck, len(d))
	}

	counts := make(map[string]int, len(d)/2)
	for i, c := range d {
		if c.ID != i {
			return fmt.Errorf("%w: card at position %d has id %d", ErrInvalidDeck, i, c.ID)
		}
		if !c.State.Valid() {
			return fmt.Errorf("%w: card %d: %w", ErrInvalidDeck, i, ErrInvalidCardState)
		}
		if c.Symbol == "" {
			return fmt.Errorf("%w: card %d: %w", ErrInvalidDeck, i, ErrEmptySymbol)
		}
		counts[c.Symbol]++
	}

	for symbol, n := range counts {
		if n != 2 {
			return fmt.Errorf("%w: symbol %q appears %d times", ErrInvalidDeck, symbol, n)
		}
	}
	return nil
}

// Symbols returns the distinct symbols in order of first appearance.
func (d Deck) Symbols() []string {
	seen := make(map[string]struct{}, len(d)/2)
	symbols := make([]string, 0, len(d)/2)
	for _, c := range d {
		if _, ok := seen[c.Symbol]; ok {
			continue
		}
		seen[c.Symbol] = struct{}{}
		symbols = append(symbols, c.Symbol)
	}
	return symbols
}

// Clone returns an independent copy of the deck.
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	out := make(Deck, len(d))
	copy(out, d)
	return out
}
