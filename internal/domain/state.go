package domain

// Phase is the game-level state: Idle -> Playing -> Won.
// A restart re-enters Playing.
type Phase string

// Game phases.
const (
	PhaseIdle    Phase = "idle"
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
)

// Selection holds the ids of cards revealed but not yet resolved, in the
// order they were picked. It never holds more than two ids.
type Selection []int

// Len returns the number of pending cards.
func (s Selection) Len() int {
	return len(s)
}

// Contains reports whether id is pending.
func (s Selection) Contains(id int) bool {
	for _, pending := range s {
		if pending == id {
			return true
		}
	}
	return false
}

// GameState is everything the engine knows about one game.
// Locked is true exactly while two cards are pending resolution.
type GameState struct {
	Deck         Deck
	Selection    Selection
	MatchedPairs int
	Locked       bool
}

// NewGameState wraps a dealt deck in a fresh state: nothing selected,
// nothing matched, unlocked.
func NewGameState(deck Deck) GameState {
	return GameState{
		Deck:      deck,
		Selection: Selection{},
	}
}

// PairCount returns N for the current deck.
func (s GameState) PairCount() int {
	return s.Deck.PairCount()
}

// Won reports whether every pair has been matched.
func (s GameState) Won() bool {
	return len(s.Deck) > 0 && s.MatchedPairs == s.PairCount()
}

// Phase derives the game-level phase from the state.
func (s GameState) Phase() Phase {
	switch {
	case len(s.Deck) == 0:
		return PhaseIdle
	case s.Won():
		return PhaseWon
	default:
		return PhasePlaying
	}
}

// Clone returns a deep copy that shares no slices with s.
func (s GameState) Clone() GameState {
	out := s
	out.Deck = s.Deck.Clone()
	out.Selection = append(Selection{}, s.Selection...)
	return out
}

// CountState returns how many cards are in the given state.
func (s GameState) CountState(state CardState) int {
	n := 0
	for _, c := range s.Deck {
		if c.State == state {
			n++
		}
	}
	return n
}
