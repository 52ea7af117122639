package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/domain"
)

// EventType identifies which transition a StateChangeEvent reports.
type EventType string

// Event types, one per observable transition of a game.
const (
	// TypeGameStarted is emitted after a deck has been dealt by start or restart.
	TypeGameStarted EventType = "game_started"
	// TypeCardRevealed is emitted for every card turned face up.
	TypeCardRevealed EventType = "card_revealed"
	// TypePairMatched is emitted when two revealed cards share a symbol.
	TypePairMatched EventType = "pair_matched"
	// TypePairMismatched is emitted when two revealed cards differ; they stay up until reverted.
	TypePairMismatched EventType = "pair_mismatched"
	// TypePairReverted is emitted when a mismatched pair is turned face down again.
	TypePairReverted EventType = "pair_reverted"
	// TypeGameWon is emitted once, when the last pair is matched.
	TypeGameWon EventType = "game_won"
)

// CardChange is the new state of one card, with its symbol when face up.
type CardChange struct {
	ID     int              `json:"id"`
	State  domain.CardState `json:"state"`
	Symbol string           `json:"symbol,omitempty"`
}

// StateChangeEvent describes one transition of a game, carrying enough for a
// presentation layer to update what it shows without asking for a snapshot.
type StateChangeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates which transition happened
	Type EventType `json:"type"`

	// GameID identifies the engine that emitted the event
	GameID uuid.UUID `json:"game_id"`

	// Generation is the restart counter of the game the event belongs to
	Generation uint64 `json:"generation"`

	// Cards lists the cards whose state changed
	Cards []CardChange `json:"cards,omitempty"`

	// Result is the selection result tag, when the event came from a selection
	Result domain.Result `json:"result,omitempty"`

	MatchedPairs int `json:"matched_pairs"`
	PairCount    int `json:"pair_count"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewStateChangeEvent creates an event with a fresh ID and timestamp.
func NewStateChangeEvent(
	eventType EventType,
	gameID uuid.UUID,
	generation uint64,
	cards []CardChange,
) *StateChangeEvent {
	return &StateChangeEvent{
		ID:         uuid.New(),
		Type:       eventType,
		GameID:     gameID,
		Generation: generation,
		Cards:      cards,
		CreatedAt:  time.Now().UTC(),
	}
}

// CardIDs returns the ids of the changed cards in order.
func (e *StateChangeEvent) CardIDs() []int {
	ids := make([]int, len(e.Cards))
	for i, c := range e.Cards {
		ids[i] = c.ID
	}
	return ids
}

// EventHandler defines an interface for components that observe state changes.
// It is the onStateChange hook a presentation layer implements.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StateChangeEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *StateChangeEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *StateChangeEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows the engine to publish transitions without knowing who renders them.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *StateChangeEvent) error
}
