package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/domain"
)

// SelectCardRequest defines the payload for POST /api/games/{id}/selections.
// CardID is a pointer so a missing field is told apart from card 0.
type SelectCardRequest struct {
	CardID *int `json:"card_id" validate:"required,gte=0"`
}

// CardResponse is one position on the board as a client sees it.
// Symbol is only present while the card is face up or matched.
type CardResponse struct {
	ID     int              `json:"id"`
	State  domain.CardState `json:"state"`
	Symbol string           `json:"symbol,omitempty"`
}

// GameResponse is the client view of a game.
type GameResponse struct {
	GameID       uuid.UUID      `json:"game_id"`
	Phase        domain.Phase   `json:"phase"`
	Cards        []CardResponse `json:"cards"`
	Selection    []int          `json:"selection"`
	MatchedPairs int            `json:"matched_pairs"`
	PairCount    int            `json:"pair_count"`
	Locked       bool           `json:"locked"`
	Generation   uint64         `json:"generation"`
}

// CreateGameResponse is returned by POST /api/games. Token must accompany
// every later request for the game.
type CreateGameResponse struct {
	GameID uuid.UUID    `json:"game_id"`
	Token  string       `json:"token"`
	Game   GameResponse `json:"game"`
}

// SelectCardResponse reports the outcome of one selection with the state right after it.
type SelectCardResponse struct {
	Result domain.Result       `json:"result"`
	Reason domain.RejectReason `json:"reason,omitempty"`
	Game   GameResponse        `json:"game"`
}

func cardToResponse(card domain.Card) CardResponse {
	response := CardResponse{ID: card.ID, State: card.State}
	if !card.IsHidden() {
		response.Symbol = card.Symbol
	}
	return response
}

func gameToResponse(gameID uuid.UUID, generation uint64, state domain.GameState) GameResponse {
	cards := make([]CardResponse, len(state.Deck))
	for i, card := range state.Deck {
		cards[i] = cardToResponse(card)
	}

	selection := make([]int, len(state.Selection))
	copy(selection, state.Selection)

	return GameResponse{
		GameID:       gameID,
		Phase:        state.Phase(),
		Cards:        cards,
		Selection:    selection,
		MatchedPairs: state.MatchedPairs,
		PairCount:    state.PairCount(),
		Locked:       state.Locked,
		Generation:   generation,
	}
}
