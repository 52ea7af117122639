package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/pairs/internal/api/middleware"
	"github.com/phrazzld/pairs/internal/api/shared"
	"github.com/phrazzld/pairs/internal/domain"
	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/phrazzld/pairs/internal/service"
	"github.com/phrazzld/pairs/internal/service/auth"
)

const gameIDParam = middleware.GameIDParam

// GameHandler handles the game HTTP endpoints.
type GameHandler struct {
	sessionService service.SessionService
	jwtService     auth.JWTService
	logger         *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(
	sessionService service.SessionService,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *GameHandler {
	if sessionService == nil {
		panic("sessionService cannot be nil for GameHandler") // ALLOW-PANIC
	}
	if jwtService == nil {
		panic("jwtService cannot be nil for GameHandler") // ALLOW-PANIC
	}
	if logger == nil {
		panic("logger cannot be nil for GameHandler") // ALLOW-PANIC
	}

	return &GameHandler{
		sessionService: sessionService,
		jwtService:     jwtService,
		logger:         logger.With(slog.String("component", "game_handler")),
	}
}

// CreateGame handles POST /api/games.
// It deals a new game and returns it with the token that grants access to it.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	session, err := h.sessionService.CreateSession(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create game")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), session.ID)
	if err != nil {
		// A game nobody can address is useless; drop it.
		if endErr := h.sessionService.EndSession(r.Context(), session.ID); endErr != nil {
			log.Warn("failed to discard game after token error",
				slog.String("game_id", session.ID.String()),
				slog.String("error", endErr.Error()))
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create game", err)
		return
	}

	log.Info("game created", slog.String("game_id", session.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateGameResponse{
		GameID: session.ID,
		Token:  token,
		Game:   gameToResponse(session.ID, session.Engine.Generation(), session.Engine.Snapshot()),
	})
}

// GetGame handles GET /api/games/{id}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := handlePathGameID(w, r, h.log(r))
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get game")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK,
		gameToResponse(gameID, session.Engine.Generation(), session.Engine.Snapshot()))
}

// SelectCard handles POST /api/games/{id}/selections.
// A rejected selection is still a 200: the outcome says why nothing changed.
func (h *GameHandler) SelectCard(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	gameID, ok := handlePathGameID(w, r, log)
	if !ok {
		return
	}

	var req SelectCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	outcome, state, err := h.sessionService.SelectCard(r.Context(), gameID, *req.CardID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCard) {
			log.Debug("selection of unknown card",
				slog.String("game_id", gameID.String()),
				slog.Int("card_id", *req.CardID))
		}
		HandleAPIError(w, r, err, "Failed to select card")
		return
	}

	log.Debug("card selected",
		slog.String("game_id", gameID.String()),
		slog.Int("card_id", *req.CardID),
		slog.String("result", string(outcome.Result)),
		slog.String("reason", string(outcome.Reason)))

	session, err := h.sessionService.GetSession(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to select card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SelectCardResponse{
		Result: outcome.Result,
		Reason: outcome.Reason,
		Game:   gameToResponse(gameID, session.Engine.Generation(), state),
	})
}

// RestartGame handles POST /api/games/{id}/restart.
func (h *GameHandler) RestartGame(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	gameID, ok := handlePathGameID(w, r, log)
	if !ok {
		return
	}

	state, err := h.sessionService.Restart(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to restart game")
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), gameID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to restart game")
		return
	}

	log.Info("game restarted", slog.String("game_id", gameID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, gameToResponse(gameID, session.Engine.Generation(), state))
}

// DeleteGame handles DELETE /api/games/{id}.
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := handlePathGameID(w, r, h.log(r))
	if !ok {
		return
	}

	if err := h.sessionService.EndSession(r.Context(), gameID); err != nil {
		HandleAPIError(w, r, err, "Failed to end game")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
