package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/pairs/internal/api/shared"
	"github.com/phrazzld/pairs/internal/events"
	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/phrazzld/pairs/internal/service"
)

// Handler upgrades GET /api/games/{id}/events to a WebSocket and streams
// the game's events. Mount it behind the game-token middleware.
type Handler struct {
	sessions service.SessionService
	upgrader websocket.Upgrader
	logger   *slog.Logger
	active   atomic.Int64
}

// NewHandler creates a stream Handler.
func NewHandler(sessions service.SessionService, logger *slog.Logger) *Handler {
	if sessions == nil {
		panic("sessions cannot be nil for stream Handler") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Access is governed by the game token, not the page origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "event_stream")),
	}
}

// Active returns the number of open streams.
func (h *Handler) Active() int {
	return int(h.active.Load())
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid game ID")
		return
	}

	// Resolve the session before upgrading so a missing game is a plain 404.
	session, err := h.sessions.GetSession(r.Context(), gameID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, "Game not found", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an error response.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	log = log.With(slog.String("game_id", gameID.String()))
	c := newClient(conn, session.Done(), log)

	unsubscribe, err := h.sessions.Subscribe(r.Context(), gameID, h.forward(c, log))
	if err != nil {
		c.closeWith(websocket.CloseNormalClosure, "game ended")
		return
	}
	defer unsubscribe()

	h.active.Add(1)
	defer h.active.Add(-1)
	log.Info("event stream opened", slog.Int("active_streams", h.Active()))

	go c.readPump()
	c.writePump()

	log.Info("event stream closed")
}

// forward returns the subscription that serializes events into c.
func (h *Handler) forward(c *client, log *slog.Logger) events.EventHandler {
	return events.HandlerFunc(func(_ context.Context, event *events.StateChangeEvent) error {
		message, err := json.Marshal(event)
		if err != nil {
			log.Error("failed to encode event", slog.String("error", err.Error()))
			return err
		}
		if !c.enqueue(message) {
			log.Warn("event stream lagging, disconnecting client",
				slog.String("event_type", string(event.Type)))
		}
		return nil
	})
}
