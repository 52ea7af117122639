package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/api/shared"
)

// errInvalidPathID is returned when a path parameter is missing or not a UUID.
var errInvalidPathID = errors.New("invalid path id")

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", errInvalidPathID, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", errInvalidPathID, paramName)
	}

	return id, nil
}

// handlePathGameID extracts the game id and writes a 400 when it is invalid.
// The boolean is false when a response has already been written.
func handlePathGameID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	gameID, err := getPathUUID(r, gameIDParam)
	if err != nil {
		log.Warn("invalid game id", slog.String("value", chi.URLParam(r, gameIDParam)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid game ID", err)
		return uuid.Nil, false
	}
	return gameID, true
}
