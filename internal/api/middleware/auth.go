package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/api/shared"
	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/phrazzld/pairs/internal/redact"
	"github.com/phrazzld/pairs/internal/service/auth"
)

// GameIDParam is the chi URL parameter holding the game id.
const GameIDParam = "id"

// AccessTokenQueryParam carries the token for clients that cannot set headers,
// such as browser WebSocket connections.
const AccessTokenQueryParam = "access_token"

// AuthMiddleware checks that a request carries a token for the game it addresses.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates the game token from the Authorization header, or
// from the access_token query parameter when no header is sent, and requires
// it to be bound to the {id} URL parameter. The claims are stored in the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(chi.URLParam(r, GameIDParam))
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid game ID")
			return
		}

		token, ok := extractToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization required")
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to validate token",
					"error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		if !claims.Authorizes(gameID) {
			shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
				"Token does not grant access to this game", auth.ErrWrongGame,
				shared.WithElevatedLogLevel())
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithGameClaims(r.Context(), claims)))
	})
}

// extractToken returns the bearer token, or the query token when there is no
// Authorization header. ok is false for a malformed header.
func extractToken(r *http.Request) (token string, ok bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get(AccessTokenQueryParam), true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
