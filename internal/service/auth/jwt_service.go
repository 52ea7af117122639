package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and checks the tokens that let a client act on one game.
// A token is bound to a single game id: whoever created the game holds it.
type JWTService interface {
	// GenerateToken creates a signed token for the given game.
	// Returns the token string or an error if token generation fails.
	GenerateToken(ctx context.Context, gameID uuid.UUID) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns the claims if the token is valid, or an error if validation fails
	// (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for game tokens.
type Claims struct {
	// GameID is the game the token grants access to.
	GameID uuid.UUID `json:"gid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Authorizes reports whether the claims grant access to gameID.
func (c *Claims) Authorizes(gameID uuid.UUID) bool {
	return c != nil && c.GameID == gameID
}
