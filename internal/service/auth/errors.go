package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid game token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("game token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("game token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("game token is missing")

	// ErrWrongGame indicates a valid token was presented for a different game
	ErrWrongGame = errors.New("game token was issued for another game")
)
