package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/phrazzld/pairs/internal/service/auth"
)

// ContextKey namespaces the request-scoped values this package stores.
type ContextKey string

const (
	GameClaimsContextKey ContextKey = "gameClaims"
	TraceIDKey           ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	traceID := generateTraceID()
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func generateTraceID() string {
	return traceIDFrom(rand.Reader)
}

// traceIDFrom hex-encodes TraceIDLength bytes read from r, falling back to a
// clock-based ID when r cannot supply them.
func traceIDFrom(r io.Reader) string {
	b := make([]byte, TraceIDLength)
	if n, err := io.ReadFull(r, b); err != nil {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

var fallbackSeq atomic.Uint64

// generateFallbackTraceID packs the clock and a process-wide sequence number,
// so two calls in the same clock tick still differ.
func generateFallbackTraceID() string {
	id := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(id[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(id[8:], fallbackSeq.Add(1))
	return hex.EncodeToString(id)
}

// WithGameClaims stores the validated token claims in ctx.
func WithGameClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, GameClaimsContextKey, claims)
}

// GetGameClaims returns the token claims stored by the auth middleware.
func GetGameClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(GameClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}
