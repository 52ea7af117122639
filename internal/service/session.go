package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/events"
	"github.com/phrazzld/pairs/internal/game"
)

// Session is one live game held by the SessionService.
type Session struct {
	// ID equals the engine's game id.
	ID        uuid.UUID
	Engine    *game.Engine
	Emitter   *events.InMemoryEventEmitter
	CreatedAt time.Time

	lastActive atomic.Int64
	done       chan struct{}
	endOnce    sync.Once
}

func newSession(engine *game.Engine, emitter *events.InMemoryEventEmitter, now time.Time) *Session {
	s := &Session{
		ID:        engine.ID(),
		Engine:    engine,
		Emitter:   emitter,
		CreatedAt: now,
		done:      make(chan struct{}),
	}
	s.touch(now)
	return s
}

// LastActive returns when the session was last used.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load()).UTC()
}

// Done is closed when the session is ended or swept.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActive())
}

func (s *Session) end() {
	s.endOnce.Do(func() { close(s.done) })
}
