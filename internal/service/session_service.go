package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/domain"
	"github.com/phrazzld/pairs/internal/events"
	"github.com/phrazzld/pairs/internal/game"
	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/phrazzld/pairs/internal/task"
)

// SessionService manages the set of live games.
type SessionService interface {
	// CreateSession deals a new game and returns its session.
	// Returns ErrTooManySessions when the session limit is reached.
	CreateSession(ctx context.Context) (*Session, error)

	// GetSession returns the live session for gameID or ErrSessionNotFound.
	GetSession(ctx context.Context, gameID uuid.UUID) (*Session, error)

	// SelectCard forwards one selection to the game and returns the outcome
	// together with the state right after it.
	//
	// Returns:
	//   - ErrSessionNotFound if no live session has gameID
	//   - domain.ErrUnknownCard if cardID is outside the deck
	//   - a rejected outcome, not an error, for out-of-turn selections
	SelectCard(ctx context.Context, gameID uuid.UUID, cardID int) (domain.Outcome, domain.GameState, error)

	// Restart deals a fresh deck for gameID and returns the new state.
	Restart(ctx context.Context, gameID uuid.UUID) (domain.GameState, error)

	// EndSession discards the game. Subscribers see Session.Done close.
	EndSession(ctx context.Context, gameID uuid.UUID) error

	// Subscribe registers handler for the game's state changes. The returned
	// function removes it.
	Subscribe(ctx context.Context, gameID uuid.UUID, handler events.EventHandler) (func(), error)

	// SweepIdle ends every session idle for longer than the idle timeout and
	// returns how many were ended.
	SweepIdle(ctx context.Context) int

	// Count returns the number of live sessions.
	Count() int

	// Start launches the idle-session janitor.
	Start()

	// Stop halts the janitor and ends every session.
	Stop()
}

// SessionServiceConfig holds the settings for NewSessionService.
type SessionServiceConfig struct {
	// Engine is the configuration every new game is created with. Its Random
	// field is ignored; see NewRandom.
	Engine game.EngineConfig

	// NewRandom returns the shuffle source for a new game. If nil, each game
	// gets its own source seeded from crypto/rand.
	NewRandom func() domain.RandomSource

	MaxSessions   int
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Verify interface compliance at compile time
var _ SessionService = (*sessionServiceImpl)(nil)

type sessionServiceImpl struct {
	config    SessionServiceConfig
	scheduler task.Scheduler
	logger    *slog.Logger
	base      *slog.Logger // handed to engines and emitters
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once
}

// NewSessionService creates a SessionService. Mismatch reversions of every
// game run on scheduler.
func NewSessionService(
	config SessionServiceConfig,
	scheduler task.Scheduler,
	logger *slog.Logger,
) SessionService {
	return newSessionService(config, scheduler, logger)
}

func newSessionService(
	config SessionServiceConfig,
	scheduler task.Scheduler,
	logger *slog.Logger,
) *sessionServiceImpl {
	if scheduler == nil {
		panic("scheduler cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &sessionServiceImpl{
		config:     config,
		scheduler:  scheduler,
		logger:     logger.With(slog.String("component", "session_service")),
		base:       logger,
		now:        func() time.Time { return time.Now().UTC() },
		sessions:   make(map[uuid.UUID]*Session),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// CreateSession implements SessionService.CreateSession.
func (s *sessionServiceImpl) CreateSession(ctx context.Context) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.config.MaxSessions > 0 && s.Count() >= s.config.MaxSessions {
		log.Warn("session limit reached", slog.Int("max_sessions", s.config.MaxSessions))
		return nil, ErrTooManySessions
	}

	engineConfig := s.config.Engine
	engineConfig.Random = nil
	if s.config.NewRandom != nil {
		engineConfig.Random = s.config.NewRandom()
	}

	emitter := events.NewInMemoryEventEmitter(s.base)
	engine, err := game.NewEngine(engineConfig, s.scheduler, emitter, s.base)
	if err != nil {
		log.Error("failed to create game engine", slog.String("error", err.Error()))
		return nil, NewServiceError("session", "create", err)
	}
	if err := engine.StartGame(ctx); err != nil {
		log.Error("failed to start game", slog.String("error", err.Error()))
		return nil, NewServiceError("session", "create", err)
	}

	session := newSession(engine, emitter, s.now())

	s.mu.Lock()
	// Re-check under the write lock so concurrent creates cannot overshoot.
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()

	log.Info("game session created",
		slog.String("game_id", session.ID.String()),
		slog.Int("pair_count", engine.PairCount()),
		slog.Int("session_count", count))
	return session, nil
}

// GetSession implements SessionService.GetSession.
func (s *sessionServiceImpl) GetSession(ctx context.Context, gameID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[gameID]
	s.mu.RUnlock()

	if !ok {
		logger.FromContextOrDefault(ctx, s.logger).Debug("game session not found",
			slog.String("game_id", gameID.String()))
		return nil, ErrSessionNotFound
	}
	session.touch(s.now())
	return session, nil
}

// SelectCard implements SessionService.SelectCard.
func (s *sessionServiceImpl) SelectCard(
	ctx context.Context,
	gameID uuid.UUID,
	cardID int,
) (domain.Outcome, domain.GameState, error) {
	session, err := s.GetSession(ctx, gameID)
	if err != nil {
		return domain.Outcome{}, domain.GameState{}, err
	}

	outcome, err := session.Engine.SelectCard(ctx, cardID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCard) {
			return domain.Outcome{}, domain.GameState{}, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to select card",
			slog.String("game_id", gameID.String()),
			slog.Int("card_id", cardID),
			slog.String("error", err.Error()))
		return domain.Outcome{}, domain.GameState{}, NewServiceError("session", "select_card", err)
	}

	return outcome, session.Engine.Snapshot(), nil
}

// Restart implements SessionService.Restart.
func (s *sessionServiceImpl) Restart(ctx context.Context, gameID uuid.UUID) (domain.GameState, error) {
	session, err := s.GetSession(ctx, gameID)
	if err != nil {
		return domain.GameState{}, err
	}

	if err := session.Engine.RestartGame(ctx); err != nil {
		return domain.GameState{}, NewServiceError("session", "restart", err)
	}
	return session.Engine.Snapshot(), nil
}

// EndSession implements SessionService.EndSession.
func (s *sessionServiceImpl) EndSession(ctx context.Context, gameID uuid.UUID) error {
	s.mu.Lock()
	session, ok := s.sessions[gameID]
	delete(s.sessions, gameID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.end()

	logger.FromContextOrDefault(ctx, s.logger).Info("game session ended",
		slog.String("game_id", gameID.String()))
	return nil
}

// Subscribe implements SessionService.Subscribe.
func (s *sessionServiceImpl) Subscribe(
	ctx context.Context,
	gameID uuid.UUID,
	handler events.EventHandler,
) (func(), error) {
	session, err := s.GetSession(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return session.Emitter.RegisterHandler(handler), nil
}

// SweepIdle implements SessionService.SweepIdle.
func (s *sessionServiceImpl) SweepIdle(ctx context.Context) int {
	if s.config.IdleTimeout <= 0 {
		return 0
	}
	now := s.now()

	var swept []*Session
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.idleSince(now) > s.config.IdleTimeout {
			swept = append(swept, session)
			delete(s.sessions, id)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	for _, session := range swept {
		session.end()
	}

	if len(swept) > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("swept idle game sessions",
			slog.Int("swept_count", len(swept)),
			slog.Int("session_count", remaining))
	}
	return len(swept)
}

// Count implements SessionService.Count.
func (s *sessionServiceImpl) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Start implements SessionService.Start.
func (s *sessionServiceImpl) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.janitor()
		s.logger.Info("session janitor started",
			slog.Duration("sweep_interval", s.config.SweepInterval),
			slog.Duration("idle_timeout", s.config.IdleTimeout))
	})
}

// Stop implements SessionService.Stop.
func (s *sessionServiceImpl) Stop() {
	s.stopOnce.Do(func() {
		s.cancelFunc()
		s.wg.Wait()

		s.mu.Lock()
		sessions := s.sessions
		s.sessions = make(map[uuid.UUID]*Session)
		s.mu.Unlock()

		for _, session := range sessions {
			session.end()
		}
		s.logger.Info("session service stopped", slog.Int("ended_count", len(sessions)))
	})
}

// janitor periodically ends sessions that have been idle for too long
func (s *sessionServiceImpl) janitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.SweepIdle(s.ctx)
		}
	}
}

