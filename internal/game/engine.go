package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pairs/internal/domain"
	"github.com/phrazzld/pairs/internal/events"
	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/phrazzld/pairs/internal/task"
)

// Default engine settings.
const (
	DefaultPairCount     = 8
	DefaultMismatchDelay = time.Second
)

// EngineConfig holds the settings one Engine is created with.
type EngineConfig struct {
	// PairCount is N, the number of distinct symbols dealt.
	PairCount int

	// Symbols optionally replaces the default A..Z alphabet. The first
	// PairCount entries are used.
	Symbols []string

	// MismatchDelay is how long a mismatched pair stays face up.
	MismatchDelay time.Duration

	// Random drives the shuffle. If nil, a source seeded from crypto/rand is used.
	// It is only used while the engine holds its lock.
	Random domain.RandomSource
}

// DefaultEngineConfig returns an EngineConfig with N = 8 and a one second delay.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PairCount:     DefaultPairCount,
		MismatchDelay: DefaultMismatchDelay,
	}
}

// Engine owns the state of one game and is safe for concurrent use.
type Engine struct {
	id            uuid.UUID
	symbols       []string
	mismatchDelay time.Duration
	rng           domain.RandomSource
	scheduler     task.Scheduler
	emitter       events.EventEmitter
	logger        *slog.Logger

	mu            sync.Mutex
	state         domain.GameState
	generation    uint64
	pendingRevert task.Handle
	outbox        []*events.StateChangeEvent

	// emitMu is held by whichever goroutine is draining the outbox.
	emitMu sync.Mutex
}

// NewEngine creates an idle engine. Call StartGame to deal the first deck.
func NewEngine(
	config EngineConfig,
	scheduler task.Scheduler,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*Engine, error) {
	if scheduler == nil {
		panic("scheduler cannot be nil") // ALLOW-PANIC
	}
	if emitter == nil {
		panic("emitter cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	if config.MismatchDelay < 0 {
		return nil, fmt.Errorf("%w: negative mismatch delay %s", ErrInvalidConfig, config.MismatchDelay)
	}

	symbols, err := domain.SelectSymbols(config.PairCount, config.Symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	rng := config.Random
	if rng == nil {
		rng, err = domain.NewRandomSource()
		if err != nil {
			return nil, fmt.Errorf("create random source: %w", err)
		}
	}

	id := uuid.New()
	return &Engine{
		id:            id,
		symbols:       symbols,
		mismatchDelay: config.MismatchDelay,
		rng:           rng,
		scheduler:     scheduler,
		emitter:       emitter,
		logger: logger.With(
			slog.String("component", "game_engine"),
			slog.String("game_id", id.String()),
		),
	}, nil
}

// ID returns the engine's game id.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// PairCount returns N.
func (e *Engine) PairCount() int {
	return len(e.symbols)
}

// MismatchDelay returns how long a mismatched pair stays face up.
func (e *Engine) MismatchDelay() time.Duration {
	return e.mismatchDelay
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() domain.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Phase returns the current game phase.
func (e *Engine) Phase() domain.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Phase()
}

// Generation returns how many decks have been dealt. It is zero before the
// first StartGame.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// StartGame deals a freshly shuffled deck: nothing selected, nothing matched,
// unlocked. Any state from a previous game is discarded.
func (e *Engine) StartGame(ctx context.Context) error {
	return e.deal(ctx, "game started")
}

// RestartGame discards the current game and deals a new one. A revert still
// pending from the discarded game is cancelled and can no longer touch the
// new state.
func (e *Engine) RestartGame(ctx context.Context) error {
	return e.deal(ctx, "game restarted")
}

func (e *Engine) deal(ctx context.Context, msg string) error {
	log := logger.FromContextOrDefault(ctx, e.logger)

	deck, err := domain.NewDeck(e.symbols)
	if err != nil {
		return fmt.Errorf("build deck: %w", err)
	}

	e.mu.Lock()
	deck.Shuffle(e.rng)
	e.cancelRevertLocked()
	e.generation++
	e.state = domain.NewGameState(deck)

	e.queueLocked(e.newEventLocked(events.TypeGameStarted, e.cardChangesLocked(allIDs(len(deck))...)...))
	generation := e.generation
	e.mu.Unlock()

	log.Info(msg,
		slog.Uint64("generation", generation),
		slog.Int("pair_count", len(e.symbols)))
	e.flush(ctx)
	return nil
}

// SelectCard processes one card selection and reports what happened.
//
// Selections made while a pair is pending, of a card that is not face down,
// or of the card already waiting for its partner are rejected: the outcome
// says why and the state does not change. An id outside the deck returns
// domain.ErrUnknownCard and selecting before StartGame returns
// ErrGameNotStarted.
func (e *Engine) SelectCard(ctx context.Context, cardID int) (domain.Outcome, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	e.mu.Lock()

	if e.state.Phase() == domain.PhaseIdle {
		e.mu.Unlock()
		return domain.Outcome{}, ErrGameNotStarted
	}
	if _, err := e.state.Deck.Card(cardID); err != nil {
		e.mu.Unlock()
		return domain.Outcome{}, err
	}

	if reason := e.rejectReasonLocked(cardID); reason != domain.RejectNone {
		outcome := domain.Rejected(reason, e.state.MatchedPairs)
		e.mu.Unlock()
		log.Debug("selection rejected",
			slog.Int("card_id", cardID),
			slog.String("reason", string(reason)))
		return outcome, nil
	}

	e.state.Deck[cardID].State = domain.CardRevealed
	revealed := e.newEventLocked(events.TypeCardRevealed, e.cardChangesLocked(cardID)...)
	revealed.Result = domain.ResultRevealed

	var (
		outcome domain.Outcome
		evts    = []*events.StateChangeEvent{revealed}
	)

	if e.state.Selection.Len() == 0 {
		e.state.Selection = append(e.state.Selection, cardID)
		outcome = domain.Outcome{
			Result:       domain.ResultRevealed,
			CardIDs:      []int{cardID},
			MatchedPairs: e.state.MatchedPairs,
		}
	} else {
		first := e.state.Selection[0]
		e.state.Selection = append(e.state.Selection, cardID)
		e.state.Locked = true

		if e.state.Deck[first].Symbol == e.state.Deck[cardID].Symbol {
			evts = append(evts, e.resolveMatchLocked(first, cardID)...)
			outcome = domain.Outcome{
				Result:       domain.ResultMatched,
				CardIDs:      []int{first, cardID},
				MatchedPairs: e.state.MatchedPairs,
				Won:          e.state.Won(),
			}
		} else {
			evts = append(evts, e.resolveMismatchLocked(ctx, log, first, cardID)...)
			outcome = domain.Outcome{
				Result:       domain.ResultMismatched,
				CardIDs:      []int{first, cardID},
				MatchedPairs: e.state.MatchedPairs,
			}
		}
	}

	e.queueLocked(evts...)
	e.mu.Unlock()

	log.Debug("card selected",
		slog.Int("card_id", cardID),
		slog.String("result", string(outcome.Result)),
		slog.Int("matched_pairs", outcome.MatchedPairs))
	if outcome.Won {
		log.Info("game won", slog.Int("pair_count", len(e.symbols)))
	}

	e.flush(ctx)
	return outcome, nil
}

func (e *Engine) rejectReasonLocked(cardID int) domain.RejectReason {
	switch {
	case e.state.Locked:
		return domain.RejectLocked
	case e.state.Selection.Contains(cardID):
		return domain.RejectAlreadySelected
	case !e.state.Deck[cardID].IsHidden():
		return domain.RejectNotHidden
	default:
		return domain.RejectNone
	}
}

func (e *Engine) resolveMatchLocked(first, second int) []*events.StateChangeEvent {
	e.state.Deck[first].State = domain.CardMatched
	e.state.Deck[second].State = domain.CardMatched
	e.state.Selection = domain.Selection{}
	e.state.Locked = false
	e.state.MatchedPairs++

	matched := e.newEventLocked(events.TypePairMatched, e.cardChangesLocked(first, second)...)
	matched.Result = domain.ResultMatched
	evts := []*events.StateChangeEvent{matched}

	// MatchedPairs only grows within a generation, so this fires once per game.
	if e.state.Won() {
		evts = append(evts, e.newEventLocked(events.TypeGameWon))
	}
	return evts
}

func (e *Engine) resolveMismatchLocked(
	ctx context.Context,
	log *slog.Logger,
	first, second int,
) []*events.StateChangeEvent {
	mismatched := e.newEventLocked(events.TypePairMismatched, e.cardChangesLocked(first, second)...)
	mismatched.Result = domain.ResultMismatched
	evts := []*events.StateChangeEvent{mismatched}

	h, err := e.scheduler.Schedule(ctx, e.mismatchDelay, newRevertTask(e, e.generation, first, second))
	if err != nil {
		// Without a scheduler the pair would stay locked forever, so hide it now.
		log.Warn("could not schedule pair revert, hiding pair immediately",
			slog.String("error", err.Error()))
		if ev := e.hidePairLocked([2]int{first, second}); ev != nil {
			evts = append(evts, ev)
		}
		return evts
	}
	e.pendingRevert = h
	return evts
}

// revert is run by revertTask once the mismatch delay has elapsed.
func (e *Engine) revert(ctx context.Context, generation uint64, cardIDs [2]int) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	e.mu.Lock()
	if generation != e.generation {
		e.mu.Unlock()
		log.Debug("ignoring revert from a previous game",
			slog.Uint64("task_generation", generation),
			slog.Uint64("generation", e.generation))
		return
	}

	ev := e.hidePairLocked(cardIDs)
	e.pendingRevert = nil
	if ev == nil {
		e.mu.Unlock()
		return
	}

	e.queueLocked(ev)
	e.mu.Unlock()

	log.Debug("pair reverted", slog.Int("first", cardIDs[0]), slog.Int("second", cardIDs[1]))
	e.flush(ctx)
}

// hidePairLocked turns a pending mismatched pair face down and unlocks.
// It returns nil when the pair is not the one pending.
func (e *Engine) hidePairLocked(cardIDs [2]int) *events.StateChangeEvent {
	sel := e.state.Selection
	if !e.state.Locked || sel.Len() != 2 || sel[0] != cardIDs[0] || sel[1] != cardIDs[1] {
		return nil
	}

	for _, id := range cardIDs {
		e.state.Deck[id].State = domain.CardHidden
	}
	e.state.Selection = domain.Selection{}
	e.state.Locked = false

	return e.newEventLocked(events.TypePairReverted, e.cardChangesLocked(cardIDs[0], cardIDs[1])...)
}

func (e *Engine) cancelRevertLocked() {
	if e.pendingRevert == nil {
		return
	}
	if e.pendingRevert.Cancel() {
		e.logger.Debug("cancelled pending pair revert", slog.String("task_id", e.pendingRevert.ID().String()))
	}
	e.pendingRevert = nil
}

func (e *Engine) newEventLocked(t events.EventType, cards ...events.CardChange) *events.StateChangeEvent {
	ev := events.NewStateChangeEvent(t, e.id, e.generation, cards)
	ev.MatchedPairs = e.state.MatchedPairs
	ev.PairCount = e.state.PairCount()
	return ev
}

func (e *Engine) cardChangesLocked(ids ...int) []events.CardChange {
	changes := make([]events.CardChange, len(ids))
	for i, id := range ids {
		c := e.state.Deck[id]
		changes[i] = events.CardChange{ID: c.ID, State: c.State}
		if !c.IsHidden() {
			changes[i].Symbol = c.Symbol
		}
	}
	return changes
}

func (e *Engine) queueLocked(evts ...*events.StateChangeEvent) {
	e.outbox = append(e.outbox, evts...)
}

func (e *Engine) takeOutbox() []*events.StateChangeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	batch := e.outbox
	e.outbox = nil
	return batch
}

func (e *Engine) outboxEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.outbox) == 0
}

// flush delivers queued events in the order they were queued. Only one
// goroutine delivers at a time; a caller that finds delivery in progress
// leaves its events to that goroutine. mu must not be held.
func (e *Engine) flush(ctx context.Context) {
	for {
		if !e.emitMu.TryLock() {
			return
		}
		for batch := e.takeOutbox(); len(batch) > 0; batch = e.takeOutbox() {
			for _, ev := range batch {
				if err := e.emitter.EmitEvent(ctx, ev); err != nil {
					e.logger.Error("failed to deliver state change",
						slog.String("event_type", string(ev.Type)),
						slog.String("error", err.Error()))
				}
			}
		}
		e.emitMu.Unlock()

		// Events queued while we were unlocking would otherwise wait for the next call.
		if e.outboxEmpty() {
			return
		}
	}
}

func allIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
