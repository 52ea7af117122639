package game

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/pairs/internal/domain"
	"github.com/phrazzld/pairs/internal/events"
	"github.com/phrazzld/pairs/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identitySource makes Fisher-Yates swap every position with itself, so
// the dealt deck keeps its unshuffled [symbols..., symbols...] layout.
type identitySource struct{}

func (identitySource) IntN(n int) int { return n - 1 }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	engine    *Engine
	scheduler *task.ManualScheduler
	recorder  *events.Recorder
}

func newFixture(t *testing.T, pairCount int) *fixture {
	t.Helper()

	scheduler := task.NewManualScheduler()
	emitter := events.NewInMemoryEventEmitter(testLogger())
	recorder := &events.Recorder{}
	emitter.RegisterHandler(recorder)

	engine, err := NewEngine(EngineConfig{
		PairCount:     pairCount,
		MismatchDelay: time.Second,
		Random:        identitySource{},
	}, scheduler, emitter, testLogger())
	require.NoError(t, err)
	require.NoError(t, engine.StartGame(context.Background()))

	return &fixture{engine: engine, scheduler: scheduler, recorder: recorder}
}

func (f *fixture) selectCard(t *testing.T, id int) domain.Outcome {
	t.Helper()
	out, err := f.engine.SelectCard(context.Background(), id)
	require.NoError(t, err)
	return out
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	scheduler := task.NewManualScheduler()
	emitter := events.NewInMemoryEventEmitter(testLogger())

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		e, err := NewEngine(DefaultEngineConfig(), scheduler, emitter, nil)
		require.NoError(t, err)
		assert.Equal(t, 8, e.PairCount())
		assert.Equal(t, time.Second, e.MismatchDelay())
		assert.Equal(t, domain.PhaseIdle, e.Phase())
		assert.Equal(t, uint64(0), e.Generation())
		assert.NotEqual(t, e.ID().String(), "00000000-0000-0000-0000-000000000000")
	})

	tests := []struct {
		name   string
		config EngineConfig
	}{
		{"zero pairs", EngineConfig{PairCount: 0}},
		{"too many default symbols", EngineConfig{PairCount: 27}},
		{"more pairs than custom symbols", EngineConfig{PairCount: 3, Symbols: []string{"x", "y"}}},
		{"duplicate custom symbols", EngineConfig{PairCount: 2, Symbols: []string{"x", "x"}}},
		{"negative delay", EngineConfig{PairCount: 2, MismatchDelay: -time.Millisecond}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngine(tc.config, scheduler, emitter, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("nil scheduler panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			_, _ = NewEngine(DefaultEngineConfig(), nil, emitter, nil)
		})
	})
}

func TestEngine_StartGame(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3)
	s := f.engine.Snapshot()

	require.NoError(t, s.Deck.Validate())
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, symbolsOf(s.Deck))
	assert.Equal(t, 6, s.CountState(domain.CardHidden))
	assert.Equal(t, 0, s.MatchedPairs)
	assert.Equal(t, 0, s.Selection.Len())
	assert.False(t, s.Locked)
	assert.Equal(t, domain.PhasePlaying, f.engine.Phase())
	assert.Equal(t, uint64(1), f.engine.Generation())

	evts := f.recorder.Events()
	require.Len(t, evts, 1)
	started := evts[0]
	assert.Equal(t, events.TypeGameStarted, started.Type)
	assert.Equal(t, f.engine.ID(), started.GameID)
	assert.Equal(t, 3, started.PairCount)
	require.Len(t, started.Cards, 6)
	for _, c := range started.Cards {
		assert.Empty(t, c.Symbol, "face-down cards never carry their symbol")
	}
}

func TestEngine_ShuffleUsesRandomSource(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	e, err := NewEngine(EngineConfig{
		PairCount: 8,
		Random:    domain.NewSeededRandomSource(7, 11),
	}, task.NewManualScheduler(), emitter, testLogger())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, e.RestartGame(context.Background()))
		s := e.Snapshot()
		require.NoError(t, s.Deck.Validate(), "every shuffle is a permutation with each symbol twice")
		assert.ElementsMatch(t,
			[]string{"A", "B", "C", "D", "E", "F", "G", "H", "A", "B", "C", "D", "E", "F", "G", "H"},
			symbolsOf(s.Deck))
	}
}

func TestEngine_TwoPairWalkthrough(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2)
	require.Equal(t, []string{"A", "B", "A", "B"}, symbolsOf(f.engine.Snapshot().Deck))

	out := f.selectCard(t, 0)
	assert.Equal(t, domain.ResultRevealed, out.Result)
	assert.Equal(t, []int{0}, out.CardIDs)

	out = f.selectCard(t, 2)
	assert.Equal(t, domain.ResultMatched, out.Result)
	assert.Equal(t, 1, out.MatchedPairs)
	assert.False(t, out.Won)

	out = f.selectCard(t, 1)
	assert.Equal(t, domain.ResultRevealed, out.Result)

	out = f.selectCard(t, 3)
	assert.Equal(t, domain.ResultMatched, out.Result)
	assert.Equal(t, 2, out.MatchedPairs)
	assert.True(t, out.Won)

	s := f.engine.Snapshot()
	assert.Equal(t, 4, s.CountState(domain.CardMatched))
	assert.True(t, s.Won())
	assert.Equal(t, domain.PhaseWon, f.engine.Phase())

	assert.Equal(t, []events.EventType{
		events.TypeGameStarted,
		events.TypeCardRevealed,
		events.TypeCardRevealed,
		events.TypePairMatched,
		events.TypeCardRevealed,
		events.TypeCardRevealed,
		events.TypePairMatched,
		events.TypeGameWon,
	}, f.recorder.Types())
	assert.Equal(t, 0, f.scheduler.Pending())
}

func TestEngine_MismatchRevertsAfterDelay(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2)

	f.selectCard(t, 0)
	out := f.selectCard(t, 1)
	assert.Equal(t, domain.ResultMismatched, out.Result)
	assert.Equal(t, []int{0, 1}, out.CardIDs)
	assert.Equal(t, 0, out.MatchedPairs)

	s := f.engine.Snapshot()
	assert.True(t, s.Locked)
	assert.Equal(t, domain.Selection{0, 1}, s.Selection)
	assert.Equal(t, domain.CardRevealed, s.Deck[0].State)
	assert.Equal(t, domain.CardRevealed, s.Deck[1].State)
	assert.Equal(t, 1, f.scheduler.Pending())

	out = f.selectCard(t, 3)
	assert.Equal(t, domain.ResultRejected, out.Result)
	assert.Equal(t, domain.RejectLocked, out.Reason)
	assert.Equal(t, domain.CardHidden, f.engine.Snapshot().Deck[3].State, "rejected selection changes nothing")

	require.NoError(t, f.scheduler.Advance(999*time.Millisecond))
	assert.True(t, f.engine.Snapshot().Locked, "pair stays up for the full delay")

	require.NoError(t, f.scheduler.Advance(time.Millisecond))
	s = f.engine.Snapshot()
	assert.False(t, s.Locked)
	assert.Equal(t, 0, s.Selection.Len())
	assert.Equal(t, 4, s.CountState(domain.CardHidden))

	evts := f.recorder.Events()
	last := evts[len(evts)-1]
	assert.Equal(t, events.TypePairReverted, last.Type)
	assert.Equal(t, []int{0, 1}, last.CardIDs())
	for _, c := range last.Cards {
		assert.Equal(t, domain.CardHidden, c.State)
		assert.Empty(t, c.Symbol)
	}

	assert.Equal(t, domain.ResultRevealed, f.selectCard(t, 3).Result, "input accepted again once unlocked")
}

func TestEngine_Rejections(t *testing.T) {
	t.Parallel()

	t.Run("pending first selection", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 2)
		f.selectCard(t, 0)

		out := f.selectCard(t, 0)
		assert.Equal(t, domain.ResultRejected, out.Result)
		assert.Equal(t, domain.RejectAlreadySelected, out.Reason)
		assert.Equal(t, domain.Selection{0}, f.engine.Snapshot().Selection)
	})

	t.Run("matched card", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 2)
		f.selectCard(t, 0)
		f.selectCard(t, 2)
		before := f.engine.Snapshot()
		eventCount := len(f.recorder.Events())

		out := f.selectCard(t, 2)
		assert.Equal(t, domain.ResultRejected, out.Result)
		assert.Equal(t, domain.RejectNotHidden, out.Reason)
		assert.Equal(t, 1, out.MatchedPairs)
		assert.Equal(t, before, f.engine.Snapshot())
		assert.Len(t, f.recorder.Events(), eventCount, "rejections emit nothing")
	})

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 2)
		for _, id := range []int{-1, 4, 100} {
			_, err := f.engine.SelectCard(context.Background(), id)
			assert.ErrorIs(t, err, domain.ErrUnknownCard)
		}
	})

	t.Run("not started", func(t *testing.T) {
		t.Parallel()
		e, err := NewEngine(EngineConfig{PairCount: 2}, task.NewManualScheduler(),
			events.NewInMemoryEventEmitter(testLogger()), testLogger())
		require.NoError(t, err)

		_, err = e.SelectCard(context.Background(), 0)
		assert.ErrorIs(t, err, ErrGameNotStarted)
	})
}

func TestEngine_WonEmittedOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2)
	for _, id := range []int{0, 2, 1, 3} {
		f.selectCard(t, id)
	}
	for id := 0; id < 4; id++ {
		out := f.selectCard(t, id)
		assert.Equal(t, domain.RejectNotHidden, out.Reason)
		assert.False(t, out.Won, "only the winning selection reports the win")
	}
	assert.Equal(t, 1, f.recorder.Count(events.TypeGameWon))

	require.NoError(t, f.engine.RestartGame(context.Background()))
	assert.Equal(t, domain.PhasePlaying, f.engine.Phase())
	assert.Equal(t, 0, f.engine.Snapshot().MatchedPairs)
}

func TestEngine_RestartCancelsPendingRevert(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2)
	f.selectCard(t, 0)
	f.selectCard(t, 1)
	require.Equal(t, 1, f.scheduler.Pending())

	require.NoError(t, f.engine.RestartGame(context.Background()))
	assert.Equal(t, 0, f.scheduler.Pending())
	assert.Equal(t, uint64(2), f.engine.Generation())

	s := f.engine.Snapshot()
	assert.False(t, s.Locked)
	assert.Equal(t, 0, s.Selection.Len())
	assert.Equal(t, 4, s.CountState(domain.CardHidden))

	require.NoError(t, f.scheduler.Advance(time.Minute))
	assert.Equal(t, 0, f.recorder.Count(events.TypePairReverted))
}

// uncancellableScheduler hands out handles whose Cancel always loses the
// race, as happens when a timer has already fired.
type uncancellableScheduler struct {
	*task.ManualScheduler
}

type uncancellableHandle struct {
	task.Handle
}

func (uncancellableHandle) Cancel() bool { return false }

func (s uncancellableScheduler) Schedule(ctx context.Context, delay time.Duration, t task.Task) (task.Handle, error) {
	h, err := s.ManualScheduler.Schedule(ctx, delay, t)
	if err != nil {
		return nil, err
	}
	return uncancellableHandle{h}, nil
}

func TestEngine_StaleRevertIgnored(t *testing.T) {
	t.Parallel()

	manual := task.NewManualScheduler()
	emitter := events.NewInMemoryEventEmitter(testLogger())
	recorder := &events.Recorder{}
	emitter.RegisterHandler(recorder)

	e, err := NewEngine(EngineConfig{PairCount: 2, MismatchDelay: time.Second, Random: identitySource{}},
		uncancellableScheduler{manual}, emitter, testLogger())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.StartGame(ctx))

	_, err = e.SelectCard(ctx, 0)
	require.NoError(t, err)
	_, err = e.SelectCard(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, e.RestartGame(ctx))

	// The new game has the same layout; reveal the same two positions.
	_, err = e.SelectCard(ctx, 0)
	require.NoError(t, err)
	_, err = e.SelectCard(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, manual.Pending())

	// The first task belongs to generation 1 and must not touch generation 2.
	require.NoError(t, manual.Advance(time.Second))
	assert.Equal(t, 1, recorder.Count(events.TypePairReverted))
	for _, ev := range recorder.Events() {
		if ev.Type == events.TypePairReverted {
			assert.Equal(t, uint64(2), ev.Generation)
		}
	}
	assert.False(t, e.Snapshot().Locked)
}

func TestEngine_ScheduleFailureHidesPairImmediately(t *testing.T) {
	t.Parallel()

	timers := task.NewTimerScheduler(task.DefaultTimerSchedulerConfig(), testLogger())
	timers.Stop()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	recorder := &events.Recorder{}
	emitter.RegisterHandler(recorder)

	e, err := NewEngine(EngineConfig{PairCount: 2, Random: identitySource{}}, timers, emitter, testLogger())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.StartGame(ctx))

	_, err = e.SelectCard(ctx, 0)
	require.NoError(t, err)
	out, err := e.SelectCard(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.ResultMismatched, out.Result)
	assert.False(t, e.Snapshot().Locked)
	types := recorder.Types()
	assert.Equal(t, []events.EventType{events.TypePairMismatched, events.TypePairReverted}, types[len(types)-2:])
}

func TestEngine_HandlersMayReadSnapshot(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	e, err := NewEngine(EngineConfig{PairCount: 2, Random: identitySource{}},
		task.NewManualScheduler(), emitter, testLogger())
	require.NoError(t, err)

	var seen []int
	emitter.RegisterHandler(events.HandlerFunc(func(ctx context.Context, ev *events.StateChangeEvent) error {
		seen = append(seen, e.Snapshot().MatchedPairs)
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, e.StartGame(ctx))
	_, err = e.SelectCard(ctx, 0)
	require.NoError(t, err)
	_, err = e.SelectCard(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 1, 1}, seen)
}

func TestEngine_HandlerMaySelect(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	recorder := &events.Recorder{}
	e, err := NewEngine(EngineConfig{PairCount: 2, Random: identitySource{}},
		task.NewManualScheduler(), emitter, testLogger())
	require.NoError(t, err)

	// Selecting card 2 as soon as card 0 is revealed completes the pair.
	emitter.RegisterHandler(events.HandlerFunc(func(ctx context.Context, ev *events.StateChangeEvent) error {
		if ev.Type == events.TypeCardRevealed && ev.Cards[0].ID == 0 {
			_, err := e.SelectCard(ctx, 2)
			return err
		}
		return nil
	}))
	emitter.RegisterHandler(recorder)

	ctx := context.Background()
	require.NoError(t, e.StartGame(ctx))
	_, err = e.SelectCard(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{
		events.TypeGameStarted,
		events.TypeCardRevealed,
		events.TypeCardRevealed,
		events.TypePairMatched,
	}, recorder.Types())
	assert.Equal(t, 1, e.Snapshot().MatchedPairs)
}

func TestEngine_PlayToCompletion(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	recorder := &events.Recorder{}
	emitter.RegisterHandler(recorder)
	scheduler := task.NewManualScheduler()

	e, err := NewEngine(EngineConfig{
		PairCount:     8,
		MismatchDelay: time.Second,
		Random:        domain.NewSeededRandomSource(1, 2),
	}, scheduler, emitter, testLogger())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.StartGame(ctx))

	// Pick cards left to right, pairing each with the next hidden card, so
	// the game sees a mix of matches and mismatches.
	lastMatched := 0
	for steps := 0; e.Phase() != domain.PhaseWon; steps++ {
		require.Less(t, steps, 1000, "game should finish")

		s := e.Snapshot()
		hidden := hiddenIDs(s.Deck)
		require.GreaterOrEqual(t, len(hidden), 2)

		_, err := e.SelectCard(ctx, hidden[0])
		require.NoError(t, err)
		out, err := e.SelectCard(ctx, hidden[1+steps%(len(hidden)-1)])
		require.NoError(t, err)

		require.GreaterOrEqual(t, out.MatchedPairs, lastMatched, "matched count never decreases")
		lastMatched = out.MatchedPairs

		after := e.Snapshot()
		assert.Equal(t, after.Selection.Len() == 2, after.Locked, "locked exactly while two cards are pending")
		require.NoError(t, scheduler.RunPending())
	}

	assert.Equal(t, 8, lastMatched)
	assert.Equal(t, 1, recorder.Count(events.TypeGameWon))
	assert.Equal(t, 8, recorder.Count(events.TypePairMatched))
	assert.Equal(t, recorder.Count(events.TypePairMismatched), recorder.Count(events.TypePairReverted))
}

func TestEngine_ConcurrentSelections(t *testing.T) {
	t.Parallel()

	timers := task.NewTimerScheduler(task.DefaultTimerSchedulerConfig(), testLogger())
	defer timers.Stop()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	recorder := &events.Recorder{}
	emitter.RegisterHandler(recorder)

	e, err := NewEngine(EngineConfig{
		PairCount:     4,
		MismatchDelay: time.Millisecond,
		Random:        domain.NewSeededRandomSource(3, 4),
	}, timers, emitter, testLogger())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.StartGame(ctx))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, err := e.SelectCard(ctx, (w+i)%8)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	s := e.Snapshot()
	require.NoError(t, s.Deck.Validate())
	assert.LessOrEqual(t, s.MatchedPairs, 4)
	assert.Equal(t, s.MatchedPairs*2, s.CountState(domain.CardMatched))
	assert.LessOrEqual(t, recorder.Count(events.TypeGameWon), 1)
}

func symbolsOf(d domain.Deck) []string {
	out := make([]string, len(d))
	for i, c := range d {
		out[i] = c.Symbol
	}
	return out
}

func hiddenIDs(d domain.Deck) []int {
	var ids []int
	for _, c := range d {
		if c.IsHidden() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
