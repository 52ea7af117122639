// Package play runs a single memory-match game in a terminal.
package play

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/pairs/internal/domain"
	"github.com/phrazzld/pairs/internal/events"
	"github.com/phrazzld/pairs/internal/game"
	"github.com/phrazzld/pairs/internal/task"
)

const help = "Type a card number to turn it over, r to restart, q to quit.\n"

var rejectMessages = map[domain.RejectReason]string{
	domain.RejectLocked:          "Wait for the mismatched pair to turn back.",
	domain.RejectNotHidden:       "That card is already face up.",
	domain.RejectAlreadySelected: "You already picked that card.",
}

// Run plays one game, reading commands from in and drawing the board on
// out after every state change. It returns when the player quits, in is
// exhausted, or ctx is cancelled.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, log *slog.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := task.NewTimerScheduler(task.DefaultTimerSchedulerConfig(), log)
	defer scheduler.Stop()

	emitter := events.NewInMemoryEventEmitter(log)
	engine, err := game.NewEngine(cfg.engineConfig(), scheduler, emitter, log)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	b := &board{out: out}
	unsubscribe := emitter.RegisterHandler(&view{board: b, engine: engine})
	defer unsubscribe()

	b.write(help)
	if err := engine.StartGame(ctx); err != nil {
		return fmt.Errorf("start game: %w", err)
	}

	lines := scanLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := handleCommand(ctx, engine, b, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// view redraws the board as events arrive. The engine delivers events one
// batch at a time, so reveals needs no lock.
type view struct {
	board   *board
	engine  *game.Engine
	reveals int
}

// HandleEvent implements events.EventHandler. The second reveal of a pair is
// skipped because its match or mismatch event follows, and game_won is
// skipped because the final match already shows the win.
func (v *view) HandleEvent(_ context.Context, event *events.StateChangeEvent) error {
	switch event.Type {
	case events.TypeCardRevealed:
		v.reveals++
		if v.reveals > 1 {
			return nil
		}
	case events.TypeGameWon:
		return nil
	default:
		v.reveals = 0
	}
	v.board.render(v.engine.Snapshot())
	return nil
}

// handleCommand applies one line of input. It reports true when the player quits.
func handleCommand(ctx context.Context, engine *game.Engine, b *board, line string) (bool, error) {
	switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
	case "":
		return false, nil
	case "q", "quit", "exit":
		b.printf("Bye.\n")
		return true, nil
	case "r", "restart":
		if err := engine.RestartGame(ctx); err != nil {
			return false, fmt.Errorf("restart game: %w", err)
		}
		return false, nil
	case "h", "help", "?":
		b.write(help)
		return false, nil
	default:
		id, err := strconv.Atoi(cmd)
		if err != nil {
			b.printf("Unknown command %q. %s", cmd, help)
			return false, nil
		}

		outcome, err := engine.SelectCard(ctx, id)
		if errors.Is(err, domain.ErrUnknownCard) {
			b.printf("There is no card %d.\n", id)
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("select card: %w", err)
		}
		if outcome.Result == domain.ResultRejected {
			b.printf("%s\n", rejectMessages[outcome.Reason])
		}
		return false, nil
	}
}

// scanLines feeds lines from in into a channel that closes at EOF.
func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
