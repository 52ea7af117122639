package play

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/phrazzld/pairs/internal/domain"
)

// board renders game states to a writer. Renders may come from the input
// loop and from the reversion timer, so writes are serialized.
type board struct {
	mu  sync.Mutex
	out io.Writer
}

// render prints the grid followed by a status line. Hidden cards show
// their id so the player knows what to type.
func (b *board) render(state domain.GameState) {
	var sb strings.Builder

	cols := columns(len(state.Deck))
	for i, card := range state.Deck {
		switch card.State {
		case domain.CardHidden:
			fmt.Fprintf(&sb, "[%2d] ", card.ID)
		case domain.CardRevealed:
			fmt.Fprintf(&sb, "<%2s> ", card.Symbol)
		case domain.CardMatched:
			fmt.Fprintf(&sb, " %2s  ", card.Symbol)
		}
		if (i+1)%cols == 0 || i == len(state.Deck)-1 {
			sb.WriteString("\n")
		}
	}

	fmt.Fprintf(&sb, "matched %d/%d", state.MatchedPairs, state.PairCount())
	if state.Locked {
		sb.WriteString("  (no match, wait...)")
	}
	sb.WriteString("\n")
	if state.Won() {
		sb.WriteString("You won! Type r to play again or q to quit.\n")
	}

	b.write(sb.String())
}

func (b *board) printf(format string, args ...interface{}) {
	b.write(fmt.Sprintf(format, args...))
}

func (b *board) write(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.out, s)
}

// columns picks the narrowest square-ish grid that holds n cards.
func columns(n int) int {
	c := 1
	for c*c < n {
		c++
	}
	return c
}
