package play

import (
	"bytes"
	"io"
	"sync"
)

// safeBuffer is a bytes.Buffer that can be read while Run writes to it.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newLineFeed returns a reader fed by the returned channel, so a test can
// type commands one at a time. Closing the channel ends the input.
func newLineFeed() (io.Reader, chan<- string) {
	r, w := io.Pipe()
	feed := make(chan string)
	go func() {
		for line := range feed {
			if _, err := io.WriteString(w, line); err != nil {
				return
			}
		}
		w.Close()
	}()
	return r, feed
}
