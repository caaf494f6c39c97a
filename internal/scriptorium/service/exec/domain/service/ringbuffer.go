package service

import (
	"fmt"
	"sync"
)

// capBuffer keeps the first max bytes written and counts the rest, so runaway
// script output cannot exhaust memory.
type capBuffer struct {
	mu      sync.Mutex
	max     int
	buf     []byte
	dropped int64
}

func newCapBuffer(max int) *capBuffer {
	return &capBuffer{max: max}
}

func (b *capBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.max - len(b.buf)
	if room > 0 {
		take := len(p)
		if take > room {
			take = room
		}
		b.buf = append(b.buf, p[:take]...)
		b.dropped += int64(len(p) - take)
	} else {
		b.dropped += int64(len(p))
	}
	return len(p), nil
}

// String renders the captured output, noting how much was discarded.
func (b *capBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dropped == 0 {
		return string(b.buf)
	}
	return fmt.Sprintf("%s\n[truncated: %d bytes]", b.buf, b.dropped)
}
