package listenerclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestBackoffDoublingAndCap reproduces spec.md §8 scenario 6's arithmetic:
// three consecutive failures yield 500, 1000, 2000ms, and the sequence
// caps at 30s rather than growing unbounded.
func TestBackoffDoublingAndCap(t *testing.T) {
	s := New("unused:0", [32]byte{}, nil, nil)
	assert.Equal(t, backoffInitial, s.backoff)

	want := []time.Duration{
		500 * time.Millisecond,
		1000 * time.Millisecond,
		2000 * time.Millisecond,
	}
	for i, w := range want {
		assert.Equalf(t, w, s.backoff, "failure %d", i+1)
		s.backoff = min(s.backoff*2, backoffCap)
	}

	// Keep doubling well past the cap; it must never exceed backoffCap.
	for i := 0; i < 10; i++ {
		s.backoff = min(s.backoff*2, backoffCap)
	}
	assert.Equal(t, backoffCap, s.backoff)
}

// TestBackoffResetsOnStreamingEntry mirrors connectAndStream's reset: once
// a session reaches Streaming, backoff returns to its initial value
// regardless of how far it had grown.
func TestBackoffResetsOnStreamingEntry(t *testing.T) {
	s := New("unused:0", [32]byte{}, nil, nil)
	s.backoff = backoffCap
	s.state = TimeSyncing

	s.state = Streaming
	s.backoff = backoffInitial

	assert.Equal(t, backoffInitial, s.backoff)
}
