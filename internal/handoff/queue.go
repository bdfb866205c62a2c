// Package handoff implements the bounded single-producer/single-consumer
// queue (spec.md §4.4, C4) that hands decoded, deduplicated records from
// the BLE scan task to the gateway-sender task. The queue never blocks
// the producer: if it is full when a new record arrives, every queued
// record is dropped and replaced by the new one, on the theory that a
// backlog means the sender task has stalled and stale data is worse than
// gapped data.
package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

const capacity = 16

// Item is a single queued entry: a decoded record paired with the local
// monotonic instant it was captured at (spec.md §4.4), which the sender
// task later feeds to the time-sync anchor to produce a wall-clock stamp.
type Item struct {
	Record     ruuviproto.Record
	CapturedAt time.Time
}

// Queue is safe for exactly one concurrent producer and one concurrent
// consumer (spec.md §9); it is not safe for multiple producers or
// multiple consumers.
type Queue struct {
	mu       sync.Mutex
	buf      []Item
	nonEmpty chan struct{}
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{
		buf:      make([]Item, 0, capacity),
		nonEmpty: make(chan struct{}, 1),
	}
}

// Push enqueues item. If the queue is already at capacity, every
// previously-queued item is dropped first (clear-then-push), so Push
// never blocks and the queue never holds more than `capacity` items. It
// returns the number of items dropped to make room, which callers use
// for drop-rate metrics/logging.
func (q *Queue) Push(item Item) (dropped int) {
	q.mu.Lock()
	if len(q.buf) >= capacity {
		dropped = len(q.buf)
		q.buf = q.buf[:0]
	}
	q.buf = append(q.buf, item)
	q.mu.Unlock()

	select {
	case q.nonEmpty <- struct{}{}:
	default:
	}
	return dropped
}

// Pop blocks until at least one item is available or ctx is done, and
// returns the oldest queued item.
func (q *Queue) Pop(ctx context.Context) (Item, error) {
	for {
		q.mu.Lock()
		if len(q.buf) > 0 {
			item := q.buf[0]
			q.buf = q.buf[1:]
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-q.nonEmpty:
			// Re-check under lock: Push may have already been drained by
			// a previous wakeup in a pathological multi-waiter scenario,
			// but per the single-consumer contract this loop is the only
			// reader, so this simply re-enters the top of the loop.
		case <-ctx.Done():
			return Item{}, ctx.Err()
		}
	}
}

// Len reports the current number of queued records, for metrics/health
// endpoints.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
