package handoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

func itemWithSeq(seq uint32) Item {
	return Item{
		Record: ruuviproto.Record{
			Variant: ruuviproto.VariantV2,
			V2:      &ruuviproto.RawV2{Seq: uint16(seq)},
		},
		CapturedAt: time.Now(),
	}
}

// TestPushPopBasic checks FIFO order when the queue never overflows.
func TestPushPopBasic(t *testing.T) {
	q := New()
	dropped := q.Push(itemWithSeq(1))
	assert.Equal(t, 0, dropped)
	dropped = q.Push(itemWithSeq(2))
	assert.Equal(t, 0, dropped)

	ctx := context.Background()
	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Record.V2.Seq)

	got, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Record.V2.Seq)
}

// TestPushOverflowClearsQueue reproduces spec.md §8 scenario 4: pushing 17
// distinct records while the consumer is blocked leaves only the 17th in
// the queue (clear-then-push on overflow at capacity 16).
func TestPushOverflowClearsQueue(t *testing.T) {
	q := New()
	for i := uint32(1); i <= capacity; i++ {
		dropped := q.Push(itemWithSeq(i))
		assert.Equal(t, 0, dropped, "push %d should not overflow yet", i)
	}
	assert.Equal(t, capacity, q.Len())

	dropped := q.Push(itemWithSeq(17))
	assert.Equal(t, capacity, dropped)
	assert.Equal(t, 1, q.Len())

	ctx := context.Background()
	got, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 17, got.Record.V2.Seq)
}

func TestPopBlocksUntilPushOrCancel(t *testing.T) {
	q := New()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
