package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

func TestMacString(t *testing.T) {
	mac := [6]byte{0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	assert.Equal(t, "33:44:55:66:77:88", macString(mac))
}

// TestInsertDropsRecordWithoutTimestamp covers the Open Question 2
// decision: a record dequeued before the connection's time-sync anchor
// existed has no timestamp and must be dropped, never reach the database.
func TestInsertDropsRecordWithoutTimestamp(t *testing.T) {
	s := &Store{} // no live DB connection needed: Insert must return before touching it
	err := s.Insert(context.Background(), ruuviproto.Decoded{Variant: ruuviproto.VariantV2, Timestamp: nil})
	assert.ErrorIs(t, err, ErrNoTimestamp)
}
