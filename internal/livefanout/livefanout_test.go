package livefanout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

func TestTableForKnownVariants(t *testing.T) {
	table, ok := tableFor(ruuviproto.VariantV2)
	assert.True(t, ok)
	assert.Equal(t, "sensor_readings", table)

	table, ok = tableFor(ruuviproto.VariantE1)
	assert.True(t, ok)
	assert.Equal(t, "air_readings", table)
}

func TestTableForUnknownVariant(t *testing.T) {
	_, ok := tableFor(ruuviproto.Variant(0xFF))
	assert.False(t, ok)
}

func TestConnectWithEmptyURLReturnsNilNoopPublisher(t *testing.T) {
	p, err := Connect("")
	assert.NoError(t, err)
	assert.Nil(t, p)

	// A nil *Publisher must be safe to use: Close and Publish are no-ops.
	p.Close()
	ts := int64(1)
	p.Publish(ruuviproto.Decoded{Variant: ruuviproto.VariantV2, Timestamp: &ts})
}

func TestPublishOnNilConnIsNoop(t *testing.T) {
	p := &Publisher{}
	ts := int64(1)
	// Must not panic despite conn being nil.
	p.Publish(ruuviproto.Decoded{Variant: ruuviproto.VariantV2, Timestamp: &ts})
	p.Close()
}

func TestPublishWithoutTimestampIsNoop(t *testing.T) {
	p := &Publisher{}
	// No timestamp means the record was never time-synced; Publish must
	// return before needing a real connection.
	p.Publish(ruuviproto.Decoded{Variant: ruuviproto.VariantV2, Timestamp: nil})
}
