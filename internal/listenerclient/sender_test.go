package listenerclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

func TestStampRecordV2DoesNotMutateOriginal(t *testing.T) {
	original := ruuviproto.Record{
		Variant: ruuviproto.VariantV2,
		V2:      &ruuviproto.RawV2{Seq: 1},
	}

	stamped := stampRecord(original, 1_700_000_000_000)

	require.Nil(t, original.V2.Timestamp, "stampRecord must not mutate the queued item")
	require.NotNil(t, stamped.V2.Timestamp)
	assert.EqualValues(t, 1_700_000_000_000, *stamped.V2.Timestamp)
}

func TestStampRecordE1DoesNotMutateOriginal(t *testing.T) {
	original := ruuviproto.Record{
		Variant: ruuviproto.VariantE1,
		E1:      &ruuviproto.RawE1{Seq: 1},
	}

	stamped := stampRecord(original, 42)

	require.Nil(t, original.E1.Timestamp)
	require.NotNil(t, stamped.E1.Timestamp)
	assert.EqualValues(t, 42, *stamped.E1.Timestamp)
}
