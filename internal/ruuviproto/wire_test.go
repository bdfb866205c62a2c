package ruuviproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalV2RoundTrip(t *testing.T) {
	ts := int64(1_700_000_000_123)
	rec := Record{
		Variant: VariantV2,
		V2: &RawV2{
			TempRaw:     4860,
			HumidityRaw: 17805,
			PressureRaw: 44091,
			AccelX:      5,
			AccelY:      -12,
			AccelZ:      1004,
			PowerInfo:   93<<5 | 1,
			MovementCtr: 0x42,
			Seq:         7,
			MAC:         [6]byte{0x33, 0x44, 0x55, 0x66, 0x77, 0x88},
			RSSI:        -62,
			Timestamp:   &ts,
		},
	}

	wire, err := Marshal(rec)
	require.NoError(t, err)

	got, err := Unmarshal(wire)
	require.NoError(t, err)

	require.Equal(t, VariantV2, got.Variant)
	assert.Equal(t, *rec.V2, *got.V2)
}

func TestMarshalUnmarshalV2NoTimestamp(t *testing.T) {
	rec := Record{
		Variant: VariantV2,
		V2: &RawV2{
			MAC:  [6]byte{1, 2, 3, 4, 5, 6},
			RSSI: -70,
		},
	}

	wire, err := Marshal(rec)
	require.NoError(t, err)

	got, err := Unmarshal(wire)
	require.NoError(t, err)
	assert.Nil(t, got.V2.Timestamp)
	assert.Equal(t, int8(-70), got.V2.RSSI)
}

func TestMarshalUnmarshalE1RoundTrip(t *testing.T) {
	ts := int64(1_700_000_000_999)
	rec := Record{
		Variant: VariantE1,
		E1: &RawE1{
			TempRaw:     -1234,
			HumidityRaw: 20000,
			PressureRaw: 10000,
			PM1_0:       100,
			PM2_5:       200,
			PM4_0:       300,
			PM10_0:      400,
			CO2:         800,
			VOCIndex:    257,
			NOxIndex:    129,
			Luminosity:  123456,
			Seq:         999999,
			Flags:       0xC0,
			MAC:         [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
			RSSI:        -55,
			TxPower:     4,
			Timestamp:   &ts,
		},
	}

	wire, err := Marshal(rec)
	require.NoError(t, err)

	got, err := Unmarshal(wire)
	require.NoError(t, err)

	require.Equal(t, VariantE1, got.Variant)
	assert.Equal(t, *rec.E1, *got.E1)
}
