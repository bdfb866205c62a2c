package noiseproto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFrameRoundTrip checks spec.md §8's framing invariant: for any byte
// slice b with |b| <= 65535, deframe(frame(b)) == b.
func TestFrameRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		bytes.Repeat([]byte{0xAB}, 1000),
		bytes.Repeat([]byte{0x7F}, MaxFrameLen),
	}

	for _, data := range cases {
		var buf bytes.Buffer
		require.NoError(t, writeFrame(&buf, data))

		got, err := readFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
}

func TestWriteFrameRejectsOversizedData(t *testing.T) {
	var buf bytes.Buffer
	err := writeFrame(&buf, make([]byte, MaxFrameLen+1))
	assert.Error(t, err)
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	_, err := readFrame(bytes.NewReader([]byte{0x00}))
	assert.Error(t, err)
}

func TestReadFrameTruncatedBody(t *testing.T) {
	_, err := readFrame(bytes.NewReader([]byte{0x00, 0x05, 0x01, 0x02}))
	assert.Error(t, err)
}
