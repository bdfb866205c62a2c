package bleclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lemminkyinen/ruuvi-listener/internal/handoff"
	"github.com/Lemminkyinen/ruuvi-listener/internal/ledctl"
)

// fakeAdvertiser replays a fixed sequence of reports within a single Scan
// call and then blocks until ctx is done, matching bleclient.go's doc
// comment on what a test double looks like.
type fakeAdvertiser struct {
	reports []Report
}

func (f *fakeAdvertiser) Scan(ctx context.Context, out chan<- Report) error {
	for _, r := range f.reports {
		select {
		case out <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func v2Advertisement(seq uint16, mac byte) []byte {
	payload := make([]byte, 24)
	payload[0] = 0x05 // format tag
	// TempRaw, HumidityRaw, PressureRaw, accel, power info all left zero.
	payload[16] = byte(seq >> 8)
	payload[17] = byte(seq)
	for i := 0; i < 6; i++ {
		payload[18+i] = mac
	}
	return append([]byte{0x99, 0x04}, payload...)
}

func e1Advertisement(seq uint32, mac byte) []byte {
	payload := make([]byte, 40)
	payload[0] = 0xE1 // format tag
	payload[22] = byte(seq >> 16)
	payload[23] = byte(seq >> 8)
	payload[24] = byte(seq)
	for i := 0; i < 6; i++ {
		payload[34+i] = mac
	}
	return append([]byte{0x99, 0x04}, payload...)
}

func newTestScanner(reports []Report) (*Scanner, *handoff.Queue) {
	queue := handoff.New()
	leds := ledctl.New(discardDriver{})
	s := NewScanner(&fakeAdvertiser{reports: reports}, queue, leds)
	return s, queue
}

type discardDriver struct{}

func (discardDriver) Paint(ledctl.Event) {}
func (discardDriver) Off()               {}

func TestScannerPushesDecodedRecordToQueue(t *testing.T) {
	reports := []Report{{Payload: v2Advertisement(1, 0xAA)}}
	s, queue := newTestScanner(reports)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	require.Equal(t, 1, queue.Len())
	item, err := queue.Pop(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, item.Record.Seq())
}

func TestScannerForwardsRSSIIntoV2Record(t *testing.T) {
	reports := []Report{{Payload: v2Advertisement(1, 0xAA), RSSI: -62, TxPower: 4}}
	s, queue := newTestScanner(reports)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	item, err := queue.Pop(context.Background())
	require.NoError(t, err)
	require.NotNil(t, item.Record.V2)
	assert.EqualValues(t, -62, item.Record.V2.RSSI)
}

func TestScannerForwardsRSSIAndTxPowerIntoE1Record(t *testing.T) {
	reports := []Report{{Payload: e1Advertisement(1, 0xAA), RSSI: -70, TxPower: -8}}
	s, queue := newTestScanner(reports)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	item, err := queue.Pop(context.Background())
	require.NoError(t, err)
	require.NotNil(t, item.Record.E1)
	assert.EqualValues(t, -70, item.Record.E1.RSSI)
	assert.EqualValues(t, -8, item.Record.E1.TxPower)
}

func TestClampInt8SaturatesOutOfRangeValues(t *testing.T) {
	assert.EqualValues(t, 127, clampInt8(200))
	assert.EqualValues(t, -128, clampInt8(-200))
	assert.EqualValues(t, 5, clampInt8(5))
}

func TestScannerDropsDuplicateSequence(t *testing.T) {
	mac := byte(0xBB)
	reports := []Report{
		{Payload: v2Advertisement(5, mac)},
		{Payload: v2Advertisement(5, mac)}, // same MAC+seq: a duplicate
	}
	s, queue := newTestScanner(reports)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	assert.Equal(t, 1, queue.Len())
}

func TestScannerIgnoresNonRuuviAdvertisement(t *testing.T) {
	reports := []Report{{Payload: []byte{0x01, 0x02, 0x03}}}
	s, queue := newTestScanner(reports)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	assert.Equal(t, 0, queue.Len())
}

func TestScannerDropsMalformedAdvertisementAndKeepsScanning(t *testing.T) {
	short := append([]byte{0x99, 0x04, 0x05}, make([]byte, 3)...) // format 5, way too short
	reports := []Report{
		{Payload: short},
		{Payload: v2Advertisement(9, 0xCC)},
	}
	s, queue := newTestScanner(reports)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Run(ctx)

	require.Equal(t, 1, queue.Len())
	item, err := queue.Pop(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 9, item.Record.Seq())
}
