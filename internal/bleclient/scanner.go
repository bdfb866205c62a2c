package bleclient

import (
	"context"
	"time"

	"github.com/Lemminkyinen/ruuvi-listener/internal/dedup"
	"github.com/Lemminkyinen/ruuvi-listener/internal/handoff"
	"github.com/Lemminkyinen/ruuvi-listener/internal/ledctl"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"

	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
)

const reportChanLen = 8

// Scanner runs the listener's scan task (spec.md §4.1, §4.3, §4.4: "BLE
// scan, deduplicates, timestamps, and forwards"). It owns the
// deduplication table exclusively, satisfying the "interior mutability
// confined to the deduplicator table... safe because only the scanner
// task touches it" invariant of spec.md §9.
type Scanner struct {
	radio  Advertiser
	dedup  *dedup.Filter
	queue  *handoff.Queue
	leds   *ledctl.Controller
}

// NewScanner wires a radio, the handoff queue it feeds, and the LED
// controller it signals.
func NewScanner(radio Advertiser, queue *handoff.Queue, leds *ledctl.Controller) *Scanner {
	return &Scanner{
		radio: radio,
		dedup: dedup.New(),
		queue: queue,
		leds:  leds,
	}
}

// Run scans until ctx is done. Malformed advertisements are logged and
// dropped; scanning continues (spec.md §7: "Malformed advertisement ...
// Log, drop, keep scanning").
func (s *Scanner) Run(ctx context.Context) error {
	reports := make(chan Report, reportChanLen)

	errCh := make(chan error, 1)
	go func() { errCh <- s.radio.Scan(ctx, reports) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case report := <-reports:
			s.handle(report)
		}
	}
}

func (s *Scanner) handle(report Report) {
	payload, err := ruuviproto.LocateManufacturerData(report.Payload)
	if err != nil {
		return // not a Ruuvi advertisement; ignore silently
	}

	record, err := ruuviproto.Decode(payload)
	if err != nil {
		log.Warnf("bleclient: decode advertisement: %s", err)
		return
	}

	if s.dedup.Seen(record.MAC(), record.Seq()) {
		s.leds.Signal(ledctl.BleDuplicate)
		return
	}

	s.leds.Signal(ledctl.BleNew)

	attachReportFields(&record, report)

	dropped := s.queue.Push(handoff.Item{
		Record:     record,
		CapturedAt: time.Now(),
	})
	if dropped > 0 {
		log.Warnf("bleclient: handoff queue full, dropped %d queued record(s)", dropped)
	}
}

// attachReportFields copies the BLE report's RSSI (and, for E1, TX power)
// into the decoded record, so the gateway's tag_readings/air_readings
// rows carry the values the advertisement was actually observed at
// (spec.md §6) instead of the decoder's zero value.
func attachReportFields(record *ruuviproto.Record, report Report) {
	switch record.Variant {
	case ruuviproto.VariantV2:
		record.V2.RSSI = clampInt8(report.RSSI)
	case ruuviproto.VariantE1:
		record.E1.RSSI = clampInt8(report.RSSI)
		record.E1.TxPower = clampInt8(report.TxPower)
	}
}

func clampInt8(v int16) int8 {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return -128
	default:
		return int8(v)
	}
}
