// Package listenerclient implements the listener's sender task (spec.md
// §4.8, C8): connect to the gateway, run the Noise initiator handshake,
// perform the one-shot time sync, then stream frames from the handoff
// queue with exponential-backoff reconnect on any failure.
//
// Grounded on the state-machine/backoff shape of
// `_examples/original_source/ruuvi-listener/src/sender.rs`, expressed as
// a Go goroutine with a timer-driven retry loop in the style of the
// teacher's `internal/taskmanager` background workers.
package listenerclient

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Lemminkyinen/ruuvi-listener/internal/handoff"
	"github.com/Lemminkyinen/ruuvi-listener/internal/ledctl"
	"github.com/Lemminkyinen/ruuvi-listener/internal/noiseproto"
	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
	"github.com/Lemminkyinen/ruuvi-listener/internal/timesync"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

// State names the sender's position in the connection lifecycle
// (spec.md "State machines" section).
type State int

const (
	Disconnected State = iota
	Connecting
	Handshaking
	TimeSyncing
	Streaming
)

const (
	backoffInitial = 500 * time.Millisecond
	backoffCap     = 30 * time.Second
	dialTimeout    = 10 * time.Second
	ioTimeout      = 20 * time.Second
)

// Sender drives one outbound connection to the gateway at a time,
// reconnecting with exponential backoff on any failure.
type Sender struct {
	gatewayAddr string
	psk         [32]byte
	queue       *handoff.Queue
	leds        *ledctl.Controller

	state   State
	backoff time.Duration
}

// New returns a Sender targeting gatewayAddr ("host:port"), authenticated
// with psk, pulling records from queue.
func New(gatewayAddr string, psk [32]byte, queue *handoff.Queue, leds *ledctl.Controller) *Sender {
	return &Sender{
		gatewayAddr: gatewayAddr,
		psk:         psk,
		queue:       queue,
		leds:        leds,
		state:       Disconnected,
		backoff:     backoffInitial,
	}
}

// Run drives the sender until ctx is done, reconnecting forever.
func (s *Sender) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.connectAndStream(ctx); err != nil {
			log.Warnf("listenerclient: session ended: %s", err)
			s.state = Disconnected

			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				return
			}
			s.backoff = min(s.backoff*2, backoffCap)
		}
	}
}

// connectAndStream runs exactly one connection attempt through
// Connecting -> Handshaking -> TimeSyncing -> Streaming, returning the
// error that ended it (nil only if ctx was canceled mid-stream).
func (s *Sender) connectAndStream(ctx context.Context) error {
	s.state = Connecting
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.gatewayAddr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(ioTimeout))

	s.state = Handshaking
	sess, err := noiseproto.HandshakeClient(conn, s.psk)
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	defer sess.Close()

	s.state = TimeSyncing
	anchor, err := timesync.RunInitiator(sess)
	if err != nil {
		return fmt.Errorf("time sync: %w", err)
	}

	s.state = Streaming
	s.backoff = backoffInitial // spec.md §4.8: anchor_set resets backoff
	return s.stream(ctx, sess, anchor)
}

func (s *Sender) stream(ctx context.Context, sess *noiseproto.Session, anchor timesync.Anchor) error {
	for {
		item, err := s.queue.Pop(ctx)
		if err != nil {
			return nil // ctx canceled; not a session failure
		}

		stamped := stampRecord(item.Record, anchor.Stamp(item.CapturedAt))

		payload, err := ruuviproto.Marshal(stamped)
		if err != nil {
			log.Errorf("listenerclient: marshal record: %s", err)
			continue
		}

		sess.SetWriteDeadline(time.Now().Add(ioTimeout))
		if err := sess.Send(payload); err != nil {
			return fmt.Errorf("send frame: %w", err)
		}

		s.backoff = backoffInitial
		s.leds.Signal(ledctl.TcpOk)
	}
}

func stampRecord(r ruuviproto.Record, wallMS int64) ruuviproto.Record {
	ms := wallMS
	switch r.Variant {
	case ruuviproto.VariantV2:
		v2 := *r.V2
		v2.Timestamp = &ms
		r.V2 = &v2
	case ruuviproto.VariantE1:
		e1 := *r.E1
		e1.Timestamp = &ms
		r.E1 = &e1
	}
	return r
}
