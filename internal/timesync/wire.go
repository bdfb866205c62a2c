package timesync

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Lemminkyinen/ruuvi-listener/internal/noiseproto"
)

// RunInitiator performs the initiator side of the one-shot round trip
// (spec.md §4.7 steps 1 and 3) over an already-handshaken session and
// returns the resulting Anchor.
func RunInitiator(sess *noiseproto.Session) (Anchor, error) {
	t1 := time.Now()
	if err := sess.Send(nil); err != nil {
		return Anchor{}, fmt.Errorf("timesync: send request: %w", err)
	}

	reply, err := sess.Recv()
	if err != nil {
		return Anchor{}, fmt.Errorf("timesync: recv reply: %w", err)
	}
	t2 := time.Now()

	if len(reply) != 8 {
		return Anchor{}, fmt.Errorf("timesync: reply has %d bytes, want 8", len(reply))
	}
	srvWallMS := int64(binary.BigEndian.Uint64(reply))

	return New(t1, t2, srvWallMS), nil
}

// RunResponder performs the responder side (spec.md §4.7 step 2): it
// waits for the initiator's empty sync frame, then replies with its own
// current wall-clock milliseconds.
func RunResponder(sess *noiseproto.Session) error {
	if _, err := sess.Recv(); err != nil {
		return fmt.Errorf("timesync: recv request: %w", err)
	}

	var body [8]byte
	binary.BigEndian.PutUint64(body[:], uint64(time.Now().UnixMilli()))
	if err := sess.Send(body[:]); err != nil {
		return fmt.Errorf("timesync: send reply: %w", err)
	}
	return nil
}
