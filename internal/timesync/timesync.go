// Package timesync implements the one-shot round-trip time anchor
// protocol (spec.md §4.7, C7): after the Noise handshake, the initiator
// measures the round-trip to the responder once, derives an offset
// between its own monotonic clock and the responder's wall clock, and
// thereafter stamps every sample from that single anchor rather than
// trusting its own (possibly wrong or absent) wall clock.
package timesync

import "time"

// Anchor pins a local monotonic instant to a wall-clock time, established
// once per connection (spec.md: "re-established on each reconnect").
type Anchor struct {
	refLocal time.Time
	refWallMS int64
}

// New derives the anchor from the initiator's round-trip measurement:
// t1 is the local time the sync request was sent, t2 is the local time
// the responder's reply was received, and srvWallMS is the wall-clock
// milliseconds the responder read when it wrote that reply.
func New(t1, t2 time.Time, srvWallMS int64) Anchor {
	delta := t2.Sub(t1) / 2
	return Anchor{
		refLocal:  t1.Add(delta),
		refWallMS: srvWallMS + delta.Milliseconds(),
	}
}

// Stamp converts a local monotonic instant to the wall-clock milliseconds
// implied by the anchor, saturating at zero (spec.md: "with saturating
// arithmetic at zero") rather than producing a negative timestamp for a
// sample captured before the anchor's reference instant.
func (a Anchor) Stamp(t time.Time) int64 {
	offsetMS := t.Sub(a.refLocal).Milliseconds()
	ms := a.refWallMS + offsetMS
	if ms < 0 {
		return 0
	}
	return ms
}

// StampTime is a convenience wrapper returning Stamp as a time.Time in
// UTC, for callers that want to format or insert it directly.
func (a Anchor) StampTime(t time.Time) time.Time {
	return time.UnixMilli(a.Stamp(t)).UTC()
}
