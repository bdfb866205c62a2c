// Package noiseproto implements the secure transport between listener and
// gateway (spec.md §5, C5/C6): a Noise_XXpsk3_25519_ChaChaPoly_SHA256
// handshake authenticated by a pre-shared key, followed by a 2-byte
// length-prefixed stream of AEAD-sealed frames.
//
// Grounded on the XX handshake/framed-connection shape of
// `_examples/other_examples/88816615_gosuda-portal__portal-core-cryptoops-handshaker.go.go`,
// adapted from its 4-byte length prefix and identity-binding payload (not
// needed here — spec.md has no separate identity layer beyond the shared
// AUTH_KEY) to spec.md's 2-byte prefix and PSK-mixed pattern.
package noiseproto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/flynn/noise"
)

const (
	// MaxFrameLen is the largest payload a single frame may carry, bounded
	// by the 2-byte big-endian length prefix (spec.md §5).
	MaxFrameLen = 65535

	// pskLen is the length of the pre-shared key mixed into message 3.
	pskLen = 32

	// xxPSK3Placement mixes the "psk" token in after the final XX message
	// (message 3: "s, se"), per the Noise spec's psk3 modifier.
	// flynn/noise's PresharedKeyPlacement is the 1-indexed message number,
	// so psk3 is placement 3, not 2.
	xxPSK3Placement = 3
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// ErrHandshakeFailed wraps any failure during the Noise handshake.
var ErrHandshakeFailed = errors.New("noiseproto: handshake failed")

// EntropySource supplies randomness for ephemeral/static keypair
// generation during the handshake. crypto/rand.Reader is the default on
// every platform this repo ships a build for; a constrained device with a
// hardware RNG can substitute its own source by reassigning Entropy.
type EntropySource = io.Reader

// Entropy is the source used by every handshake. Swappable, not
// per-call-configurable: both peers of a single process share one
// physical RNG.
var Entropy EntropySource = rand.Reader

// newHandshakeState builds the shared XXpsk3 handshake configuration. The
// static keypair is generated fresh per connection: spec.md has no notion
// of a long-lived per-device identity beyond the shared AUTH_KEY (the PSK
// itself provides mutual authentication), so there is nothing to persist
// across connections.
func newHandshakeState(initiator bool, psk [pskLen]byte) (*noise.HandshakeState, error) {
	staticKeypair, err := cipherSuite.GenerateKeypair(Entropy)
	if err != nil {
		return nil, fmt.Errorf("%w: generate static keypair: %w", ErrHandshakeFailed, err)
	}

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:           cipherSuite,
		Random:                Entropy,
		Pattern:               noise.HandshakeXX,
		Initiator:             initiator,
		StaticKeypair:         staticKeypair,
		PresharedKey:          psk[:],
		PresharedKeyPlacement: xxPSK3Placement,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: init: %w", ErrHandshakeFailed, err)
	}
	return hs, nil
}

// HandshakeClient performs the listener-side (initiator) XXpsk3 handshake
// over conn and returns a ready-to-use Session.
func HandshakeClient(conn io.ReadWriter, psk [pskLen]byte) (*Session, error) {
	hs, err := newHandshakeState(true, psk)
	if err != nil {
		return nil, err
	}

	msg1, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: write msg1: %w", ErrHandshakeFailed, err)
	}
	if err := writeFrame(conn, msg1); err != nil {
		return nil, fmt.Errorf("%w: send msg1: %w", ErrHandshakeFailed, err)
	}

	msg2, err := readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: recv msg2: %w", ErrHandshakeFailed, err)
	}
	if _, _, _, err := hs.ReadMessage(nil, msg2); err != nil {
		return nil, fmt.Errorf("%w: read msg2: %w", ErrHandshakeFailed, err)
	}

	msg3, cs1, cs2, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: write msg3: %w", ErrHandshakeFailed, err)
	}
	if err := writeFrame(conn, msg3); err != nil {
		return nil, fmt.Errorf("%w: send msg3: %w", ErrHandshakeFailed, err)
	}

	// cs1 = initiator -> responder (our send), cs2 = responder -> initiator (our recv)
	return newSession(conn, cs1, cs2), nil
}

// HandshakeServer performs the gateway-side (responder) XXpsk3 handshake
// over conn and returns a ready-to-use Session.
func HandshakeServer(conn io.ReadWriter, psk [pskLen]byte) (*Session, error) {
	hs, err := newHandshakeState(false, psk)
	if err != nil {
		return nil, err
	}

	msg1, err := readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: recv msg1: %w", ErrHandshakeFailed, err)
	}
	if _, _, _, err := hs.ReadMessage(nil, msg1); err != nil {
		return nil, fmt.Errorf("%w: read msg1: %w", ErrHandshakeFailed, err)
	}

	msg2, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: write msg2: %w", ErrHandshakeFailed, err)
	}
	if err := writeFrame(conn, msg2); err != nil {
		return nil, fmt.Errorf("%w: send msg2: %w", ErrHandshakeFailed, err)
	}

	msg3, err := readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: recv msg3: %w", ErrHandshakeFailed, err)
	}
	_, cs1, cs2, err := hs.ReadMessage(nil, msg3)
	if err != nil {
		return nil, fmt.Errorf("%w: read msg3: %w", ErrHandshakeFailed, err)
	}

	// cs1 = initiator -> responder (our recv), cs2 = responder -> initiator (our send)
	return newSession(conn, cs2, cs1), nil
}
