// Package gatewayserver implements the gateway's connection handler
// (spec.md §4.9, C9): accept a TCP connection, run the Noise responder
// handshake, serve one time-sync request, then loop decoding and
// inserting frames until the transport fails.
//
// Grounded on `_examples/original_source/ruuvi-gateway/src/main.rs`'s
// per-connection task shape; the Go idiom (`net.Listener.Accept` plus a
// `go handleConn(...)` per connection) follows the teacher's HTTP-server
// bootstrap in `cmd/cc-backend/main.go`, adapted from HTTP request
// handling to a raw framed-socket handler loop.
package gatewayserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Lemminkyinen/ruuvi-listener/internal/noiseproto"
	"github.com/Lemminkyinen/ruuvi-listener/internal/ruuviproto"
	"github.com/Lemminkyinen/ruuvi-listener/internal/storage"
	"github.com/Lemminkyinen/ruuvi-listener/internal/timesync"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

const (
	ioTimeout = 20 * time.Second

	// acceptRateLimit and acceptBurst are an operational safety net against
	// a misbehaving or malicious flood of connection attempts; spec.md
	// names no rate limit, so this never rejects the connection volume any
	// real deployment of listener devices would produce.
	acceptRateLimit = 50 // per second
	acceptBurst     = 100
)

// Server accepts listener connections and spawns an independent handler
// task per connection (spec.md §5: "no cross-connection ordering...
// no partial rows").
type Server struct {
	store   *storage.Store
	psk     [32]byte
	limiter *rate.Limiter

	conns sync.Map // remote addr (string) -> lastSeen (time.Time)

	OnInserted func(ruuviproto.Decoded) // optional hook for live fan-out (C16)
}

// New returns a Server backed by store, authenticating connections with
// psk.
func New(store *storage.Store, psk [32]byte) *Server {
	return &Server{
		store:   store,
		psk:     psk,
		limiter: rate.NewLimiter(rate.Limit(acceptRateLimit), acceptBurst),
	}
}

// ConnectionCount returns the number of currently handled connections.
func (s *Server) ConnectionCount() int {
	n := 0
	s.conns.Range(func(_, _ any) bool { n++; return true })
	return n
}

// StaleConnections returns the remote addresses of connections whose last
// frame was received more than threshold ago (spec.md §C15's anchor
// sweep: flagged, never torn down here).
func (s *Server) StaleConnections(threshold time.Duration) []string {
	var stale []string
	cutoff := time.Now().Add(-threshold)
	s.conns.Range(func(k, v any) bool {
		if v.(time.Time).Before(cutoff) {
			stale = append(stale, k.(string))
		}
		return true
	})
	return stale
}

// Serve accepts connections on ln until ctx is done or ln is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("gatewayserver: accept: %w", err)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			conn.Close()
			continue
		}

		go s.handle(ctx, conn)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	s.conns.Store(remote, time.Now())
	defer s.conns.Delete(remote)

	conn.SetDeadline(time.Now().Add(ioTimeout))
	sess, err := noiseproto.HandshakeServer(conn, s.psk)
	if err != nil {
		log.Warnf("gatewayserver: %s: handshake failed: %s", remote, err)
		return
	}
	defer sess.Close()

	if err := timesync.RunResponder(sess); err != nil {
		log.Warnf("gatewayserver: %s: time sync failed: %s", remote, err)
		return
	}

	for {
		sess.SetReadDeadline(time.Now().Add(ioTimeout))
		payload, err := sess.Recv()
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Infof("gatewayserver: %s: closing: %s", remote, err)
			}
			return
		}

		s.conns.Store(remote, time.Now())

		record, err := ruuviproto.Unmarshal(payload)
		if err != nil {
			log.Warnf("gatewayserver: %s: malformed record: %s", remote, err)
			continue
		}

		decoded := ruuviproto.Convert(record)
		if err := s.store.Insert(ctx, decoded); err != nil {
			if errors.Is(err, storage.ErrNoTimestamp) {
				log.Warnf("gatewayserver: %s: dropping pre-anchor sample", remote)
			} else {
				log.Errorf("gatewayserver: %s: insert: %s", remote, err)
			}
			continue
		}

		if s.OnInserted != nil {
			s.OnInserted(decoded)
		}
	}
}
