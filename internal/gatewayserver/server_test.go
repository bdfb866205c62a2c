package gatewayserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionCountReflectsStoredConns(t *testing.T) {
	s := &Server{}
	assert.Equal(t, 0, s.ConnectionCount())

	s.conns.Store("10.0.0.1:5555", time.Now())
	s.conns.Store("10.0.0.2:5555", time.Now())
	assert.Equal(t, 2, s.ConnectionCount())

	s.conns.Delete("10.0.0.1:5555")
	assert.Equal(t, 1, s.ConnectionCount())
}

func TestStaleConnectionsOnlyReportsThoseOlderThanThreshold(t *testing.T) {
	s := &Server{}
	s.conns.Store("fresh:1", time.Now())
	s.conns.Store("stale:1", time.Now().Add(-time.Hour))

	stale := s.StaleConnections(10 * time.Minute)
	assert.Equal(t, []string{"stale:1"}, stale)
}

func TestStaleConnectionsEmptyWhenAllFresh(t *testing.T) {
	s := &Server{}
	s.conns.Store("fresh:1", time.Now())
	assert.Empty(t, s.StaleConnections(time.Hour))
}
