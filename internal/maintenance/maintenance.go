// Package maintenance runs the gateway's periodic housekeeping jobs
// (SPEC_FULL.md §C15): connection/DB-pool stats logging and a
// stale-anchor sweep.
//
// Grounded on the teacher's `internal/taskmanager` package: a
// `go-co-op/gocron/v2` scheduler with one `s.NewJob(gocron.DurationJob(d),
// gocron.NewTask(...))` registration per job, started and shut down
// alongside the rest of the process.
package maintenance

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Lemminkyinen/ruuvi-listener/internal/gatewayserver"
	"github.com/Lemminkyinen/ruuvi-listener/internal/storage"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

const (
	statsInterval     = 30 * time.Second
	sweepInterval     = 5 * time.Minute
	staleAnchorMaxAge = time.Hour
)

// Scheduler owns the gocron scheduler backing the gateway's background
// jobs.
type Scheduler struct {
	s      gocron.Scheduler
	server *gatewayserver.Server
	store  *storage.Store
}

// New creates a Scheduler but does not start it; call Start.
func New(server *gatewayserver.Server, store *storage.Store) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("maintenance: create scheduler: %w", err)
	}
	return &Scheduler{s: s, server: server, store: store}, nil
}

// Start registers and starts the jobs.
func (m *Scheduler) Start() error {
	if _, err := m.s.NewJob(
		gocron.DurationJob(statsInterval),
		gocron.NewTask(m.logStats),
	); err != nil {
		return fmt.Errorf("maintenance: register stats job: %w", err)
	}

	if _, err := m.s.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(m.sweepStaleConnections),
	); err != nil {
		return fmt.Errorf("maintenance: register sweep job: %w", err)
	}

	m.s.Start()
	return nil
}

// Shutdown stops the scheduler.
func (m *Scheduler) Shutdown() error {
	return m.s.Shutdown()
}

func (m *Scheduler) logStats() {
	stats := m.store.DB().Stats()
	log.Infof("maintenance: %d connections open, db pool: %d open, %d in use, %d idle",
		m.server.ConnectionCount(), stats.OpenConnections, stats.InUse, stats.Idle)
}

func (m *Scheduler) sweepStaleConnections() {
	stale := m.server.StaleConnections(staleAnchorMaxAge)
	if len(stale) == 0 {
		return
	}
	log.Warnf("maintenance: %d connection(s) with no frame in over %s: %v",
		len(stale), staleAnchorMaxAge, stale)
}
