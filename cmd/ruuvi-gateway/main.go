// Command ruuvi-gateway runs the fixed-power side of the system: it
// accepts authenticated Noise connections from listener devices, decodes
// and stores their readings, and serves a small HTTP admin surface.
//
// Bootstrap follows the teacher's `cmd/cc-backend/main.go`: flags parsed
// up front, an optional gops agent, then every long-running component
// started as a goroutine coordinated by a WaitGroup and torn down on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/gops/agent"

	"github.com/Lemminkyinen/ruuvi-listener/internal/adminapi"
	"github.com/Lemminkyinen/ruuvi-listener/internal/config"
	"github.com/Lemminkyinen/ruuvi-listener/internal/gatewayserver"
	"github.com/Lemminkyinen/ruuvi-listener/internal/livefanout"
	"github.com/Lemminkyinen/ruuvi-listener/internal/maintenance"
	"github.com/Lemminkyinen/ruuvi-listener/internal/storage"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

func main() {
	var flagGops bool
	var flagLogLevel, flagEnvFile string
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagLogLevel, "loglevel", "info", "One of: debug, info, warn, err, crit")
	flag.StringVar(&flagEnvFile, "env", "./.env", "Path to a .env file (optional)")
	flag.Parse()

	log.SetLevel(flagLogLevel)
	config.LoadDotEnv(flagEnvFile)

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err)
		}
	}

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	store, err := storage.Open(cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("storage: %s", err)
	}
	defer store.Close()

	fanout, err := livefanout.Connect(cfg.NATSURL)
	if err != nil {
		log.Fatalf("livefanout: %s", err)
	}
	defer fanout.Close()

	srv := gatewayserver.New(store, cfg.AuthKey)
	srv.OnInserted = fanout.Publish

	sched, err := maintenance.New(srv, store)
	if err != nil {
		log.Fatalf("maintenance: %s", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("maintenance: %s", err)
	}
	defer sched.Shutdown()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("listen on %s: %s", cfg.ListenAddr, err)
	}
	log.Infof("ruuvi-gateway: listening for devices on %s", cfg.ListenAddr)

	admin := &adminapi.API{Store: store}
	adminSrv := &http.Server{Addr: cfg.AdminAddr, Handler: admin.Router()}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(ctx, ln); err != nil {
			log.Errorf("gatewayserver: %s", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("ruuvi-gateway: admin API listening on %s", cfg.AdminAddr)
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("adminapi: %s", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("ruuvi-gateway: shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	adminSrv.Shutdown(shutdownCtx)
	shutdownCancel()
	ln.Close()

	wg.Wait()
}
