// Command ruuvi-listener runs the battery-powered side of the system: it
// scans BLE advertisements, deduplicates and timestamps them, and streams
// them to a gateway over an authenticated, encrypted link.
//
// No concrete BLE radio driver ships here (spec.md §1: the radio stack is
// an external collaborator specified only by its contract); this binary
// wires bleclient.NoopAdvertiser in its place so it links and runs on a
// development machine, the same way the teacher's binaries run with a
// dummy auth backend before real credentials are configured.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/Lemminkyinen/ruuvi-listener/internal/bleclient"
	"github.com/Lemminkyinen/ruuvi-listener/internal/config"
	"github.com/Lemminkyinen/ruuvi-listener/internal/handoff"
	"github.com/Lemminkyinen/ruuvi-listener/internal/ledctl"
	"github.com/Lemminkyinen/ruuvi-listener/internal/listenerclient"
	"github.com/Lemminkyinen/ruuvi-listener/pkg/log"
)

func main() {
	var flagLogLevel, flagEnvFile string
	flag.StringVar(&flagLogLevel, "loglevel", "info", "One of: debug, info, warn, err, crit")
	flag.StringVar(&flagEnvFile, "env", "./.env", "Path to a .env file (optional)")
	flag.Parse()

	log.SetLevel(flagLogLevel)
	config.LoadDotEnv(flagEnvFile)

	cfg, err := config.LoadListener()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	queue := handoff.New()
	leds := ledctl.New(ledctl.ConsoleDriver{})
	scanner := bleclient.NewScanner(bleclient.NoopAdvertiser{}, queue, leds)

	gatewayAddr := net.JoinHostPort(cfg.GatewayIP, strconv.Itoa(cfg.GatewayPort))
	sender := listenerclient.New(gatewayAddr, cfg.AuthKey, queue, leds)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	ledStop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		leds.Run(ledStop)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := scanner.Run(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("bleclient: %s", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sender.Run(ctx)
	}()

	log.Infof("ruuvi-listener: forwarding to %s", gatewayAddr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("ruuvi-listener: shutting down")

	cancel()
	close(ledStop)
	wg.Wait()
}
