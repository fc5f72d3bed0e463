// Command signaltap-pub is an example producer: it dials a routerd
// instance's Publish RPC and emits a synthetic "tick" event once per
// interval until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/source"
	"github.com/signaltap/signaltap/transport/publish"
	"github.com/signaltap/signaltap/value"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7777", "routerd gRPC address")
	sourceName := flag.String("source", "heartbeat", "source name this process publishes under")
	interval := flag.Duration("interval", time.Second, "emission interval")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*addr, *sourceName, *interval, logger); err != nil {
		logger.Error("signaltap-pub: exiting", "error", err)
		os.Exit(1)
	}
}

func run(addr, sourceName string, interval time.Duration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outbox := make(chan *ipc.MessageWithId, publish.DefaultBatchSize)

	client := publish.New(publish.Config{Addr: addr})
	clientDone := make(chan error, 1)
	go func() { clientDone <- client.Run(ctx) }()

	src, err := source.New(sourceName, outbox)
	if err != nil {
		return fmt.Errorf("create source: %w", err)
	}
	defer src.Close()

	tick, err := src.BuildEvent("tick").AddField("count", value.UInt64, "").Build()
	if err != nil {
		return fmt.Errorf("register tick schema: %w", err)
	}

	if err := client.WaitUntilConnected(ctx, 10*time.Second); err != nil {
		return fmt.Errorf("wait for connection: %w", err)
	}
	logger.Info("signaltap-pub: connected", "addr", addr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var count uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-clientDone:
			return err
		case msg := <-outbox:
			if err := client.Publish(ctx, msg); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
		case <-ticker.C:
			count++
			if err := tick.Event().TryInsertUInt64("count", count).Emit(); err != nil {
				logger.Warn("signaltap-pub: emit failed", "error", err)
			}
		}
	}
}
