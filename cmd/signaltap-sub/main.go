// Command signaltap-sub is an example subscriber: it dials a routerd
// instance's Subscribe RPC with an optional filter and logs every received
// message until interrupted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/transport/subscribe"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7777", "routerd gRPC address")
	filterText := flag.String("filter", "", "filter text (\"*/*/*\"-style); empty means match everything")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := subscribe.New(subscribe.Config{Addr: *addr})

	onBatch := func(batch []*ipc.MessageWithId) {
		for _, mwi := range batch {
			logger.Info("signaltap-sub: received", "segment_id", mwi.SegmentID, "source", mwi.SourceName, "msg", mwi.Msg)
		}
	}

	go func() {
		if err := client.Subscribe(ctx, *filterText); err != nil {
			logger.Error("signaltap-sub: subscribe command failed", "error", err)
		}
	}()

	if err := client.Run(ctx, onBatch); err != nil && ctx.Err() == nil {
		logger.Error("signaltap-sub: exiting", "error", err)
		os.Exit(1)
	}
}
