// Command signaltap-routerd runs the broker process: a router fed by the
// Publish RPC and drained by the Subscribe RPC, both served over one gRPC
// listener. Lifecycle composition follows
// _examples/matgreaves-rig/internal/server/lifecycle.go's run.Sequence/
// run.Group/run.Func style (github.com/matgreaves/run).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"

	"github.com/matgreaves/run"

	"github.com/signaltap/signaltap/router"
	"github.com/signaltap/signaltap/store"
	"github.com/signaltap/signaltap/transport/publish"
	"github.com/signaltap/signaltap/transport/subscribe"
	"github.com/signaltap/signaltap/wire"
)

func main() {
	addr := flag.String("addr", ":7777", "gRPC listen address")
	ingressCapacity := flag.Int("ingress-capacity", router.DefaultIngressCapacity, "bounded ingress queue size")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := serve(*addr, *ingressCapacity, logger); err != nil {
		logger.Error("signaltap-routerd: exiting", "error", err)
		os.Exit(1)
	}
}

func serve(addr string, ingressCapacity int, logger *slog.Logger) error {
	st := store.New()
	meter := otel.Meter("signaltap-routerd")

	r, err := router.New(st,
		router.WithIngressCapacity(ingressCapacity),
		router.WithLogger(logger),
		router.WithMeter(meter),
	)
	if err != nil {
		return fmt.Errorf("construct router: %w", err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logger.Info("signaltap-routerd: listening", "addr", ln.Addr())

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(wire.Codec{}))
	grpcSrv.RegisterService(&publish.ServiceDesc, &publish.Service{Router: r})
	grpcSrv.RegisterService(&subscribe.ServiceDesc, &subscribe.Service{Router: r})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group := run.Group{
		"router": run.Func(func(ctx context.Context) error {
			return r.Run(ctx)
		}),
		"grpc": run.Func(func(ctx context.Context) error {
			serveErr := make(chan error, 1)
			go func() { serveErr <- grpcSrv.Serve(ln) }()
			select {
			case <-ctx.Done():
				grpcSrv.GracefulStop()
				return nil
			case err := <-serveErr:
				return err
			}
		}),
	}

	return group.Run(ctx)
}
