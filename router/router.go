// Package router implements the single-writer broker task: it multiplexes
// one ingress queue of producer messages and one subscription-request queue
// onto N attached sinks. Grounded on
// _examples/original_source/crates/zelos-trace/src/router.rs, restructured
// from tokio::select!/flume channels onto Go channels and context.Context.
package router

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/signaltap/signaltap/internal/telemetry"
	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/sink"
	"github.com/signaltap/signaltap/store"
)

// DefaultIngressCapacity is the bounded ingress queue size used unless
// overridden (spec §4.4, §6).
const DefaultIngressCapacity = 1024

type subscriptionRequest struct {
	handle sink.Handle
	reply  chan<- []ipc.MessageWithId
}

// Router is the single-writer fan-out task. Its sink list and store are
// touched only from the goroutine running Run, per spec §4.4/§5.
type Router struct {
	ingress      chan *ipc.MessageWithId
	subscription chan subscriptionRequest
	store        store.Store
	logger       *slog.Logger
	meter        *telemetry.RouterMeter

	sinks []sink.Handle
}

// Option configures a Router at construction time.
type Option func(*config)

type config struct {
	ingressCapacity int
	logger          *slog.Logger
	otelMeter       metric.Meter
}

// WithIngressCapacity overrides the default bounded ingress queue size.
func WithIngressCapacity(n int) Option {
	return func(c *config) { c.ingressCapacity = n }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMeter wires an OpenTelemetry meter for router instrumentation; if
// omitted, no metrics are recorded.
func WithMeter(meter metric.Meter) Option {
	return func(c *config) { c.otelMeter = meter }
}

// New constructs a Router backed by st. The router does not start running
// until Run is called.
func New(st store.Store, opts ...Option) (*Router, error) {
	cfg := config{ingressCapacity: DefaultIngressCapacity, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Router{
		ingress:      make(chan *ipc.MessageWithId, cfg.ingressCapacity),
		subscription: make(chan subscriptionRequest),
		store:        st,
		logger:       cfg.logger,
	}

	if cfg.otelMeter != nil {
		meter, err := telemetry.NewRouterMeter(cfg.otelMeter, func() int64 { return int64(len(r.ingress)) })
		if err != nil {
			return nil, err
		}
		r.meter = meter
	}

	return r, nil
}

// Ingress returns the channel producers (sources) send onto. Sending
// blocks, applying backpressure, once the bounded queue is full.
func (r *Router) Ingress() chan<- *ipc.MessageWithId { return r.ingress }

// Subscribe attaches handle to the router and returns the current replay
// stream (spec §4.4, item 1): the reply is the metadata-derived IPC
// sequence the caller should prepend to its own live stream before
// forwarding any further message received via handle.
func (r *Router) Subscribe(ctx context.Context, handle sink.Handle) ([]ipc.MessageWithId, error) {
	reply := make(chan []ipc.MessageWithId, 1)
	req := subscriptionRequest{handle: handle, reply: reply}

	select {
	case r.subscription <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case replay := <-reply:
		return replay, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run executes the router's select loop until ctx is cancelled, draining
// any remaining ingress messages before returning (spec §4.4, item 3).
func (r *Router) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return nil

		case req := <-r.subscription:
			r.sinks = append(r.sinks, req.handle)
			if r.meter != nil {
				r.meter.Sinks.Add(ctx, 1)
			}
			replay, err := r.store.MetadataAsIPC()
			if err != nil {
				r.logger.Error("router: metadata_as_ipc failed", "error", err)
				replay = nil
			}
			req.reply <- replay

		case msg := <-r.ingress:
			r.forward(msg)
		}
	}
}

// drain forwards every message remaining in the ingress queue without
// blocking, then returns; it never waits for a new message to arrive.
func (r *Router) drain() {
	drained := 0
	start := time.Now()
	for {
		select {
		case msg := <-r.ingress:
			r.forward(msg)
			drained++
		default:
			r.logger.Info("router: drained ingress on cancellation", "count", drained, "duration", time.Since(start))
			return
		}
	}
}

func (r *Router) forward(msg *ipc.MessageWithId) {
	start := time.Now()

	if err := r.store.Update(msg); err != nil {
		r.logger.Error("router: store update failed", "error", err, "segment_id", msg.SegmentID)
	}

	var evicted []int
	for i, s := range r.sinks {
		if err := s.SendAsync(context.Background(), msg); err != nil {
			if sink.IsEvicted(err) {
				evicted = append(evicted, i)
			} else {
				r.logger.Warn("router: sink send failed", "error", err)
			}
		}
	}
	for i := len(evicted) - 1; i >= 0; i-- {
		idx := evicted[i]
		r.sinks = append(r.sinks[:idx], r.sinks[idx+1:]...)
		if r.meter != nil {
			r.meter.Sinks.Add(context.Background(), -1)
		}
	}

	if r.meter != nil {
		r.meter.MessagesReceived.Add(context.Background(), 1)
		r.meter.FanoutDuration.Record(context.Background(), float64(time.Since(start).Nanoseconds()))
	}
}
