// Package kafka implements a mirror sink.Handle that republishes every
// delivered trace message onto a Kafka-compatible topic, partitioned by
// segment id. It attaches through the same router.Subscribe path as any
// other sink (spec §4.3) — the router never knows the subscriber is a
// broker instead of a stream. Grounded on the franz-go producer idiom in
// _examples/other_examples/ab791a5c_abiolaogu-OmniRoute__pkg-messaging-redpanda.go.go
// (kgo.Client.Produce with an async completion callback).
package kafka

import (
	"context"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/signaltap/signaltap/ipc"
	"github.com/signaltap/signaltap/wire"
)

// producer is the slice of *kgo.Client Sink needs, narrowed so tests can
// substitute a fake without reaching a real broker.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Sink mirrors trace messages onto a Kafka topic. It implements sink.Handle
// directly: no filter, no local queue — production failures are reported
// asynchronously via the client's own callback and never block the router.
type Sink struct {
	client producer
	topic  string
	logger *slog.Logger
}

// Option configures a Sink at construction time.
type Option func(*Sink)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// New returns a Sink that republishes onto topic via client.
func New(client *kgo.Client, topic string, opts ...Option) *Sink {
	return newSink(client, topic, opts...)
}

func newSink(client producer, topic string, opts ...Option) *Sink {
	s := &Sink{client: client, topic: topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendAsync marshals msg onto the wire format and hands it to the Kafka
// client's async producer, keyed by segment id so every message for a
// segment lands on the same partition. A marshal failure is returned
// synchronously (it can never succeed on retry); a broker-side produce
// failure is only logged, matching the router's non-blocking fan-out
// contract.
func (s *Sink) SendAsync(ctx context.Context, msg *ipc.MessageWithId) error {
	tm, err := wire.MessageToWire(msg)
	if err != nil {
		return err
	}
	data, err := tm.Marshal()
	if err != nil {
		return err
	}

	key := append([]byte(nil), msg.SegmentID[:]...)
	record := &kgo.Record{Topic: s.topic, Key: key, Value: data}

	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("sinkx/kafka: produce failed", "error", err, "segment_id", msg.SegmentID, "topic", s.topic)
		}
	})
	return nil
}
