// Package telemetry wires the router's OpenTelemetry instruments, the
// Go-ecosystem counterpart of the `metrics!` macro calls in
// _examples/original_source/crates/zelos-trace/src/router.rs.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// RouterMeter holds the instruments the router records against.
type RouterMeter struct {
	MessagesReceived metric.Int64Counter
	Sinks            metric.Int64UpDownCounter
	FanoutDuration   metric.Float64Histogram

	queueDepth func() int64
}

// NewRouterMeter creates the router's instruments on meter. queueDepth is
// polled by the ingress_queue_depth observable gauge.
func NewRouterMeter(meter metric.Meter, queueDepth func() int64) (*RouterMeter, error) {
	rm := &RouterMeter{queueDepth: queueDepth}

	var err error
	rm.MessagesReceived, err = meter.Int64Counter(
		"signaltap.router.messages_received",
		metric.WithDescription("ingress messages processed by the router"),
	)
	if err != nil {
		return nil, err
	}

	rm.Sinks, err = meter.Int64UpDownCounter(
		"signaltap.router.sinks",
		metric.WithDescription("sinks currently attached to the router"),
	)
	if err != nil {
		return nil, err
	}

	rm.FanoutDuration, err = meter.Float64Histogram(
		"signaltap.router.fanout_duration",
		metric.WithDescription("time spent fanning one message out to all sinks"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge(
		"signaltap.router.ingress_queue_depth",
		metric.WithDescription("pending messages in the router's ingress queue"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			if rm.queueDepth != nil {
				o.Observe(rm.queueDepth())
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return rm, nil
}
