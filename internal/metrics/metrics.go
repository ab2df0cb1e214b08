// Package metrics holds the business counters exported on /metrics.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "miaumarket-be"

// Recorder is safe to use as a nil pointer; every method becomes a no-op.
type Recorder struct {
	ordersPlaced         metric.Int64Counter
	orderFailures        metric.Int64Counter
	notificationsCreated metric.Int64Counter
	notificationsEvicted metric.Int64Counter
	chatRequests         metric.Int64Counter
	chatLatency          metric.Float64Histogram
}

// NewRecorder registers the instruments on the global meter provider.
func NewRecorder() (*Recorder, error) {
	return NewRecorderWithMeter(otel.Meter(meterName))
}

func NewRecorderWithMeter(meter metric.Meter) (*Recorder, error) {
	var (
		r   Recorder
		err error
	)

	if r.ordersPlaced, err = meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Orders committed")); err != nil {
		return nil, err
	}
	if r.orderFailures, err = meter.Int64Counter("order_failures_total",
		metric.WithDescription("Orders rejected or rolled back, by reason")); err != nil {
		return nil, err
	}
	if r.notificationsCreated, err = meter.Int64Counter("notifications_created_total",
		metric.WithDescription("Notifications written, by type")); err != nil {
		return nil, err
	}
	if r.notificationsEvicted, err = meter.Int64Counter("notifications_evicted_total",
		metric.WithDescription("Notifications deleted by the retention cap")); err != nil {
		return nil, err
	}
	if r.chatRequests, err = meter.Int64Counter("chat_requests_total",
		metric.WithDescription("Chatbot requests, by intent and outcome")); err != nil {
		return nil, err
	}
	if r.chatLatency, err = meter.Float64Histogram("chat_upstream_duration_seconds",
		metric.WithDescription("Latency of language model calls"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *Recorder) OrderPlaced(ctx context.Context) {
	if r == nil {
		return
	}
	r.ordersPlaced.Add(ctx, 1)
}

func (r *Recorder) OrderFailed(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	r.orderFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (r *Recorder) NotificationCreated(ctx context.Context, kind string) {
	if r == nil {
		return
	}
	r.notificationsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("type", kind)))
}

func (r *Recorder) NotificationsEvicted(ctx context.Context, n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.notificationsEvicted.Add(ctx, n)
}

func (r *Recorder) ChatHandled(ctx context.Context, intent, outcome string) {
	if r == nil {
		return
	}
	r.chatRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("outcome", outcome),
	))
}

func (r *Recorder) ChatUpstream(ctx context.Context, d time.Duration, outcome string) {
	if r == nil {
		return
	}
	r.chatLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
