package transport

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors recorded by an instrumented Transport.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the transport collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pocket_api_requests_total",
				Help: "Total number of Pocket API requests made (by endpoint and outcome).",
			},
			[]string{"endpoint", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pocket_api_request_duration_seconds",
				Help:    "Duration of Pocket API requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
			},
			[]string{"endpoint"},
		),
	}
}

type instrumented struct {
	next    Transport
	metrics *Metrics
}

// Instrument wraps next so every Post is counted and timed.
func Instrument(next Transport, m *Metrics) Transport {
	return &instrumented{next: next, metrics: m}
}

func (t *instrumented) Post(ctx context.Context, endpoint string, payload any) (Object, error) {
	path := endpoint
	if u, err := url.Parse(endpoint); err == nil {
		path = u.Path
	}

	start := time.Now()
	obj, err := t.next.Post(ctx, endpoint, payload)
	t.metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	t.metrics.RequestsTotal.WithLabelValues(path, outcome(err)).Inc()
	return obj, err
}

func outcome(err error) string {
	var apiErr *APIError
	var parseErr *ParseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.As(err, &parseErr):
		return "parse_error"
	default:
		return "network_error"
	}
}
