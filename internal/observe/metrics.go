// Package observe provides observability primitives for voicap:
// OpenTelemetry metrics with a Prometheus exporter bridge so the standard
// /metrics endpoint keeps working.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all voicap metrics.
const meterName = "github.com/ndhoang91/voicap"

// Metrics holds all OpenTelemetry metric instruments for the service.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// SessionDuration tracks how long dictation sessions stay open.
	SessionDuration metric.Float64Histogram

	// ActiveSessions tracks the number of live dictation sessions.
	ActiveSessions metric.Int64UpDownCounter

	// Results counts transcript result events. Use with attribute:
	//   attribute.Bool("final", ...)
	Results metric.Int64Counter

	// Extractions counts end-of-session extraction attempts. Use with
	// attribute: attribute.String("status", "ok"|"no_amount")
	Extractions metric.Int64Counter

	// EngineErrors counts engine faults. Use with attribute:
	//   attribute.String("code", ...)
	EngineErrors metric.Int64Counter
}

// sessionBuckets defines histogram bucket boundaries (in seconds) sized for
// dictation sessions, which run a few seconds to a couple of minutes.
var sessionBuckets = []float64{
	1, 2.5, 5, 10, 20, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SessionDuration, err = m.Float64Histogram("voicap.session.duration",
		metric.WithDescription("Duration of dictation sessions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(sessionBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("voicap.session.active",
		metric.WithDescription("Number of live dictation sessions."),
	); err != nil {
		return nil, err
	}
	if met.Results, err = m.Int64Counter("voicap.results",
		metric.WithDescription("Transcript result events received."),
	); err != nil {
		return nil, err
	}
	if met.Extractions, err = m.Int64Counter("voicap.extractions",
		metric.WithDescription("End-of-session transaction extraction attempts."),
	); err != nil {
		return nil, err
	}
	if met.EngineErrors, err = m.Int64Counter("voicap.engine.errors",
		metric.WithDescription("Recognition engine faults by code."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *Metrics
)

// DefaultMetrics returns the process-wide [Metrics] instance built on the
// global meter provider. Instruments are created lazily on first use.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			// Instrument creation only fails on invalid names, which is
			// a programming error; fall back to a no-op-safe nil check
			// at call sites is not worth it, so panic loudly.
			panic("observe: create default metrics: " + err.Error())
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordExtraction increments the extraction counter with the outcome.
func (m *Metrics) RecordExtraction(ctx context.Context, ok bool) {
	status := "ok"
	if !ok {
		status = "no_amount"
	}
	m.Extractions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordEngineError increments the engine error counter for a fault code.
func (m *Metrics) RecordEngineError(ctx context.Context, code string) {
	m.EngineErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordResult increments the result counter.
func (m *Metrics) RecordResult(ctx context.Context, final bool) {
	m.Results.Add(ctx, 1, metric.WithAttributes(attribute.Bool("final", final)))
}
