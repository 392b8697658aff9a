// Package telemetry provides metric instruments for flowcheck.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// InstrumentationName is the meter name.
const InstrumentationName = "github.com/thebtf/flowcheck"

// Metrics records service activity both as OpenTelemetry instruments and as
// local counters for the health endpoint. A nil *Metrics records nothing.
type Metrics struct {
	claimLookups    metric.Int64Counter
	similarity      metric.Float64Histogram
	fetches         metric.Int64Counter
	fetchDuration   metric.Float64Histogram
	recommendations metric.Int64Histogram
	forecasts       metric.Int64Counter

	hits          atomic.Int64
	misses        atomic.Int64
	fetchFailures atomic.Int64
	recommended   atomic.Int64
	forecastsOK   atomic.Int64
	forecastsNone atomic.Int64
}

// Snapshot holds the local counters.
type Snapshot struct {
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
	FetchFailures   int64 `json:"fetch_failures"`
	Recommendations int64 `json:"recommendations"`
	Forecasts       int64 `json:"forecasts"`
	Insufficient    int64 `json:"forecasts_insufficient"`
}

// New creates instruments on the global meter provider.
func New() *Metrics {
	return NewWithMeter(otel.Meter(InstrumentationName))
}

// NewWithMeter creates instruments on meter. Instruments that fail to
// register are replaced with no-ops and logged.
func NewWithMeter(meter metric.Meter) *Metrics {
	m := &Metrics{}
	var err error

	if m.claimLookups, err = meter.Int64Counter("flowcheck.claim.lookups",
		metric.WithDescription("Claim cache lookups by outcome")); err != nil {
		logInstrumentError("flowcheck.claim.lookups", err)
		m.claimLookups = noop.Int64Counter{}
	}
	if m.similarity, err = meter.Float64Histogram("flowcheck.claim.similarity",
		metric.WithDescription("Best cosine score against claim history")); err != nil {
		logInstrumentError("flowcheck.claim.similarity", err)
		m.similarity = noop.Float64Histogram{}
	}
	if m.fetches, err = meter.Int64Counter("flowcheck.factcheck.requests",
		metric.WithDescription("Fact check API calls by outcome")); err != nil {
		logInstrumentError("flowcheck.factcheck.requests", err)
		m.fetches = noop.Int64Counter{}
	}
	if m.fetchDuration, err = meter.Float64Histogram("flowcheck.factcheck.duration",
		metric.WithDescription("Fact check API latency"), metric.WithUnit("s")); err != nil {
		logInstrumentError("flowcheck.factcheck.duration", err)
		m.fetchDuration = noop.Float64Histogram{}
	}
	if m.recommendations, err = meter.Int64Histogram("flowcheck.goals.recommendations",
		metric.WithDescription("Goals recommended per request")); err != nil {
		logInstrumentError("flowcheck.goals.recommendations", err)
		m.recommendations = noop.Int64Histogram{}
	}
	if m.forecasts, err = meter.Int64Counter("flowcheck.progress.forecasts",
		metric.WithDescription("Progress forecasts by outcome")); err != nil {
		logInstrumentError("flowcheck.progress.forecasts", err)
		m.forecasts = noop.Int64Counter{}
	}
	return m
}

func logInstrumentError(name string, err error) {
	log.Warn().Err(err).Str("instrument", name).Msg("Failed to create metric instrument")
}

// RecordLookup records a claim cache decision. Score is ignored when the
// history was empty.
func (m *Metrics) RecordLookup(ctx context.Context, hit, matched bool, score float64) {
	if m == nil {
		return
	}
	if hit {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	m.claimLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
	if matched {
		m.similarity.Record(ctx, score)
	}
}

// RecordFetch records one fact check API call.
func (m *Metrics) RecordFetch(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		m.fetchFailures.Add(1)
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.fetchDuration.Record(ctx, elapsed.Seconds())
}

// RecordRecommendations records the size of a recommendation list.
func (m *Metrics) RecordRecommendations(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.recommended.Add(int64(n))
	m.recommendations.Record(ctx, int64(n))
}

// RecordForecast records a trend prediction; ok is false for insufficient data.
func (m *Metrics) RecordForecast(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.forecastsOK.Add(1)
	} else {
		m.forecastsNone.Add(1)
	}
	m.forecasts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("sufficient", ok)))
}

// Snapshot returns the local counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		CacheHits:       m.hits.Load(),
		CacheMisses:     m.misses.Load(),
		FetchFailures:   m.fetchFailures.Load(),
		Recommendations: m.recommended.Load(),
		Forecasts:       m.forecastsOK.Load(),
		Insufficient:    m.forecastsNone.Load(),
	}
}
