package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewWithMeter(noop.NewMeterProvider().Meter("test"))
	ctx := context.Background()

	m.RecordLookup(ctx, true, true, 0.9)
	m.RecordLookup(ctx, false, true, 0.2)
	m.RecordLookup(ctx, false, false, 0)
	m.RecordFetch(ctx, time.Millisecond, nil)
	m.RecordFetch(ctx, time.Millisecond, errors.New("boom"))
	m.RecordRecommendations(ctx, 2)
	m.RecordForecast(ctx, true)
	m.RecordForecast(ctx, false)

	assert.Equal(t, Snapshot{
		CacheHits:       1,
		CacheMisses:     2,
		FetchFailures:   1,
		Recommendations: 2,
		Forecasts:       1,
		Insufficient:    1,
	}, m.Snapshot())
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordLookup(ctx, true, true, 1)
		m.RecordFetch(ctx, time.Second, nil)
		m.RecordRecommendations(ctx, 1)
		m.RecordForecast(ctx, true)
	})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestNew_GlobalProvider(t *testing.T) {
	m := New()
	m.RecordLookup(context.Background(), true, true, 1)
	assert.Equal(t, int64(1), m.Snapshot().CacheHits)
}

// failingMeter rejects every instrument it is asked for.
type failingMeter struct {
	noop.Meter
}

var errRejected = errors.New("instrument rejected")

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errRejected
}

func (failingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return nil, errRejected
}

func (failingMeter) Int64Histogram(string, ...metric.Int64HistogramOption) (metric.Int64Histogram, error) {
	return nil, errRejected
}

func TestNewWithMeter_RegistrationFailureUsesNoops(t *testing.T) {
	m := NewWithMeter(failingMeter{})
	ctx := context.Background()

	assert.NotNil(t, m.claimLookups)
	assert.NotNil(t, m.similarity)
	assert.NotNil(t, m.fetches)
	assert.NotNil(t, m.fetchDuration)
	assert.NotNil(t, m.recommendations)
	assert.NotNil(t, m.forecasts)

	assert.NotPanics(t, func() {
		m.RecordLookup(ctx, false, true, 0.4)
		m.RecordFetch(ctx, time.Millisecond, errors.New("boom"))
		m.RecordRecommendations(ctx, 3)
		m.RecordForecast(ctx, false)
	})
	assert.Equal(t, Snapshot{
		CacheMisses:     1,
		FetchFailures:   1,
		Recommendations: 3,
		Insufficient:    1,
	}, m.Snapshot())
}
