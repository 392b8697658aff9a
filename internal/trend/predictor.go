// Package trend provides progress trend forecasting for flowcheck.
package trend

import (
	"slices"
	"time"
)

const (
	// MinEvents is the fewest events a forecast needs.
	MinEvents = 3
	// DefaultHorizon is how far past the latest event ExpectedRank is evaluated.
	DefaultHorizon = 7 * 24 * time.Hour
)

// Forecast is the extrapolated continuation of a user's progress.
type Forecast struct {
	// NextAt is when the fitted line reaches the next milestone rank.
	NextAt time.Time `json:"next_milestone"`
	// LastAt is the latest observed event.
	LastAt time.Time `json:"last_event"`
	// ExpectedRank is the fitted cumulative count at LastAt+horizon.
	ExpectedRank float64 `json:"expected_rank"`
	// PerDay is the fitted slope in events per day.
	PerDay float64 `json:"events_per_day"`
	Events int     `json:"events"`
}

// PredictNext fits rank = a*t + b over the events ordered by time, where rank
// is the 1-based position of each event, and extrapolates one step ahead.
// It returns ok=false when fewer than MinEvents events are given.
// A non-positive horizon falls back to DefaultHorizon.
func PredictNext(events []time.Time, horizon time.Duration) (Forecast, bool) {
	if len(events) < MinEvents {
		return Forecast{}, false
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	sorted := slices.Clone(events)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	// Seconds relative to the first event keep the sums well conditioned.
	origin := sorted[0]
	n := float64(len(sorted))
	var sumX, sumY, sumXY, sumXX float64
	for i, t := range sorted {
		x := t.Sub(origin).Seconds()
		y := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	last := sorted[len(sorted)-1]
	lastX := last.Sub(origin).Seconds()
	fallback := last.Add(horizon)

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// All events share one timestamp.
		return Forecast{
			NextAt:       fallback,
			LastAt:       last,
			ExpectedRank: n,
			Events:       len(sorted),
		}, true
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	f := Forecast{
		NextAt:       fallback,
		LastAt:       last,
		ExpectedRank: slope*(lastX+horizon.Seconds()) + intercept,
		PerDay:       slope * (24 * time.Hour).Seconds(),
		Events:       len(sorted),
	}

	if slope > 0 {
		nextX := (n + 1 - intercept) / slope
		next := origin.Add(time.Duration(nextX * float64(time.Second)))
		if next.After(last) {
			f.NextAt = next
		}
	}
	return f, true
}
