// Package models contains domain models for flowcheck.
package models

import "time"

// ProgressEvent records one achievement reported by a user.
type ProgressEvent struct {
	Label          string `json:"achievement"`
	CreatedAt      string `json:"created_at"`
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	CreatedAtEpoch int64  `json:"created_at_epoch"`
}

// CreatedTime returns the time the event was recorded.
func (e *ProgressEvent) CreatedTime() time.Time {
	return time.UnixMilli(e.CreatedAtEpoch)
}

// EventTimes extracts the creation times of events, preserving order.
func EventTimes(events []ProgressEvent) []time.Time {
	times := make([]time.Time, len(events))
	for i := range events {
		times[i] = events[i].CreatedTime()
	}
	return times
}
