// Package models contains domain models for flowcheck.
package models

// User is an account that owns goals and progress events.
type User struct {
	Username       string `json:"username"`
	CreatedAt      string `json:"created_at"`
	ID             int64  `json:"id"`
	CreatedAtEpoch int64  `json:"created_at_epoch"`
}
