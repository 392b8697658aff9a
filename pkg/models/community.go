// Package models contains domain models for flowcheck.
package models

// CommunityStory is a progress story a user shared with everyone.
type CommunityStory struct {
	Story          string `json:"progress_story"`
	Username       string `json:"username"`
	CreatedAt      string `json:"created_at"`
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	CreatedAtEpoch int64  `json:"created_at_epoch"`
}

// MaxStoryLength is the longest story accepted, in characters.
const MaxStoryLength = 500
