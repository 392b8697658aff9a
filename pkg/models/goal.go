// Package models contains domain models for flowcheck.
package models

import "time"

// Goal is a free-text goal owned by a user.
type Goal struct {
	Text           string `json:"goal"`
	TargetDate     string `json:"target_date"`
	CreatedAt      string `json:"created_at"`
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	CreatedAtEpoch int64  `json:"created_at_epoch"`
}

// CreatedTime returns the creation time of the goal.
func (g *Goal) CreatedTime() time.Time {
	return time.UnixMilli(g.CreatedAtEpoch)
}

// NewerThan reports whether g was created after other.
// Goals created in the same millisecond are ordered by ID.
func (g *Goal) NewerThan(other *Goal) bool {
	if g.CreatedAtEpoch != other.CreatedAtEpoch {
		return g.CreatedAtEpoch > other.CreatedAtEpoch
	}
	return g.ID > other.ID
}

// LatestGoal returns the most recently created goal owned by userID, or nil.
func LatestGoal(goals []Goal, userID int64) *Goal {
	var latest *Goal
	for i := range goals {
		if goals[i].UserID != userID {
			continue
		}
		if latest == nil || goals[i].NewerThan(latest) {
			latest = &goals[i]
		}
	}
	return latest
}
