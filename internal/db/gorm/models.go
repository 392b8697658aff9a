// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/thebtf/flowcheck/pkg/models"
)

// Table names.
const (
	TableUsers     = "users"
	TableClaims    = "claims"
	TableGoals     = "goals"
	TableProgress  = "progress_events"
	TableCommunity = "community_progress"
)

// User is a registered user.
type User struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Username       string `gorm:"type:varchar(150);uniqueIndex;not null"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"not null"`
}

func (User) TableName() string { return TableUsers }

// BeforeCreate hook to ensure timestamps are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.CreatedAt, u.CreatedAtEpoch = stamp(u.CreatedAt, u.CreatedAtEpoch)
	return nil
}

// Claim is a fact-check query with the raw API response.
type Claim struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	RawText        string         `gorm:"type:text;not null"`
	ResultPayload  models.Payload `gorm:"type:text;not null"`
	CreatedAt      string         `gorm:"not null"`
	CreatedAtEpoch int64          `gorm:"index:idx_claims_created,sort:desc;not null"`
}

func (Claim) TableName() string { return TableClaims }

// BeforeCreate hook to ensure timestamps are set.
func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	c.CreatedAt, c.CreatedAtEpoch = stamp(c.CreatedAt, c.CreatedAtEpoch)
	return nil
}

// Goal is a free-text user goal.
type Goal struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	UserID         int64  `gorm:"index:idx_goals_user_created,priority:1;not null"`
	Text           string `gorm:"column:goal;type:text;not null"`
	TargetDate     string `gorm:"type:varchar(64)"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"index:idx_goals_user_created,priority:2;not null"`
}

func (Goal) TableName() string { return TableGoals }

// BeforeCreate hook to ensure timestamps are set.
func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	g.CreatedAt, g.CreatedAtEpoch = stamp(g.CreatedAt, g.CreatedAtEpoch)
	return nil
}

// ProgressEvent is one recorded achievement.
type ProgressEvent struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	UserID         int64  `gorm:"index:idx_progress_user_created,priority:1;not null"`
	Label          string `gorm:"column:achievement;type:varchar(255);not null"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"index:idx_progress_user_created,priority:2;not null"`
}

func (ProgressEvent) TableName() string { return TableProgress }

// BeforeCreate hook to ensure timestamps are set.
func (p *ProgressEvent) BeforeCreate(tx *gorm.DB) error {
	p.CreatedAt, p.CreatedAtEpoch = stamp(p.CreatedAt, p.CreatedAtEpoch)
	return nil
}

// CommunityStory is a progress story shared with all users.
type CommunityStory struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	UserID         int64  `gorm:"index;not null"`
	Story          string `gorm:"column:progress_story;type:varchar(500);not null"`
	CreatedAt      string `gorm:"not null"`
	CreatedAtEpoch int64  `gorm:"index:idx_community_created,sort:desc;not null"`
}

func (CommunityStory) TableName() string { return TableCommunity }

// BeforeCreate hook to ensure timestamps are set.
func (c *CommunityStory) BeforeCreate(tx *gorm.DB) error {
	c.CreatedAt, c.CreatedAtEpoch = stamp(c.CreatedAt, c.CreatedAtEpoch)
	return nil
}

func stamp(createdAt string, epoch int64) (string, int64) {
	now := time.Now()
	if epoch == 0 {
		epoch = now.UnixMilli()
	}
	if createdAt == "" {
		createdAt = time.UnixMilli(epoch).UTC().Format(time.RFC3339)
	}
	return createdAt, epoch
}

func toModelUser(u *User) *models.User {
	return &models.User{
		ID:             u.ID,
		Username:       u.Username,
		CreatedAt:      u.CreatedAt,
		CreatedAtEpoch: u.CreatedAtEpoch,
	}
}

func toModelClaim(c *Claim) *models.Claim {
	return &models.Claim{
		ID:             c.ID,
		RawText:        c.RawText,
		ResultPayload:  c.ResultPayload,
		CreatedAt:      c.CreatedAt,
		CreatedAtEpoch: c.CreatedAtEpoch,
	}
}

func toModelGoal(g *Goal) models.Goal {
	return models.Goal{
		ID:             g.ID,
		UserID:         g.UserID,
		Text:           g.Text,
		TargetDate:     g.TargetDate,
		CreatedAt:      g.CreatedAt,
		CreatedAtEpoch: g.CreatedAtEpoch,
	}
}

func toModelProgress(p *ProgressEvent) models.ProgressEvent {
	return models.ProgressEvent{
		ID:             p.ID,
		UserID:         p.UserID,
		Label:          p.Label,
		CreatedAt:      p.CreatedAt,
		CreatedAtEpoch: p.CreatedAtEpoch,
	}
}
