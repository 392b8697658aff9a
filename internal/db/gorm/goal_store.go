// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/thebtf/flowcheck/pkg/models"
)

// GoalStore provides goal operations using GORM.
type GoalStore struct {
	db      *gorm.DB
	onWrite WriteHook
}

// NewGoalStore creates a new goal store. onWrite may be nil.
func NewGoalStore(store *Store, onWrite WriteHook) *GoalStore {
	return &GoalStore{db: store.DB, onWrite: onWrite}
}

// CreateGoal stores a goal for userID.
func (s *GoalStore) CreateGoal(ctx context.Context, userID int64, text, targetDate string) (*models.Goal, error) {
	row := &Goal{UserID: userID, Text: text, TargetDate: targetDate}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	notify(ctx, s.onWrite, TableGoals)
	g := toModelGoal(row)
	return &g, nil
}

// ListGoals returns every goal of every user in insertion order.
func (s *GoalStore) ListGoals(ctx context.Context) ([]models.Goal, error) {
	var rows []Goal
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toModelGoals(rows), nil
}

// ListGoalsByUser returns the goals of userID, oldest first.
func (s *GoalStore) ListGoalsByUser(ctx context.Context, userID int64) ([]models.Goal, error) {
	var rows []Goal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at_epoch ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toModelGoals(rows), nil
}

func toModelGoals(rows []Goal) []models.Goal {
	out := make([]models.Goal, len(rows))
	for i := range rows {
		out[i] = toModelGoal(&rows[i])
	}
	return out
}
