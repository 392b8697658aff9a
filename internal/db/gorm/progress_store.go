// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/thebtf/flowcheck/pkg/models"
)

// ProgressStore provides progress event operations using GORM.
type ProgressStore struct {
	db      *gorm.DB
	onWrite WriteHook
}

// NewProgressStore creates a new progress store. onWrite may be nil.
func NewProgressStore(store *Store, onWrite WriteHook) *ProgressStore {
	return &ProgressStore{db: store.DB, onWrite: onWrite}
}

// CreateProgress records an achievement for userID.
func (s *ProgressStore) CreateProgress(ctx context.Context, userID int64, label string) (*models.ProgressEvent, error) {
	row := &ProgressEvent{UserID: userID, Label: label}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	notify(ctx, s.onWrite, TableProgress)
	e := toModelProgress(row)
	return &e, nil
}

// ListProgressByUser returns the events of userID ordered by creation time.
// A positive limit keeps only the most recent events, still oldest first.
func (s *ProgressStore) ListProgressByUser(ctx context.Context, userID int64, limit int) ([]models.ProgressEvent, error) {
	var rows []ProgressEvent
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if limit > 0 {
		q = q.Order("created_at_epoch DESC, id DESC").Limit(limit)
	} else {
		q = q.Order("created_at_epoch ASC, id ASC")
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.ProgressEvent, len(rows))
	for i := range rows {
		out[i] = toModelProgress(&rows[i])
	}
	if limit > 0 {
		slices.Reverse(out)
	}
	return out, nil
}
