// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/thebtf/flowcheck/pkg/models"
)

// CommunityStore provides community story operations using GORM.
type CommunityStore struct {
	db      *gorm.DB
	onWrite WriteHook
}

// NewCommunityStore creates a new community store. onWrite may be nil.
func NewCommunityStore(store *Store, onWrite WriteHook) *CommunityStore {
	return &CommunityStore{db: store.DB, onWrite: onWrite}
}

// communityRow is a story joined with its author's username.
type communityRow struct {
	CommunityStory
	Username string
}

// CreateStory shares story on behalf of user.
func (s *CommunityStore) CreateStory(ctx context.Context, user *models.User, story string) (*models.CommunityStory, error) {
	row := &CommunityStory{UserID: user.ID, Story: story}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	notify(ctx, s.onWrite, TableCommunity)
	out := toModelStory(&communityRow{CommunityStory: *row, Username: user.Username})
	return &out, nil
}

// ListRecentStories returns stories newest first. A positive limit caps the count.
func (s *CommunityStore) ListRecentStories(ctx context.Context, limit int) ([]models.CommunityStory, error) {
	var rows []communityRow
	q := s.db.WithContext(ctx).
		Table(TableCommunity).
		Select(TableCommunity + ".*, " + TableUsers + ".username").
		Joins("LEFT JOIN " + TableUsers + " ON " + TableUsers + ".id = " + TableCommunity + ".user_id").
		Order(TableCommunity + ".created_at_epoch DESC, " + TableCommunity + ".id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.CommunityStory, len(rows))
	for i := range rows {
		out[i] = toModelStory(&rows[i])
	}
	return out, nil
}

func toModelStory(r *communityRow) models.CommunityStory {
	return models.CommunityStory{
		ID:             r.ID,
		UserID:         r.UserID,
		Username:       r.Username,
		Story:          r.Story,
		CreatedAt:      r.CreatedAt,
		CreatedAtEpoch: r.CreatedAtEpoch,
	}
}
