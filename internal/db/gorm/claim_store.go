// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thebtf/flowcheck/pkg/models"
)

// ClaimStore provides claim history operations using GORM.
type ClaimStore struct {
	db      *gorm.DB
	onWrite WriteHook
}

// NewClaimStore creates a new claim store. onWrite may be nil.
func NewClaimStore(store *Store, onWrite WriteHook) *ClaimStore {
	return &ClaimStore{db: store.DB, onWrite: onWrite}
}

// ListClaims returns all claims in insertion order.
func (s *ClaimStore) ListClaims(ctx context.Context) ([]models.Claim, error) {
	var rows []Claim
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Claim, len(rows))
	for i := range rows {
		out[i] = *toModelClaim(&rows[i])
	}
	return out, nil
}

// GetClaim retrieves a claim by ID. Returns nil, nil when it does not exist.
func (s *ClaimStore) GetClaim(ctx context.Context, id int64) (*models.Claim, error) {
	var row Claim
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toModelClaim(&row), nil
}

// InsertClaim stores a query with its fact-check result.
func (s *ClaimStore) InsertClaim(ctx context.Context, rawText string, payload models.Payload) (*models.Claim, error) {
	if !payload.Valid() {
		return nil, fmt.Errorf("insert claim: %w", models.ErrInvalidPayload)
	}
	row := &Claim{RawText: rawText, ResultPayload: payload}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	notify(ctx, s.onWrite, TableClaims)
	return toModelClaim(row), nil
}

// CountClaims returns the number of stored claims.
func (s *ClaimStore) CountClaims(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Claim{}).Count(&n).Error
	return n, err
}
