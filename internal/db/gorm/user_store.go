// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/thebtf/flowcheck/pkg/models"
)

// ErrUsernameTaken is returned when a username is already registered.
var ErrUsernameTaken = errors.New("username already exists")

// UserStore provides user operations using GORM.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new user store.
func NewUserStore(store *Store) *UserStore {
	return &UserStore{db: store.DB}
}

// CreateUser registers username.
func (s *UserStore) CreateUser(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	row := &User{Username: username}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return nil, err
	}
	return toModelUser(row), nil
}

// GetUser retrieves a user by ID. Returns nil, nil when it does not exist.
func (s *UserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var row User
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toModelUser(&row), nil
}

// GetUserByUsername retrieves a user by name. Returns nil, nil when it does not exist.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var row User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toModelUser(&row), nil
}
