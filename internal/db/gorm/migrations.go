// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// migrations lists every schema change in order. IDs are never reused.
func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		// Migration 001: Users
		{
			ID: "001_users",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(TableUsers)
			},
		},

		// Migration 002: Claim history
		{
			ID: "002_claims",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&Claim{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(TableClaims)
			},
		},

		// Migration 003: Goals and progress events
		{
			ID: "003_goals_progress",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&Goal{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&ProgressEvent{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(TableProgress, TableGoals)
			},
		},

		// Migration 004: Community progress stories
		{
			ID: "004_community_progress",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&CommunityStory{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(TableCommunity)
			},
		},
	}
}

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	return m.Migrate()
}

// RollbackLast undoes the most recent migration.
func (s *Store) RollbackLast() error {
	m := gormigrate.New(s.DB, gormigrate.DefaultOptions, migrations())
	return m.RollbackLast()
}

// MigrationIDs returns the IDs of all known migrations in order.
func MigrationIDs() []string {
	all := migrations()
	ids := make([]string, len(all))
	for i, m := range all {
		ids[i] = m.ID
	}
	return ids
}

// AppliedMigrations returns the IDs recorded in the migrations table.
func (s *Store) AppliedMigrations() ([]string, error) {
	var ids []string
	err := s.DB.Table(gormigrate.DefaultOptions.TableName).
		Order(gormigrate.DefaultOptions.IDColumnName).
		Pluck(gormigrate.DefaultOptions.IDColumnName, &ids).Error
	return ids, err
}
