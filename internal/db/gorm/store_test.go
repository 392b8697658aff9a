// Package gorm provides GORM-based database operations for flowcheck.
package gorm

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/thebtf/flowcheck/pkg/models"
)

// testStore creates a Store backed by a temporary SQLite file.
func testStore(t *testing.T) *Store {
	t.Helper()

	cfg := Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		MaxConns: 4,
		LogLevel: logger.Silent,
	}

	store, err := NewStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Ping())
	assert.Equal(t, DialectSQLite, store.Dialect())

	var journalMode string
	require.NoError(t, store.DB.Raw("PRAGMA journal_mode").Scan(&journalMode).Error)
	assert.Equal(t, "wal", journalMode)

	for _, table := range []string{TableUsers, TableClaims, TableGoals, TableProgress, TableCommunity} {
		assert.True(t, store.DB.Migrator().HasTable(table), table)
	}

	applied, err := store.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, MigrationIDs(), applied)
}

func TestMigrationIdempotency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := Config{Path: path, LogLevel: logger.Silent}

	store1, err := NewStore(cfg)
	require.NoError(t, err)
	_, err = NewUserStore(store1).CreateUser(context.Background(), "ada")
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := NewStore(cfg)
	require.NoError(t, err)
	defer store2.Close()

	user, err := NewUserStore(store2).GetUserByUsername(context.Background(), "ada")
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestRollbackLast(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.RollbackLast())
	assert.False(t, store.DB.Migrator().HasTable(TableCommunity))
	assert.True(t, store.DB.Migrator().HasTable(TableGoals))

	require.NoError(t, store.RollbackLast())
	assert.False(t, store.DB.Migrator().HasTable(TableGoals))
	assert.True(t, store.DB.Migrator().HasTable(TableClaims))
}

func TestIsPostgresURL(t *testing.T) {
	assert.True(t, IsPostgresURL("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgresURL("postgresql://localhost/db"))
	assert.False(t, IsPostgresURL("sqlite:///tmp/x.db"))
	assert.False(t, IsPostgresURL(""))
}

type hookRecorder struct {
	tables []string
}

func (h *hookRecorder) hook(_ context.Context, table string) {
	h.tables = append(h.tables, table)
}

func TestClaimStore(t *testing.T) {
	store := testStore(t)
	rec := &hookRecorder{}
	claims := NewClaimStore(store, rec.hook)
	ctx := context.Background()

	payload := models.Payload(`{"claims":[{"text":"The earth is round"}]}`)
	c, err := claims.InsertClaim(ctx, "The earth is round", payload)
	require.NoError(t, err)
	assert.Greater(t, c.ID, int64(0))
	assert.NotEmpty(t, c.CreatedAt)
	assert.Equal(t, []string{TableClaims}, rec.tables)

	got, err := claims.GetClaim(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "The earth is round", got.RawText)
	assert.JSONEq(t, string(payload), string(got.ResultPayload))

	missing, err := claims.GetClaim(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = claims.InsertClaim(ctx, "Vaccines cause autism", models.Payload(`{"claims":[]}`))
	require.NoError(t, err)

	all, err := claims.ListClaims(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "The earth is round", all[0].RawText)

	n, err := claims.CountClaims(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClaimStore_RejectsInvalidPayload(t *testing.T) {
	store := testStore(t)
	rec := &hookRecorder{}
	claims := NewClaimStore(store, rec.hook)

	_, err := claims.InsertClaim(context.Background(), "x", models.Payload(`{'claims': []}`))
	assert.ErrorIs(t, err, models.ErrInvalidPayload)
	assert.Empty(t, rec.tables)
}

func TestClaimStore_CorruptRowStillReadable(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.DB.Exec(
		"INSERT INTO claims (raw_text, result_payload, created_at, created_at_epoch) VALUES (?, ?, ?, ?)",
		"The earth is round", "{'claims': []}", "2024-01-01T00:00:00Z", 1,
	).Error)

	got, err := NewClaimStore(store, nil).GetClaim(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.ResultPayload.Valid())
}

func TestUserStore(t *testing.T) {
	store := testStore(t)
	users := NewUserStore(store)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, " ada ")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	_, err = users.CreateUser(ctx, "ada")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ada", got.Username)

	missing, err := users.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byName, err := users.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, byName)
}

func TestGoalStore(t *testing.T) {
	store := testStore(t)
	rec := &hookRecorder{}
	goals := NewGoalStore(store, rec.hook)
	ctx := context.Background()

	g1, err := goals.CreateGoal(ctx, 1, "Run a marathon", "2025-10-01")
	require.NoError(t, err)
	_, err = goals.CreateGoal(ctx, 2, "Learn Go", "2025-12-01")
	require.NoError(t, err)
	g3, err := goals.CreateGoal(ctx, 1, "Run a half marathon", "")
	require.NoError(t, err)

	assert.Equal(t, []string{TableGoals, TableGoals, TableGoals}, rec.tables)

	all, err := goals.ListGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := goals.ListGoalsByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, g1.ID, mine[0].ID)
	assert.Equal(t, g3.ID, mine[1].ID)
	assert.Equal(t, "2025-10-01", mine[0].TargetDate)

	latest := models.LatestGoal(all, 1)
	require.NotNil(t, latest)
	assert.Equal(t, g3.ID, latest.ID)
}

func TestProgressStore(t *testing.T) {
	store := testStore(t)
	progress := NewProgressStore(store, nil)
	ctx := context.Background()

	for _, label := range []string{"first", "second", "third"} {
		_, err := progress.CreateProgress(ctx, 7, label)
		require.NoError(t, err)
	}
	_, err := progress.CreateProgress(ctx, 8, "other")
	require.NoError(t, err)

	events, err := progress.ListProgressByUser(ctx, 7, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Label)
	assert.Equal(t, "third", events[2].Label)

	recent, err := progress.ListProgressByUser(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Label)
	assert.Equal(t, "third", recent[1].Label)

	none, err := progress.ListProgressByUser(ctx, 99, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommunityStore(t *testing.T) {
	store := testStore(t)
	rec := &hookRecorder{}
	users := NewUserStore(store)
	community := NewCommunityStore(store, rec.hook)
	ctx := context.Background()

	ada, err := users.CreateUser(ctx, "ada")
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, "bob")
	require.NoError(t, err)

	first, err := community.CreateStory(ctx, ada, "Ran my first 5k")
	require.NoError(t, err)
	assert.Equal(t, "ada", first.Username)
	assert.NotZero(t, first.CreatedAtEpoch)
	_, err = community.CreateStory(ctx, bob, "Read twelve books this year")
	require.NoError(t, err)
	_, err = community.CreateStory(ctx, ada, "Finished a half marathon")
	require.NoError(t, err)
	assert.Equal(t, []string{TableCommunity, TableCommunity, TableCommunity}, rec.tables)

	all, err := community.ListRecentStories(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Finished a half marathon", all[0].Story)
	assert.Equal(t, "ada", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)
	assert.Equal(t, first.ID, all[2].ID)

	recent, err := community.ListRecentStories(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Read twelve books this year", recent[1].Story)
}
