package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-sync/core/database"
	"inventory-sync/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupTestDB creates a migrated in-memory SQLite catalog.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

// setupMockDB creates a GORM DB backed by sqlmock with the MySQL dialector.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func hashOf(t *testing.T, attrs map[string]any) string {
	h, err := reconcile.ContentHash(attrs)
	require.NoError(t, err)
	return h
}

func TestGormStore_UpsertAndList(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	attrs := map[string]any{"carat": 1.0, "color": "D"}
	require.NoError(t, store.Upsert(ctx, "R1", attrs, hashOf(t, attrs)))

	index, err := store.ListKeyHashes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"R1": hashOf(t, attrs)}, index)

	// Second upsert replaces attributes and hash
	updated := map[string]any{"carat": 1.2, "color": "D"}
	require.NoError(t, store.Upsert(ctx, "R1", updated, hashOf(t, updated)))

	entry, err := store.Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, hashOf(t, updated), entry.ContentHash)

	decoded, err := entry.AttributeMap()
	require.NoError(t, err)
	assert.Equal(t, 1.2, decoded["carat"])
}

func TestGormStore_MarkRemoved(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	attrs := map[string]any{"shape": "round"}
	require.NoError(t, store.Upsert(ctx, "R1", attrs, hashOf(t, attrs)))
	require.NoError(t, store.MarkRemoved(ctx, "R1"))

	index, err := store.ListKeyHashes(ctx)
	require.NoError(t, err)
	assert.Empty(t, index, "removed entries are not listed")

	entry, err := store.Get(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, entry.Removed, "entry is soft-deleted, not erased")

	t.Run("Unknown Key", func(t *testing.T) {
		err := store.MarkRemoved(ctx, "missing")
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("Upsert Restores", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, "R1", attrs, hashOf(t, attrs)))
		entry, err := store.Get(ctx, "R1")
		require.NoError(t, err)
		assert.False(t, entry.Removed)
	})
}

func TestGormStore_Touch(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	attrs := map[string]any{"clarity": "VS1"}
	require.NoError(t, store.Upsert(ctx, "R1", attrs, hashOf(t, attrs)))
	require.NoError(t, store.Upsert(ctx, "R2", attrs, hashOf(t, attrs)))

	later := start.Add(time.Hour)
	store.now = func() time.Time { return later }
	require.NoError(t, store.Touch(ctx, []string{"R1"}))

	r1, err := store.Get(ctx, "R1")
	require.NoError(t, err)
	r2, err := store.Get(ctx, "R2")
	require.NoError(t, err)

	assert.True(t, r1.LastSyncedAt.Equal(later))
	assert.True(t, r2.LastSyncedAt.Equal(start))
	assert.NoError(t, store.Touch(ctx, nil))
}

func TestGormStore_BucketTransactionIsolatesItems(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	err := db.Exec(`CREATE TRIGGER reject_bad BEFORE INSERT ON catalog_entries
		WHEN NEW.natural_key = 'BAD'
		BEGIN SELECT RAISE(ABORT, 'rejected by trigger'); END;`).Error
	require.NoError(t, err)

	attrs := map[string]any{"carat": 0.5}
	cs := &reconcile.ChangeSet{
		ToCreate: []reconcile.Item{
			{Key: "A", Attributes: attrs, Hash: hashOf(t, attrs)},
			{Key: "BAD", Attributes: attrs, Hash: hashOf(t, attrs)},
			{Key: "C", Attributes: attrs, Hash: hashOf(t, attrs)},
		},
	}

	report, err := reconcile.Apply(ctx, store, cs, reconcile.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "BAD", report.Failures[0].Key)
	assert.Equal(t, reconcile.KindApplyFailure, report.Failures[0].ErrorKind)
	assert.Equal(t, reconcile.OutcomePartial, report.Outcome)

	index, err := store.ListKeyHashes(ctx)
	require.NoError(t, err)
	assert.Len(t, index, 2)
	assert.Contains(t, index, "A")
	assert.Contains(t, index, "C")
}

func TestCheckSchema(t *testing.T) {
	t.Run("Migrated", func(t *testing.T) {
		db := setupTestDB(t)
		missing, err := CheckSchema(db)
		require.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("Legacy Table", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, db.Exec("CREATE TABLE catalog_entries (natural_key TEXT PRIMARY KEY, attributes TEXT)").Error)

		missing, err := CheckSchema(db)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"content_hash", "last_synced_at", "removed"}, missing)
	})

	t.Run("No Table", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		_, err = CheckSchema(db)
		assert.Error(t, err)
	})
}

func TestGormStore_SQL(t *testing.T) {
	t.Run("ListKeyHashes", func(t *testing.T) {
		db, mock := setupMockDB(t)
		store := NewGormStore(db)

		rows := sqlmock.NewRows([]string{"natural_key", "content_hash"}).
			AddRow("R1", "h1").
			AddRow("R2", "h2")
		mock.ExpectQuery("SELECT .*natural_key.*content_hash.* FROM `catalog_entries` WHERE removed = ?").
			WithArgs(false).
			WillReturnRows(rows)

		index, err := store.ListKeyHashes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"R1": "h1", "R2": "h2"}, index)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Touch Error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		store := NewGormStore(db)

		mock.ExpectExec("UPDATE `catalog_entries` SET .*last_synced_at.* WHERE natural_key IN").
			WillReturnError(errors.New("lock wait timeout"))

		err := store.Touch(context.Background(), []string{"R1", "R2"})
		assert.ErrorContains(t, err, "lock wait timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListKeyHashes Error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		store := NewGormStore(db)

		mock.ExpectQuery("SELECT .* FROM `catalog_entries`").WillReturnError(errors.New("connection reset"))

		_, err := store.ListKeyHashes(context.Background())
		assert.ErrorContains(t, err, "failed to list catalog key hashes")
	})
}
