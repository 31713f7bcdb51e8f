package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-sync/core/database"
	"inventory-sync/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEntryNotFound is returned when an operation targets a key the catalog does not hold.
var ErrEntryNotFound = errors.New("catalog entry not found")

// itemSavepoint isolates a single item inside a bucket transaction.
const itemSavepoint = "sync_item"

// GormStore implements reconcile.Store on top of the catalog table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a catalog store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Migrate creates or updates the catalog table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}

// CheckSchema returns the required columns missing from the catalog table.
func CheckSchema(db *gorm.DB) ([]string, error) {
	columns, err := database.GetTableColumns(db, TableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", TableName)
	}

	present := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		present[col.Field] = struct{}{}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

type keyHash struct {
	NaturalKey  string
	ContentHash string
}

// ListKeyHashes returns key -> content hash for all entries that are not removed.
func (s *GormStore) ListKeyHashes(ctx context.Context) (map[string]string, error) {
	var rows []keyHash
	err := s.db.WithContext(ctx).
		Model(&Entry{}).
		Select("natural_key", "content_hash").
		Where("removed = ?", false).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog key hashes: %w", err)
	}

	index := make(map[string]string, len(rows))
	for _, row := range rows {
		index[row.NaturalKey] = row.ContentHash
	}
	return index, nil
}

// Upsert creates or replaces the entry for key and clears its removed flag.
func (s *GormStore) Upsert(ctx context.Context, key string, attrs map[string]any, hash string) error {
	payload, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to encode attributes for %s: %w", key, err)
	}

	entry := Entry{
		NaturalKey:   key,
		Attributes:   string(payload),
		ContentHash:  hash,
		LastSyncedAt: s.now(),
		Removed:      false,
	}

	// An item apply is never interrupted halfway by cancellation.
	err = s.db.WithContext(context.WithoutCancel(ctx)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "natural_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"attributes", "content_hash", "last_synced_at", "removed", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

// MarkRemoved soft-deletes the entry for key.
func (s *GormStore) MarkRemoved(ctx context.Context, key string) error {
	result := s.db.WithContext(context.WithoutCancel(ctx)).
		Model(&Entry{}).
		Where("natural_key = ?", key).
		Updates(map[string]any{
			"removed":        true,
			"last_synced_at": s.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark %s removed: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	return nil
}

// Touch refreshes last_synced_at for keys using a single IN update.
func (s *GormStore) Touch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(context.WithoutCancel(ctx)).
		Model(&Entry{}).
		Where("natural_key IN ?", keys).
		Update("last_synced_at", s.now()).Error
	if err != nil {
		return fmt.Errorf("failed to touch %d entries: %w", len(keys), err)
	}
	return nil
}

// Get returns the entry for key, including removed entries.
func (s *GormStore) Get(ctx context.Context, key string) (*Entry, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("natural_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// InBucket runs fn inside one transaction. Each item fn applies is wrapped in a
// savepoint so a rejected item is rolled back alone and the bucket keeps going.
// The transaction ignores cancellation of ctx: items applied before a cancellation
// are committed.
func (s *GormStore) InBucket(ctx context.Context, bucket reconcile.Bucket, fn func(reconcile.Store) error) error {
	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{inner: &GormStore{db: tx, now: s.now}, tx: tx})
	})
	if err != nil {
		return fmt.Errorf("%s bucket: %w", bucket, err)
	}
	return nil
}

// txStore applies items through a transaction, one savepoint per item.
type txStore struct {
	inner *GormStore
	tx    *gorm.DB
}

func (t *txStore) isolated(apply func() error) error {
	if err := t.tx.SavePoint(itemSavepoint).Error; err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	if err := apply(); err != nil {
		if rbErr := t.tx.RollbackTo(itemSavepoint).Error; rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}

func (t *txStore) ListKeyHashes(ctx context.Context) (map[string]string, error) {
	return t.inner.ListKeyHashes(ctx)
}

func (t *txStore) Upsert(ctx context.Context, key string, attrs map[string]any, hash string) error {
	return t.isolated(func() error { return t.inner.Upsert(ctx, key, attrs, hash) })
}

func (t *txStore) MarkRemoved(ctx context.Context, key string) error {
	return t.isolated(func() error { return t.inner.MarkRemoved(ctx, key) })
}

func (t *txStore) Touch(ctx context.Context, keys []string) error {
	return t.isolated(func() error { return t.inner.Touch(ctx, keys) })
}
