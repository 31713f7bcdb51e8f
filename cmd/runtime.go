package cmd

import (
	"context"
	"fmt"

	"inventory-sync/core/catalog"
	"inventory-sync/core/config"
	"inventory-sync/core/database"
	"inventory-sync/core/feed"
	"inventory-sync/core/lock"
	"inventory-sync/core/logger"
	"inventory-sync/core/storage"
	"inventory-sync/core/syncrun"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bootstrap loads configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// connect opens the database and creates the tables this service owns.
// The catalog table is only inspected: a missing column is logged, not fixed.
func connect(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, lock.Migrate, syncrun.Migrate); err != nil {
		return nil, err
	}

	missing, err := catalog.CheckSchema(db)
	switch {
	case err != nil:
		l.Warn("Catalog schema check failed, run the migrate command", zap.Error(err))
	case len(missing) > 0:
		l.Warn("Catalog table is missing columns, run the migrate command", zap.Strings("columns", missing))
	}
	return db, nil
}

// newLocker selects the single-flight lock implementation.
func newLocker(cfg syncrun.Config, db *gorm.DB) (lock.Locker, error) {
	switch cfg.Lock {
	case syncrun.LockMemory:
		return lock.NewMemoryLocker(), nil
	case syncrun.LockDatabase, "":
		return lock.NewDBLocker(db, cfg.LockName), nil
	default:
		return nil, fmt.Errorf("unsupported sync lock %q", cfg.Lock)
	}
}

// newStorage returns the object storage client, or nil when archiving is disabled.
func newStorage(cfg *config.Config) (storage.Client, error) {
	if !cfg.Sync.ArchiveReports {
		return nil, nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// newArchive returns the report archive backed by client, or nil without a client.
func newArchive(ctx context.Context, client storage.Client, bucket string) (*syncrun.Archive, error) {
	if client == nil {
		return nil, nil
	}

	archive := syncrun.NewArchive(client, bucket)
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

// newCoordinator wires the feed, catalog, lock, repository and archive into a coordinator.
func newCoordinator(ctx context.Context, cfg *config.Config, l *zap.Logger, db *gorm.DB, client storage.Client) (*syncrun.Coordinator, error) {
	source, err := feed.NewSource(cfg.Feed, l)
	if err != nil {
		return nil, err
	}

	locker, err := newLocker(cfg.Sync, db)
	if err != nil {
		return nil, err
	}

	archive, err := newArchive(ctx, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, err
	}

	coordinator := syncrun.NewCoordinator(source, catalog.NewGormStore(db), locker, syncrun.NewGormRepository(db), cfg.Sync, l)
	if archive != nil {
		coordinator.WithArchive(archive)
	}
	return coordinator, nil
}
