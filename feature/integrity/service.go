package integrity

import (
	"context"
	"errors"

	"inventory-sync/core/catalog"
	"inventory-sync/core/database"
	"inventory-sync/core/lock"
	"inventory-sync/core/storage"
	"inventory-sync/core/syncrun"
	"inventory-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrArchiveDisabled is returned by archive checks when no storage client is configured.
var ErrArchiveDisabled = errors.New("report archive is disabled")

// Service handles integrity checks.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new integrity service. client may be nil when archiving is off.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// CheckSchema compares the sync tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, catalog.Entry{}, lock.Lease{}, syncrun.RunRecord{})
}

// FixSchema auto-migrates the sync tables.
func (s *Service) FixSchema() error {
	return database.Migrate(s.db, catalog.Migrate, lock.Migrate, syncrun.Migrate)
}

// CheckArchive inspects the report archive bucket.
func (s *Service) CheckArchive(ctx context.Context) (*checks.ArchiveReport, error) {
	if s.client == nil {
		return nil, ErrArchiveDisabled
	}
	return checks.CheckArchive(ctx, s.client, s.bucket)
}

// FixArchive creates the report archive bucket.
func (s *Service) FixArchive(ctx context.Context) error {
	if s.client == nil {
		return ErrArchiveDisabled
	}
	return checks.FixArchive(ctx, s.client, s.bucket, s.logger)
}
