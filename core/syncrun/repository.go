package syncrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"inventory-sync/core/reconcile"

	"gorm.io/gorm"
)

// Repository persists runs so they stay queryable after the coordinator moves on.
type Repository interface {
	// Save inserts or replaces a run.
	Save(ctx context.Context, run Run) error
	// Get returns the run with id, or ErrNotFound.
	Get(ctx context.Context, id string) (Run, error)
	// Prune deletes finished runs that ended before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryRepository keeps runs in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[string]Run)}
}

func (r *MemoryRepository) Save(ctx context.Context, run Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, nil
}

func (r *MemoryRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, run := range r.runs {
		if run.FinishedAt != nil && run.FinishedAt.Before(cutoff) {
			delete(r.runs, id)
			n++
		}
	}
	return n, nil
}

// RunRecord is a row of the sync_runs table.
type RunRecord struct {
	ID         string     `gorm:"column:id;primaryKey;size:36"`
	Status     string     `gorm:"column:status;size:32;not null;index"`
	Outcome    string     `gorm:"column:outcome;size:16"`
	StartedAt  time.Time  `gorm:"column:started_at;not null"`
	FinishedAt *time.Time `gorm:"column:finished_at;index"`
	Report     string     `gorm:"column:report;type:text"`
}

// TableName overrides the table name used by RunRecord.
func (RunRecord) TableName() string {
	return "sync_runs"
}

// Migrate creates or updates the sync_runs table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&RunRecord{})
}

// GormRepository stores runs in the sync_runs table.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a database-backed run repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Save(ctx context.Context, run Run) error {
	record := RunRecord{
		ID:         run.ID,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.Report != nil {
		data, err := json.Marshal(run.Report)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		record.Report = string(data)
		record.Outcome = string(run.Report.Outcome)
	}

	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (Run, error) {
	var record RunRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	run := Run{
		ID:         record.ID,
		Status:     Status(record.Status),
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
	if record.Report != "" {
		var report reconcile.Report
		if err := json.Unmarshal([]byte(record.Report), &report); err != nil {
			return Run{}, fmt.Errorf("failed to decode report of run %s: %w", id, err)
		}
		run.Report = &report
	}
	return run, nil
}

func (r *GormRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("finished_at IS NOT NULL AND finished_at < ?", cutoff).
		Delete(&RunRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
