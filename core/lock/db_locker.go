package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Lease is a row of the sync_locks table.
type Lease struct {
	Name       string    `gorm:"column:name;primaryKey;size:64"`
	Owner      string    `gorm:"column:owner;size:64;not null"`
	AcquiredAt time.Time `gorm:"column:acquired_at"`
	ExpiresAt  time.Time `gorm:"column:expires_at;index"`
}

// TableName overrides the table name used by Lease.
func (Lease) TableName() string {
	return "sync_locks"
}

// Migrate creates or updates the sync_locks table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Lease{})
}

// DBLocker keeps the lease in the database so it is shared across processes.
type DBLocker struct {
	db   *gorm.DB
	name string
	now  func() time.Time
}

// NewDBLocker creates a database-backed lock for the named lease.
func NewDBLocker(db *gorm.DB, name string) *DBLocker {
	if name == "" {
		name = DefaultName
	}
	return &DBLocker{db: db, name: name, now: time.Now}
}

// TryAcquire inserts the lease row, or takes it over when it has expired or already
// belongs to owner. The takeover is a compare-and-swap on the previous owner, so two
// processes racing for an expired lease cannot both win and the winner learns whose
// lease it replaced.
func (l *DBLocker) TryAcquire(ctx context.Context, owner string, ttl time.Duration) (Acquisition, error) {
	now := l.now().UTC()
	lease := Lease{Name: l.name, Owner: owner, AcquiredAt: now, ExpiresAt: now.Add(ttl)}
	db := l.db.WithContext(ctx)

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lease)
	if res.Error != nil {
		return Acquisition{}, fmt.Errorf("failed to insert lease: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return Acquisition{Acquired: true, Holder: owner}, nil
	}

	current, found, err := l.current(ctx)
	if err != nil || !found {
		// Released between the two statements; the caller may simply try again.
		return Acquisition{}, err
	}
	if current.Owner != owner && !current.ExpiresAt.Before(now) {
		return Acquisition{Holder: current.Owner}, nil
	}

	res = db.Model(&Lease{}).
		Where("name = ? AND owner = ? AND (expires_at < ? OR owner = ?)", l.name, current.Owner, now, owner).
		Updates(map[string]any{
			"owner":       owner,
			"acquired_at": now,
			"expires_at":  now.Add(ttl),
		})
	if res.Error != nil {
		return Acquisition{}, fmt.Errorf("failed to take over lease: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		acq := Acquisition{Acquired: true, Holder: owner}
		if current.Owner != owner {
			acq.Expired = current.Owner
		}
		return acq, nil
	}

	// Another process took the lease first.
	winner, _, err := l.current(ctx)
	if err != nil {
		return Acquisition{}, err
	}
	return Acquisition{Holder: winner.Owner}, nil
}

// current reads the lease row.
func (l *DBLocker) current(ctx context.Context) (Lease, bool, error) {
	var current Lease
	err := l.db.WithContext(ctx).Where("name = ?", l.name).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Lease{}, false, nil
	}
	if err != nil {
		return Lease{}, false, fmt.Errorf("failed to read lease holder: %w", err)
	}
	return current, true, nil
}

func (l *DBLocker) Release(ctx context.Context, owner string) error {
	err := l.db.WithContext(ctx).
		Where("name = ? AND owner = ?", l.name, owner).
		Delete(&Lease{}).Error
	if err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}
