package syncrun

import "time"

// Config holds configuration for sync runs.
type Config struct {
	// TimeoutSeconds is the wall-clock ceiling of a single run.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"1800"`
	// ReportTTLSeconds is how long a finished run keeps the coordinator out of Idle
	// when nobody reads its report.
	ReportTTLSeconds int `mapstructure:"report_ttl_seconds" default:"3600"`
	// TouchBatchSize bounds how many unchanged keys are refreshed per statement.
	TouchBatchSize int `mapstructure:"touch_batch_size" default:"500"`
	// PrefetchDepth is the number of feed records buffered ahead of the diff.
	PrefetchDepth int `mapstructure:"prefetch_depth" default:"512"`
	// Lock selects the single-flight lock backend (database, memory).
	Lock string `mapstructure:"lock" default:"database"`
	// LockName is the lease name shared by every process syncing the same catalog.
	LockName string `mapstructure:"lock_name" default:"inventory-sync"`
	// RetentionDays prunes finished runs older than this many days. Zero keeps all runs.
	RetentionDays int `mapstructure:"retention_days" default:"30"`
	// ArchiveReports uploads finished run reports to object storage.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
	// Schedule is an optional cron expression for periodic triggers.
	Schedule string `mapstructure:"schedule" default:""`
}

const (
	LockDatabase = "database"
	LockMemory   = "memory"
)

// leaseMargin keeps the lock alive slightly longer than the run it guards.
const leaseMargin = time.Minute

// Timeout returns the run timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReportTTL returns how long a terminal state is held.
func (c Config) ReportTTL() time.Duration {
	if c.ReportTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.ReportTTLSeconds) * time.Second
}

// LeaseTTL returns the lock lease duration.
func (c Config) LeaseTTL() time.Duration {
	return c.Timeout() + leaseMargin
}
