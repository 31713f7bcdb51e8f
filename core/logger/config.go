package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the stdout encoding (json, console).
	Format string `mapstructure:"format" default:"json"`
	// File, when set, also writes JSON logs to a rotating file.
	File string `mapstructure:"file" default:""`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb" default:"100"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups" default:"5"`
	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int `mapstructure:"max_age_days" default:"28"`
}
