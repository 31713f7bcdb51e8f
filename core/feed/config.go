package feed

import "time"

// Config holds configuration for the inventory feed.
type Config struct {
	// BaseURL is the scheme and host of the feed API.
	BaseURL string `mapstructure:"base_url" default:""`
	// Path is the listing endpoint appended to BaseURL.
	Path string `mapstructure:"path" default:"/api/v1/diamonds"`
	// PageSize is the limit requested per page.
	PageSize int `mapstructure:"page_size" default:"200"`
	// MaxPages bounds how many pages one fetch may read before it gives up.
	MaxPages int `mapstructure:"max_pages" default:"10000"`
	// KeyField is the record field holding the natural key.
	KeyField string `mapstructure:"key_field" default:"certificate_number"`
	// Token is sent as a bearer token when set.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds a single page request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxRetries is the number of attempts per page.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// BackoffMs is the delay before the first retry; it doubles on each attempt.
	BackoffMs int `mapstructure:"backoff_ms" default:"500"`
	// File, when set, replaces the HTTP feed with a local YAML or JSON file.
	File string `mapstructure:"file" default:""`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the initial retry delay.
func (c Config) Backoff() time.Duration {
	if c.BackoffMs < 0 {
		return 0
	}
	return time.Duration(c.BackoffMs) * time.Millisecond
}
