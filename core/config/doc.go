// Package config provides configuration management for the inventory sync service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file (loaded with godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, shutdown timeout)
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and the report archive bucket
//   - Log: Logging level, format and optional rotating file
//   - Feed: Inventory feed endpoint, paging and retry policy
//   - Sync: Run timeout, report TTL, lock backend and schedule
//
// Defaults come from the `default` struct tags. Environment variables map to nested
// keys by replacing dots with underscores (FEED_BASE_URL -> feed.base_url).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Feed.BaseURL)
package config
