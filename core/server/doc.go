// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key guarding the sync endpoints,
// and the graceful shutdown timeout.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by cmd/start.go to listen and shut down.
package server
