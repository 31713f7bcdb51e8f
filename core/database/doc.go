// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections from the application's configuration.
//
// # Connect
//
// Connect opens the connection, applies pool settings and verifies it with a ping
// bounded by the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table. The catalog package uses it at startup
// to verify that the shared catalog table carries the columns the sync engine writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.Migrate(db, catalog.Migrate, lock.Migrate, syncrun.Migrate)
package database
