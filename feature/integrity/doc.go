// Package integrity provides health checks for the sync infrastructure.
//
// # Checks Provided
//
//   - Schema: Validates that the catalog, lock and run tables match the models the sync engine
//     writes (missing columns, type mismatches).
//   - Archive: Checks that the report archive bucket exists and counts archived reports.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check (supports ?fix=true to auto-migrate).
//   - GET /integrity/archive : Runs the archive check (supports ?fix=true to create the bucket).
package integrity
