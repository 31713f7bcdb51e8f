// Package catalog implements the catalog store the sync engine writes to.
//
// The catalog table (catalog_entries) is owned by the storefront's persistence layer and
// read by unrelated listing paths at all times. The engine only needs four operations
// from it (reconcile.Store): list key hashes, upsert, mark removed and touch. Every write
// is individually atomic and idempotent, so readers may observe the table mid-run.
//
// GormStore is the production adapter. It also implements reconcile.Transactor: each
// bucket of a run is applied in one transaction with a savepoint per item. MemoryStore
// is a test double with failure injection.
package catalog
