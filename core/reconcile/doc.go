// Package reconcile computes and applies the difference between an authoritative
// inventory feed and the local catalog.
//
// The feed is treated as the source of truth: it always wins over local state, and the
// engine never hard-deletes catalog entries (removals are soft).
//
// # Diff
//
// Diff streams the feed once and compares every record against the catalog's
// key -> content hash index, which is loaded once per run:
//
//   - key only in the feed            -> ToCreate
//   - key in both, hashes differ      -> ToUpdate
//   - key in both, hashes equal       -> Unchanged (timestamp refresh only)
//   - key only in the catalog         -> ToRemove
//
// Empty and duplicated keys are InvalidKey failures and never overwrite another entry.
//
// # Content hash
//
// ContentHash serializes the attribute mapping canonically (keys sorted at every depth,
// NFC-normalized strings, integers and floats folded to one numeric form) and hashes it
// with sha256, so reordering attributes in the source never produces a spurious update.
//
// # Apply
//
// Apply writes a ChangeSet through the Store interface in a fixed bucket order
// (creates, updates, unchanged refresh, removals). Items are applied one at a time; a
// rejected item becomes an ApplyFailure in the Report and the run continues. Stores that
// implement Transactor get one transaction per bucket.
//
// # Usage
//
//	existing, err := store.ListKeyHashes(ctx)
//	if err != nil {
//	    return err
//	}
//	cs, err := reconcile.Diff(ctx, source.FetchAll(ctx), existing)
//	if err != nil {
//	    return err // feed unavailable: abort without applying anything
//	}
//	report, err := reconcile.Apply(ctx, store, cs, reconcile.Options{})
package reconcile
