package reconcile

import "context"

// Store is the narrow view of the persisted catalog the engine consumes.
// Each call is treated as independently atomic; the engine never requires
// multi-row transactions.
type Store interface {
	// ListKeyHashes returns key -> content hash for every entry that is not removed.
	ListKeyHashes(ctx context.Context) (map[string]string, error)

	// Upsert creates or replaces the entry for key, clearing its removed flag.
	Upsert(ctx context.Context, key string, attrs map[string]any, hash string) error

	// MarkRemoved soft-deletes the entry for key.
	MarkRemoved(ctx context.Context, key string) error

	// Touch refreshes the last-synced timestamp of unchanged entries.
	Touch(ctx context.Context, keys []string) error
}

// Bucket names a classification bucket of a change set.
type Bucket string

const (
	BucketCreate    Bucket = "create"
	BucketUpdate    Bucket = "update"
	BucketUnchanged Bucket = "unchanged"
	BucketRemove    Bucket = "remove"
)

// Transactor is implemented by stores that can wrap a whole bucket in one transaction.
// fn receives a Store bound to the transaction. Implementations must isolate each item
// (e.g. with savepoints) so that one rejected item does not poison the bucket, and must
// commit whatever fn applied when fn returns nil.
type Transactor interface {
	InBucket(ctx context.Context, bucket Bucket, fn func(Store) error) error
}
