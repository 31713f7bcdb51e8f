package reconcile

import (
	"context"
	"fmt"

	"inventory-sync/core/utils"
)

// defaultTouchBatchSize bounds IN clauses when refreshing unchanged entries.
const defaultTouchBatchSize = 500

// Apply writes a change set to the store and returns what was applied.
//
// Buckets are applied sequentially in a fixed order: creates, updates, the timestamp
// refresh of unchanged keys, then removals. A store rejection is recorded as an
// ApplyFailure and the run continues. ctx is checked before every bucket and every item;
// when it is done Apply stops, keeps whatever was already applied and returns the
// partial report together with ctx.Err().
//
// Invalid records from the change set are copied into the report first.
func Apply(ctx context.Context, store Store, cs *ChangeSet, opts Options) (*Report, error) {
	report := &Report{Failures: []Failure{}}
	for _, f := range cs.Invalid {
		report.Fail(f)
	}

	steps := []struct {
		bucket Bucket
		keys   []string
		run    func(Store, *bucketResult) error
	}{
		{BucketCreate, itemKeys(cs.ToCreate), func(s Store, res *bucketResult) error {
			return upsertAll(ctx, s, cs.ToCreate, res)
		}},
		{BucketUpdate, itemKeys(cs.ToUpdate), func(s Store, res *bucketResult) error {
			return upsertAll(ctx, s, cs.ToUpdate, res)
		}},
		{BucketUnchanged, cs.Unchanged, func(s Store, res *bucketResult) error {
			return touchAll(ctx, s, cs.Unchanged, opts.TouchBatchSize, res)
		}},
		{BucketRemove, cs.ToRemove, func(s Store, res *bucketResult) error {
			return removeAll(ctx, s, cs.ToRemove, res)
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			report.Finalize()
			return report, err
		}

		res, stopErr := runBucket(ctx, store, step.bucket, step.keys, step.run)
		res.mergeInto(report, step.bucket)

		if stopErr != nil {
			report.Finalize()
			return report, stopErr
		}
	}

	report.Finalize()
	return report, nil
}

// bucketResult collects what a single bucket applied.
type bucketResult struct {
	applied  []string
	failures []Failure
}

func (r *bucketResult) mergeInto(report *Report, bucket Bucket) {
	switch bucket {
	case BucketCreate:
		report.Created += len(r.applied)
	case BucketUpdate:
		report.Updated += len(r.applied)
	case BucketUnchanged:
		report.Unchanged += len(r.applied)
	case BucketRemove:
		report.Removed += len(r.applied)
	}
	for _, f := range r.failures {
		report.Fail(f)
	}
}

// runBucket runs fn inside a bucket transaction when the store supports one.
// The returned error is the cancellation that stopped the bucket, if any.
func runBucket(ctx context.Context, store Store, bucket Bucket, keys []string, fn func(Store, *bucketResult) error) (*bucketResult, error) {
	res := &bucketResult{}
	if len(keys) == 0 {
		return res, nil
	}

	tx, ok := store.(Transactor)
	if !ok {
		return res, fn(store, res)
	}

	var (
		stopErr error
		ran     bool
	)
	err := tx.InBucket(ctx, bucket, func(s Store) error {
		ran = true
		// Returning nil commits the items applied before a cancellation.
		stopErr = fn(s, res)
		return nil
	})
	if err != nil {
		// The bucket did not commit: nothing it applied is durable.
		lost := res.applied
		if !ran {
			lost = keys
		}
		for _, key := range lost {
			res.failures = append(res.failures, Failure{
				Key:       key,
				ErrorKind: KindApplyFailure,
				Message:   fmt.Sprintf("%s bucket transaction failed: %v", bucket, err),
			})
		}
		res.applied = nil
	}
	return res, stopErr
}

func upsertAll(ctx context.Context, s Store, items []Item, res *bucketResult) error {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Upsert(ctx, item.Key, item.Attributes, item.Hash); err != nil {
			res.failures = append(res.failures, applyFailure(item.Key, err))
			continue
		}
		res.applied = append(res.applied, item.Key)
	}
	return nil
}

func touchAll(ctx context.Context, s Store, keys []string, batchSize int, res *bucketResult) error {
	if batchSize <= 0 {
		batchSize = defaultTouchBatchSize
	}
	for _, batch := range utils.Batch(keys, batchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Touch(ctx, batch); err != nil {
			for _, key := range batch {
				res.failures = append(res.failures, applyFailure(key, err))
			}
			continue
		}
		res.applied = append(res.applied, batch...)
	}
	return nil
}

func removeAll(ctx context.Context, s Store, keys []string, res *bucketResult) error {
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.MarkRemoved(ctx, key); err != nil {
			res.failures = append(res.failures, applyFailure(key, err))
			continue
		}
		res.applied = append(res.applied, key)
	}
	return nil
}

func itemKeys(items []Item) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key
	}
	return keys
}

func applyFailure(key string, err error) Failure {
	return Failure{Key: key, ErrorKind: KindApplyFailure, Message: err.Error()}
}
