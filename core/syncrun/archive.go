package syncrun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"inventory-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/singleflight"
)

// ReportPrefix is the object prefix under which run reports are stored.
const ReportPrefix = "reports"

// Archive keeps finished runs in object storage.
type Archive struct {
	client storage.Client
	bucket string
	sf     singleflight.Group
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// ObjectName returns the object key holding run id.
func ObjectName(id string) string {
	return path.Join(ReportPrefix, id+".json")
}

// EnsureBucket creates the archive bucket when it does not exist.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Put uploads run as JSON.
func (a *Archive) Put(ctx context.Context, run Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", run.ID, err)
	}

	_, err = a.client.PutObject(ctx, a.bucket, ObjectName(run.ID), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", run.ID, err)
	}
	return nil
}

// Get downloads run id. Concurrent reads of the same id share one download.
func (a *Archive) Get(ctx context.Context, id string) (Run, error) {
	v, err, _ := a.sf.Do(id, func() (any, error) {
		reader, err := a.client.GetObject(ctx, a.bucket, ObjectName(id), minio.GetObjectOptions{})
		if err != nil {
			return nil, archiveError(id, err)
		}
		defer reader.Close()

		var run Run
		if err := json.NewDecoder(reader).Decode(&run); err != nil {
			return nil, archiveError(id, err)
		}
		return run, nil
	})
	if err != nil {
		return Run{}, err
	}
	return v.(Run), nil
}

// Prune deletes archived reports last modified before cutoff.
func (a *Archive) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: ReportPrefix + "/", Recursive: true}) {
		if obj.Err != nil {
			return removed, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := a.client.RemoveObject(ctx, a.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("failed to remove report %s: %w", obj.Key, err)
		}
		removed++
	}
	return removed, nil
}

func archiveError(id string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fmt.Errorf("failed to read report %s: %w", id, err)
}
