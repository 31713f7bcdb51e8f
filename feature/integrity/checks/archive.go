package checks

import (
	"context"
	"fmt"

	"inventory-sync/core/storage"
	"inventory-sync/core/syncrun"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ArchiveReport is the result of an archive check.
type ArchiveReport struct {
	Bucket  string `json:"bucket"`
	Exists  bool   `json:"exists"`
	Reports int    `json:"reports"`
}

// CheckArchive reports whether the archive bucket exists and how many run reports it holds.
func CheckArchive(ctx context.Context, client storage.Client, bucket string) (*ArchiveReport, error) {
	report := &ArchiveReport{Bucket: bucket}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.Exists = exists
	if !exists {
		return report, nil
	}

	opts := minio.ListObjectsOptions{Prefix: syncrun.ReportPrefix + "/", Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		report.Reports++
	}

	return report, nil
}

// FixArchive creates the archive bucket.
func FixArchive(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger) error {
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		logger.Error("Failed to create archive bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Created archive bucket", zap.String("bucket", bucket))
	return nil
}
