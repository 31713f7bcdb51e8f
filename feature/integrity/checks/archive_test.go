package checks

import (
	"context"
	"errors"
	"testing"

	"inventory-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objects(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, info := range infos {
		ch <- info
	}
	close(ch)
	return ch
}

func TestCheckArchive(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(false, nil)

		report, err := CheckArchive(context.Background(), mockClient, "archive")
		require.NoError(t, err)
		assert.False(t, report.Exists)
		assert.Equal(t, 0, report.Reports)
		mockClient.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Counts Reports", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "archive", minio.ListObjectsOptions{Prefix: "reports/", Recursive: true}).
			Return(objects(minio.ObjectInfo{Key: "reports/a.json"}, minio.ObjectInfo{Key: "reports/b.json"}))

		report, err := CheckArchive(context.Background(), mockClient, "archive")
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.Equal(t, 2, report.Reports)
	})

	t.Run("List Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "archive", mock.Anything).
			Return(objects(minio.ObjectInfo{Err: errors.New("access denied")}))

		_, err := CheckArchive(context.Background(), mockClient, "archive")
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("Bucket Check Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "archive").Return(false, errors.New("connection refused"))

		_, err := CheckArchive(context.Background(), mockClient, "archive")
		assert.ErrorContains(t, err, "failed to check bucket existence")
	})
}

func TestFixArchive(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("MakeBucket", mock.Anything, "archive", mock.Anything).Return(nil).Once()
	require.NoError(t, FixArchive(context.Background(), mockClient, "archive", zap.NewNop()))

	failing := new(mocks.Client)
	failing.On("MakeBucket", mock.Anything, "archive", mock.Anything).Return(errors.New("quota exceeded"))
	assert.Error(t, FixArchive(context.Background(), failing, "archive", zap.NewNop()))

	mockClient.AssertExpectations(t)
}
