package syncrun

import (
	"context"
	"testing"
	"time"

	"inventory-sync/core/database"
	"inventory-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedRun(id string, finished time.Time) Run {
	report := &reconcile.Report{Created: 2, Failures: []reconcile.Failure{}}
	report.Fail(reconcile.Failure{Key: "R9", ErrorKind: reconcile.KindApplyFailure, Message: "rejected"})
	report.Finalize()
	return Run{
		ID:         id,
		Status:     StatusPartiallyFailed,
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: &finished,
		Report:     report,
	}
}

func TestRepositories(t *testing.T) {
	ctx := context.Background()

	repos := map[string]func(t *testing.T) Repository{
		"Memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"Gorm": func(t *testing.T) Repository {
			db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
			require.NoError(t, err)
			require.NoError(t, Migrate(db))
			return NewGormRepository(db)
		},
	}

	for name, newRepo := range repos {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

			running := Run{ID: "run-1", Status: StatusRunning, StartedAt: now}
			require.NoError(t, repo.Save(ctx, running))

			got, err := repo.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, StatusRunning, got.Status)
			assert.Nil(t, got.Report)
			assert.Nil(t, got.FinishedAt)

			done := finishedRun("run-1", now.Add(time.Minute))
			require.NoError(t, repo.Save(ctx, done))

			got, err = repo.Get(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, StatusPartiallyFailed, got.Status)
			require.NotNil(t, got.Report)
			assert.Equal(t, *done.Report, *got.Report)
			require.NotNil(t, got.FinishedAt)
			assert.True(t, got.FinishedAt.Equal(*done.FinishedAt))

			_, err = repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			t.Run("Prune", func(t *testing.T) {
				require.NoError(t, repo.Save(ctx, finishedRun("old", now.AddDate(0, 0, -40))))
				require.NoError(t, repo.Save(ctx, Run{ID: "active", Status: StatusRunning, StartedAt: now.AddDate(0, 0, -40)}))

				n, err := repo.Prune(ctx, now.AddDate(0, 0, -30))
				require.NoError(t, err)
				assert.Equal(t, int64(1), n)

				_, err = repo.Get(ctx, "old")
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = repo.Get(ctx, "active")
				assert.NoError(t, err, "running runs are never pruned")
				_, err = repo.Get(ctx, "run-1")
				assert.NoError(t, err)
			})
		})
	}
}
