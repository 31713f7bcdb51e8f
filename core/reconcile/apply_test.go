package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"inventory-sync/core/catalog"
	"inventory-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncOnce runs a full diff + apply against the store.
func syncOnce(t *testing.T, store *catalog.MemoryStore, records ...reconcile.Record) (*reconcile.ChangeSet, *reconcile.Report) {
	t.Helper()
	ctx := context.Background()

	existing, err := store.ListKeyHashes(ctx)
	require.NoError(t, err)

	cs, err := reconcile.Diff(ctx, feedOf(records...), existing)
	require.NoError(t, err)

	report, err := reconcile.Apply(ctx, store, cs, reconcile.Options{})
	require.NoError(t, err)
	return cs, report
}

func TestApply_Scenarios(t *testing.T) {
	t.Run("Create Into Empty Catalog", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		_, report := syncOnce(t, store, rec("R1", map[string]any{"carat": 1.0}))

		assert.Equal(t, 1, report.Created)
		assert.Equal(t, 0, report.Updated)
		assert.Equal(t, 0, report.Unchanged)
		assert.Equal(t, 0, report.Removed)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, reconcile.OutcomeSuccess, report.Outcome)
	})

	t.Run("Update Changed Attributes", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		require.NoError(t, store.Seed("R1", map[string]any{"carat": 1.0}))

		_, report := syncOnce(t, store, rec("R1", map[string]any{"carat": 1.2}))

		assert.Equal(t, 0, report.Created)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 0, report.Unchanged)
		assert.Equal(t, 0, report.Removed)

		entry, ok := store.Entry("R1")
		require.True(t, ok)
		assert.Equal(t, 1.2, entry.Attributes["carat"])
	})

	t.Run("Remove Missing Keys", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		require.NoError(t, store.Seed("R1", map[string]any{}))
		require.NoError(t, store.Seed("R2", map[string]any{}))

		cs, report := syncOnce(t, store, rec("R1", map[string]any{}))

		assert.Equal(t, []string{"R2"}, cs.ToRemove)
		assert.Equal(t, []string{"R1"}, cs.Unchanged)
		assert.Equal(t, 1, report.Removed)
		assert.Equal(t, 1, report.Unchanged)

		entry, ok := store.Entry("R2")
		require.True(t, ok)
		assert.True(t, entry.Removed)
	})

	t.Run("Duplicate Key", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		_, report := syncOnce(t, store,
			rec("R1", map[string]any{"carat": 1.0}),
			rec("R1", map[string]any{"carat": 2.0}),
		)

		assert.GreaterOrEqual(t, report.Failed, 1)
		assert.Equal(t, reconcile.KindInvalidKey, report.Failures[0].ErrorKind)
		assert.Equal(t, 1, report.Created)
		assert.Equal(t, reconcile.OutcomePartial, report.Outcome)

		upserts := 0
		for _, op := range store.Ops() {
			if op == "upsert:R1" {
				upserts++
			}
		}
		assert.Equal(t, 1, upserts, "at most one R1 state is applied")
	})
}

func TestApply_Idempotent(t *testing.T) {
	store := catalog.NewMemoryStore()
	records := []reconcile.Record{
		rec("R1", map[string]any{"carat": 1.0, "color": "D"}),
		rec("R2", map[string]any{"carat": 0.5, "color": "F"}),
	}

	syncOnce(t, store, records...)

	// Same feed with attribute keys listed in another order
	second := []reconcile.Record{
		rec("R2", map[string]any{"color": "F", "carat": 0.5}),
		rec("R1", map[string]any{"color": "D", "carat": 1.0}),
	}
	cs, report := syncOnce(t, store, second...)

	assert.Empty(t, cs.ToCreate)
	assert.Empty(t, cs.ToUpdate)
	assert.Empty(t, cs.ToRemove)
	assert.Equal(t, []string{"R1", "R2"}, cs.Unchanged)
	assert.True(t, cs.IsNoop())
	assert.Equal(t, 2, report.Unchanged)
}

func TestApply_BucketOrder(t *testing.T) {
	store := catalog.NewMemoryStore()
	require.NoError(t, store.Seed("OLD", map[string]any{"carat": 1.0}))
	require.NoError(t, store.Seed("UPD", map[string]any{"carat": 1.0}))
	require.NoError(t, store.Seed("SAME", map[string]any{"carat": 1.0}))

	syncOnce(t, store,
		rec("UPD", map[string]any{"carat": 2.0}),
		rec("SAME", map[string]any{"carat": 1.0}),
		rec("NEW", map[string]any{"carat": 1.0}),
	)

	assert.Equal(t, []string{"upsert:NEW", "upsert:UPD", "touch:SAME", "remove:OLD"}, store.Ops())
}

func TestApply_ContinueOnError(t *testing.T) {
	store := catalog.NewMemoryStore()
	require.NoError(t, store.Seed("R9", map[string]any{}))
	store.FailOn("R2", errors.New("duplicate entry"))
	store.FailOn("R9", errors.New("row locked"))

	_, report := syncOnce(t, store,
		rec("R1", map[string]any{}),
		rec("R2", map[string]any{}),
		rec("R3", map[string]any{}),
	)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Removed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, []reconcile.Failure{
		{Key: "R2", ErrorKind: reconcile.KindApplyFailure, Message: "duplicate entry"},
		{Key: "R9", ErrorKind: reconcile.KindApplyFailure, Message: "row locked"},
	}, report.Failures)
	assert.Equal(t, reconcile.OutcomePartial, report.Outcome)
}

func TestApply_TouchFailure(t *testing.T) {
	store := catalog.NewMemoryStore()
	require.NoError(t, store.Seed("A", map[string]any{}))
	require.NoError(t, store.Seed("B", map[string]any{}))
	require.NoError(t, store.Seed("C", map[string]any{}))
	store.FailOn("B", errors.New("deadlock"))

	existing, err := store.ListKeyHashes(context.Background())
	require.NoError(t, err)
	cs, err := reconcile.Diff(context.Background(), feedOf(
		rec("A", map[string]any{}), rec("B", map[string]any{}), rec("C", map[string]any{}),
	), existing)
	require.NoError(t, err)

	report, err := reconcile.Apply(context.Background(), store, cs, reconcile.Options{TouchBatchSize: 2})
	require.NoError(t, err)

	// Batch [A B] fails as a whole, batch [C] succeeds
	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, 2, report.Failed)
}

func TestApply_CancelBetweenItems(t *testing.T) {
	store := catalog.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applied := 0
	store.OnApply = func(op, key string) {
		applied++
		if applied == 2 {
			cancel()
		}
	}

	cs, err := reconcile.Diff(ctx, feedOf(
		rec("R1", map[string]any{}), rec("R2", map[string]any{}), rec("R3", map[string]any{}),
	), map[string]string{})
	require.NoError(t, err)

	report, err := reconcile.Apply(ctx, store, cs, reconcile.Options{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)

	// The item in flight when cancel fired is completed; nothing after it runs.
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, []string{"upsert:R1", "upsert:R2"}, store.Ops())
}

func TestReport_Finalize(t *testing.T) {
	r := &reconcile.Report{}
	r.Finalize()
	assert.Equal(t, reconcile.OutcomeSuccess, r.Outcome)
	assert.NotNil(t, r.Failures)

	r.Fail(reconcile.Failure{Key: "X", ErrorKind: reconcile.KindApplyFailure})
	r.Finalize()
	assert.Equal(t, reconcile.OutcomePartial, r.Outcome)

	r.Abort("feed unavailable")
	assert.Equal(t, reconcile.OutcomeAborted, r.Outcome)
	assert.Equal(t, "feed unavailable", r.AbortReason)
	assert.Equal(t, 1, r.Failed)
}
