package feed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"

	"inventory-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource yields n records, then err if set.
type staticSource struct {
	n        int
	err      error
	produced int
}

func (s *staticSource) FetchAll(ctx context.Context) iter.Seq2[reconcile.Record, error] {
	return func(yield func(reconcile.Record, error) bool) {
		for i := 0; i < s.n; i++ {
			s.produced++
			if !yield(reconcile.Record{Key: fmt.Sprintf("K%03d", i)}, nil) {
				return
			}
		}
		if s.err != nil {
			yield(reconcile.Record{}, s.err)
		}
	}
}

func TestPrefetch(t *testing.T) {
	t.Run("Preserves Order", func(t *testing.T) {
		var keys []string
		for rec, err := range Prefetch(context.Background(), &staticSource{n: 100}, 8) {
			require.NoError(t, err)
			keys = append(keys, rec.Key)
		}
		require.Len(t, keys, 100)
		assert.Equal(t, "K000", keys[0])
		assert.Equal(t, "K099", keys[99])
	})

	t.Run("Passes Error Through", func(t *testing.T) {
		feedErr := errors.New("boom")
		var (
			count int
			got   error
		)
		for _, err := range Prefetch(context.Background(), &staticSource{n: 3, err: feedErr}, 2) {
			if err != nil {
				got = err
				break
			}
			count++
		}
		assert.Equal(t, 3, count)
		assert.ErrorIs(t, got, feedErr)
	})

	t.Run("Early Stop", func(t *testing.T) {
		src := &staticSource{n: 1000}
		count := 0
		for range Prefetch(context.Background(), src, 4) {
			count++
			if count == 5 {
				break
			}
		}
		assert.Equal(t, 5, count)
		assert.Less(t, src.produced, 1000, "producer stops once the consumer is gone")
	})

	t.Run("Zero Depth", func(t *testing.T) {
		count := 0
		for _, err := range Prefetch(context.Background(), &staticSource{n: 3}, 0) {
			require.NoError(t, err)
			count++
		}
		assert.Equal(t, 3, count)
	})
}
