package feed

import (
	"context"
	"iter"

	"inventory-sync/core/reconcile"

	"golang.org/x/sync/errgroup"
)

type fetched struct {
	rec reconcile.Record
	err error
}

// Prefetch reads src in a background goroutine and hands records over through a
// buffer of depth entries, so page requests overlap the consumer's work.
// Stopping the returned sequence early cancels the producer and waits for it.
// A depth of zero or less returns src.FetchAll unchanged.
func Prefetch(ctx context.Context, src Source, depth int) iter.Seq2[reconcile.Record, error] {
	if depth <= 0 {
		return src.FetchAll(ctx)
	}
	return func(yield func(reconcile.Record, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		g, gctx := errgroup.WithContext(ctx)
		ch := make(chan fetched, depth)

		g.Go(func() error {
			defer close(ch)
			for rec, err := range src.FetchAll(gctx) {
				select {
				case ch <- fetched{rec: rec, err: err}:
				case <-gctx.Done():
					return gctx.Err()
				}
				if err != nil {
					return nil
				}
			}
			return nil
		})
		defer func() {
			cancel()
			_ = g.Wait()
		}()

		for f := range ch {
			if !yield(f.rec, f.err) || f.err != nil {
				return
			}
		}
	}
}
