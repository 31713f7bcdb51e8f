package syncrun

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inventory-sync/core/feed"
	"inventory-sync/core/lock"
	"inventory-sync/core/logger"
	"inventory-sync/core/reconcile"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// finalizeTimeout bounds the bookkeeping done after a run ends.
const finalizeTimeout = 30 * time.Second

// leaseExpiredReason marks a run whose process stopped renewing its lease.
const leaseExpiredReason = "lease expired"

// Coordinator runs inventory syncs one at a time.
type Coordinator struct {
	source  feed.Source
	store   reconcile.Store
	locker  lock.Locker
	repo    Repository
	archive *Archive
	cfg     Config
	logger  *zap.Logger

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	starting string
	current  *Run
	cancel   context.CancelFunc
	done     chan struct{}
	reported bool
	closed   bool
	wg       sync.WaitGroup
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(source feed.Source, store reconcile.Store, locker lock.Locker, repo Repository, cfg Config, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		source: source,
		store:  store,
		locker: locker,
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// WithArchive makes the coordinator upload finished runs and fall back to the
// archive for ids the repository no longer holds.
func (c *Coordinator) WithArchive(a *Archive) *Coordinator {
	c.archive = a
	return c
}

// Trigger starts a new run in the background and returns it in the Running state.
// It fails with *AlreadyRunningError when a run is active here or in any process
// sharing the lock.
func (c *Coordinator) Trigger(ctx context.Context) (Run, error) {
	id, err := c.reserve()
	if err != nil {
		return Run{}, err
	}

	// Lock and repository calls are round trips; status and cancel requests must
	// not queue behind them.
	run, err := c.begin(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.starting = ""
	if err != nil {
		c.wg.Done()
		return Run{}, err
	}

	// The run outlives the request that triggered it.
	runCtx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout())
	if c.closed {
		cancel()
	}
	done := make(chan struct{})

	c.current = run
	c.cancel = cancel
	c.done = done
	c.reported = false

	c.logger.Info("Sync run started", zap.String("run_id", id))

	go c.execute(runCtx, cancel, run, done)

	return *run, nil
}

// reserve claims the coordinator for a new run id. The reservation counts
// towards c.wg so Close waits for a trigger in flight.
func (c *Coordinator) reserve() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}
	if c.starting != "" {
		return "", &AlreadyRunningError{RunID: c.starting}
	}
	if c.current != nil && c.current.Status == StatusRunning {
		return "", &AlreadyRunningError{RunID: c.current.ID}
	}

	c.starting = c.newID()
	c.wg.Add(1)
	return c.starting, nil
}

// begin takes the lease for id and records the run as Running.
func (c *Coordinator) begin(ctx context.Context, id string) (*Run, error) {
	acq, err := c.locker.TryAcquire(ctx, id, c.cfg.LeaseTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !acq.Acquired {
		return nil, &AlreadyRunningError{RunID: acq.Holder}
	}
	if acq.Expired != "" {
		c.abandon(ctx, acq.Expired)
	}

	run := &Run{ID: id, Status: StatusRunning, StartedAt: c.now()}
	if err := c.repo.Save(ctx, *run); err != nil {
		c.releaseLock(id)
		return nil, err
	}
	return run, nil
}

// abandon closes out the run whose lease expired under it. Its process died
// without finalizing, so the row would otherwise stay Running.
func (c *Coordinator) abandon(ctx context.Context, id string) {
	l := logger.WithRunID(c.logger, id)

	stale, err := c.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		l.Warn("Failed to load run with expired lease", zap.Error(err))
		return
	}
	if stale.Status != StatusRunning {
		return
	}

	finished := c.now()
	if stale.Report == nil {
		stale.Report = &reconcile.Report{}
	}
	stale.Report.Abort(leaseExpiredReason)
	stale.Status = StatusAborted
	stale.FinishedAt = &finished

	if err := c.repo.Save(ctx, stale); err != nil {
		l.Warn("Failed to abort run with expired lease", zap.Error(err))
		return
	}
	if c.archive != nil {
		if err := c.archive.Put(ctx, stale); err != nil {
			l.Warn("Failed to archive run with expired lease", zap.Error(err))
		}
	}
	l.Warn("Aborted run whose lease expired")
}

// Status returns the run with id. Reading a finished run from this coordinator
// returns the coordinator to Idle.
func (c *Coordinator) Status(ctx context.Context, id string) (Run, error) {
	c.mu.Lock()
	if c.current != nil && c.current.ID == id {
		run := *c.current
		if run.Status.Terminal() {
			c.reported = true
		}
		c.mu.Unlock()
		return run, nil
	}
	c.mu.Unlock()

	run, err := c.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) && c.archive != nil {
		return c.archive.Get(ctx, id)
	}
	return run, err
}

// State returns the coordinator's state machine position.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return State{Status: StatusIdle}
	}
	if c.current.Status.Terminal() && c.retired() {
		return State{Status: StatusIdle}
	}
	return State{Status: c.current.Status, RunID: c.current.ID}
}

// retired reports whether the finished current run no longer holds the state.
// Callers hold c.mu.
func (c *Coordinator) retired() bool {
	if c.reported {
		return true
	}
	return c.current.FinishedAt != nil && c.now().Sub(*c.current.FinishedAt) >= c.cfg.ReportTTL()
}

// Cancel asks the active run to stop at the next item boundary.
func (c *Coordinator) Cancel(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.ID != id {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if c.current.Status != StatusRunning {
		return ErrNotRunning
	}
	c.logger.Info("Sync run cancellation requested", zap.String("run_id", id))
	c.cancel()
	return nil
}

// Wait blocks until run id has finished or ctx is done.
// Waiting for a run that is not the current one returns immediately.
func (c *Coordinator) Wait(ctx context.Context, id string) error {
	c.mu.Lock()
	var done chan struct{}
	if c.current != nil && c.current.ID == id {
		done = c.done
	}
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the active run, waits for it to finish and rejects later triggers.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.current != nil && c.current.Status == StatusRunning {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Coordinator) execute(ctx context.Context, cancel context.CancelFunc, run *Run, done chan struct{}) {
	defer c.wg.Done()
	defer close(done)
	defer cancel()

	report := c.runSafely(ctx, run.ID)

	finished := c.now()
	c.mu.Lock()
	snapshot := *run
	c.mu.Unlock()
	snapshot.Status = statusFor(report)
	snapshot.FinishedAt = &finished
	snapshot.Report = report

	c.finalize(snapshot)

	c.mu.Lock()
	*run = snapshot
	c.mu.Unlock()

	logger.WithRunID(c.logger, run.ID).Info("Sync run finished",
		zap.String("status", string(snapshot.Status)),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("removed", report.Removed),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", finished.Sub(snapshot.StartedAt)))
}

// finalize persists the finished run and releases the lock before the coordinator
// reports the terminal state, so a follow-up trigger never sees a stale lease.
func (c *Coordinator) finalize(run Run) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	if err := c.repo.Save(ctx, run); err != nil {
		c.logger.Error("Failed to save sync run", zap.String("run_id", run.ID), zap.Error(err))
	}
	if c.archive != nil {
		if err := c.archive.Put(ctx, run); err != nil {
			c.logger.Error("Failed to archive sync report", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	if c.cfg.RetentionDays > 0 {
		c.prune(ctx, c.now().AddDate(0, 0, -c.cfg.RetentionDays))
	}
	c.releaseLock(run.ID)
}

// prune drops runs and archived reports past the retention window.
func (c *Coordinator) prune(ctx context.Context, cutoff time.Time) {
	if n, err := c.repo.Prune(ctx, cutoff); err != nil {
		c.logger.Warn("Failed to prune sync runs", zap.Error(err))
	} else if n > 0 {
		c.logger.Debug("Pruned sync runs", zap.Int64("count", n))
	}
	if c.archive == nil {
		return
	}
	if n, err := c.archive.Prune(ctx, cutoff); err != nil {
		c.logger.Warn("Failed to prune archived reports", zap.Error(err))
	} else if n > 0 {
		c.logger.Debug("Pruned archived reports", zap.Int("count", n))
	}
}

func (c *Coordinator) releaseLock(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	if err := c.locker.Release(ctx, id); err != nil {
		c.logger.Error("Failed to release sync lock", zap.String("run_id", id), zap.Error(err))
	}
}

// runSafely converts a panic inside the run into an aborted report.
func (c *Coordinator) runSafely(ctx context.Context, id string) (report *reconcile.Report) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Sync run panicked", zap.String("run_id", id), zap.Any("panic", r))
			report = &reconcile.Report{}
			report.Abort(fmt.Sprintf("internal error: %v", r))
		}
	}()
	return c.reconcile(ctx, id)
}

func (c *Coordinator) reconcile(ctx context.Context, id string) *reconcile.Report {
	l := logger.WithRunID(c.logger, id)

	existing, err := c.store.ListKeyHashes(ctx)
	if err != nil {
		return aborted(ctx, fmt.Errorf("failed to list catalog: %w", err))
	}

	// The whole feed is read before anything is written: a partial feed would
	// cause spurious removals.
	cs, err := reconcile.Diff(ctx, feed.Prefetch(ctx, c.source, c.cfg.PrefetchDepth), existing)
	if err != nil {
		l.Warn("Sync run aborted while reading feed", zap.Error(err))
		return aborted(ctx, err)
	}

	l.Info("Change set computed",
		zap.Int("create", len(cs.ToCreate)),
		zap.Int("update", len(cs.ToUpdate)),
		zap.Int("unchanged", len(cs.Unchanged)),
		zap.Int("remove", len(cs.ToRemove)),
		zap.Int("invalid", len(cs.Invalid)))

	report, err := reconcile.Apply(ctx, c.store, cs, reconcile.Options{TouchBatchSize: c.cfg.TouchBatchSize})
	if err != nil {
		report.Abort(abortReason(ctx, err))
	}
	return report
}

func aborted(ctx context.Context, err error) *reconcile.Report {
	report := &reconcile.Report{}
	report.Abort(abortReason(ctx, err))
	return report
}

func abortReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "run timed out"
	case errors.Is(err, context.Canceled):
		return "run cancelled"
	default:
		return err.Error()
	}
}
