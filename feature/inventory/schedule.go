package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"inventory-sync/core/syncrun"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Triggerer starts sync runs.
type Triggerer interface {
	Trigger(ctx context.Context) (syncrun.Run, error)
}

// Schedule triggers sync runs from a cron expression.
type Schedule struct {
	spec    string
	trigger Triggerer
	logger  *zap.Logger
	cron    *cron.Cron
	once    sync.Once
}

// NewSchedule creates a schedule for spec. Standard five-field expressions and
// descriptors such as "@every 6h" are accepted.
func NewSchedule(spec string, trigger Triggerer, logger *zap.Logger) *Schedule {
	return &Schedule{spec: strings.TrimSpace(spec), trigger: trigger, logger: logger}
}

// Start registers the job and starts the cron loop.
func (s *Schedule) Start() error {
	c := cron.New()
	id, err := c.AddFunc(s.spec, s.fire)
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", s.spec, err)
	}
	s.cron = c
	c.Start()

	s.logger.Info("Sync schedule started", zap.String("cron", s.spec), zap.Time("next", c.Entry(id).Schedule.Next(time.Now())))
	return nil
}

// Stop halts the cron loop and waits for a tick in progress.
// Runs already triggered keep going; the coordinator owns them.
func (s *Schedule) Stop() {
	if s.cron == nil {
		return
	}
	s.once.Do(func() {
		<-s.cron.Stop().Done()
		s.logger.Info("Sync schedule stopped")
	})
}

func (s *Schedule) fire() {
	run, err := s.trigger.Trigger(context.Background())
	switch {
	case errors.Is(err, syncrun.ErrAlreadyRunning):
		s.logger.Info("Scheduled sync skipped, a run is in progress", zap.Error(err))
	case err != nil:
		s.logger.Error("Scheduled sync failed to start", zap.Error(err))
	default:
		s.logger.Info("Scheduled sync triggered", zap.String("run_id", run.ID))
	}
}
