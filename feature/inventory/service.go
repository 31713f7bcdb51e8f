package inventory

import (
	"context"
	"errors"

	"inventory-sync/core/syncrun"

	"go.uber.org/zap"
)

// Service adapts the run coordinator to the HTTP contract.
type Service struct {
	coordinator *syncrun.Coordinator
	logger      *zap.Logger
}

// NewService creates a new inventory sync service.
func NewService(coordinator *syncrun.Coordinator, logger *zap.Logger) *Service {
	return &Service{coordinator: coordinator, logger: logger}
}

// Trigger starts a run. A rejection because another run is active is not an error:
// it is reported in the response.
func (s *Service) Trigger(ctx context.Context) (TriggerResponse, error) {
	run, err := s.coordinator.Trigger(ctx)
	var running *syncrun.AlreadyRunningError
	if errors.As(err, &running) {
		return TriggerResponse{Accepted: false, Reason: ReasonAlreadyRunning, RunID: running.RunID}, nil
	}
	if err != nil {
		return TriggerResponse{}, err
	}
	return TriggerResponse{Accepted: true, RunID: run.ID}, nil
}

// Status returns the run with id.
func (s *Service) Status(ctx context.Context, id string) (syncrun.Run, error) {
	return s.coordinator.Status(ctx, id)
}

// State returns the coordinator state.
func (s *Service) State() syncrun.State {
	return s.coordinator.State()
}

// Cancel stops the active run with id.
func (s *Service) Cancel(id string) error {
	return s.coordinator.Cancel(id)
}
