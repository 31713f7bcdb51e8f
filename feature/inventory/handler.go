package inventory

import (
	"errors"

	"inventory-sync/core/logger"
	"inventory-sync/core/syncrun"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for inventory sync.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/trigger", h.HandleTrigger)
	group.Get("/status", h.HandleStatus)
	group.Get("/state", h.HandleState)
	group.Post("/cancel", h.HandleCancel)
}

// HandleTrigger starts an inventory sync run.
// @Summary Trigger Sync
// @Description Starts a sync run in the background. Only one run is active at a time; a trigger during an active run is rejected with the active run id.
// @Tags sync
// @Produce json
// @Success 202 {object} inventory.TriggerResponse "Accepted"
// @Failure 409 {object} inventory.TriggerResponse "Already Running"
// @Failure 500 {object} inventory.ErrorResponse "Internal Server Error"
// @Router /sync/trigger [post]
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	resp, err := h.service.Trigger(c.Context())
	if err != nil {
		l.Error("Sync trigger failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	if !resp.Accepted {
		l.Info("Sync trigger rejected", zap.String("run_id", resp.RunID))
		return c.Status(fiber.StatusConflict).JSON(resp)
	}

	l.Info("Sync triggered", zap.String("run_id", resp.RunID))
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// HandleStatus returns the status of a run.
// @Summary Sync Run Status
// @Description Returns the run status and, once the run has finished, its report. Reading a finished run's report returns the coordinator to Idle.
// @Tags sync
// @Produce json
// @Param runId query string true "Run ID"
// @Success 200 {object} syncrun.Run "Run"
// @Failure 400 {object} inventory.ErrorResponse "Missing runId"
// @Failure 404 {object} inventory.ErrorResponse "Unknown run"
// @Failure 500 {object} inventory.ErrorResponse "Internal Server Error"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	id := c.Query("runId")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "runId is required"})
	}

	run, err := h.service.Status(c.Context(), id)
	if errors.Is(err, syncrun.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Sync status lookup failed", zap.String("run_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(run)
}

// HandleState returns the coordinator state.
// @Summary Sync State
// @Description Returns whether the coordinator is idle, running, or holding a finished run's result.
// @Tags sync
// @Produce json
// @Success 200 {object} syncrun.State "State"
// @Router /sync/state [get]
func (h *Handler) HandleState(c *fiber.Ctx) error {
	return c.JSON(h.service.State())
}

// HandleCancel cancels the active run.
// @Summary Cancel Sync
// @Description Asks the active run to stop at the next item boundary. Items already applied are kept.
// @Tags sync
// @Produce json
// @Param runId query string true "Run ID"
// @Success 202 {object} inventory.CancelResponse "Cancellation requested"
// @Failure 400 {object} inventory.ErrorResponse "Missing runId"
// @Failure 404 {object} inventory.ErrorResponse "Unknown run"
// @Failure 409 {object} inventory.ErrorResponse "Run already finished"
// @Router /sync/cancel [post]
func (h *Handler) HandleCancel(c *fiber.Ctx) error {
	id := c.Query("runId")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "runId is required"})
	}

	err := h.service.Cancel(id)
	switch {
	case errors.Is(err, syncrun.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, syncrun.ErrNotRunning):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	logger.WithRayID(h.service.logger, c).Info("Sync cancellation requested", zap.String("run_id", id))
	return c.Status(fiber.StatusAccepted).JSON(CancelResponse{Cancelled: true, RunID: id})
}
