package integrity

import (
	"errors"

	"inventory-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/archive", h.HandleArchiveCheck)
}

// HandleIntegrityCheck runs every integrity check.
// @Summary Run All Integrity Checks
// @Description Performs the schema and archive checks and returns a combined report.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := make(map[string]interface{})

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	switch archive, err := h.service.CheckArchive(c.Context()); {
	case errors.Is(err, ErrArchiveDisabled):
		report["archive"] = map[string]interface{}{"status": "disabled"}
	case err != nil:
		report["archive"] = map[string]interface{}{"status": "error", "error": err.Error()}
	default:
		report["archive"] = archive
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks and optionally migrates the sync tables.
// @Summary Check Schema
// @Description Checks the catalog, lock and run tables against their models. Optionally auto-migrates them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Auto-migrate the tables"
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Matched && fix {
		l.Info("Attempting to migrate sync tables")
		if err := h.service.FixSchema(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to migrate schema",
				"details": err.Error(),
			})
		}
		if report, err = h.service.CheckSchema(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(report)
}

// HandleArchiveCheck checks and optionally creates the report archive bucket.
// @Summary Check Report Archive
// @Description Checks that the archive bucket exists and counts archived run reports. Optionally creates the bucket.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Create the bucket"
// @Success 200 {object} checks.ArchiveReport "Archive Report"
// @Failure 404 {object} map[string]string "Archive disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/archive [get]
func (h *Handler) HandleArchiveCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckArchive(c.Context())
	if errors.Is(err, ErrArchiveDisabled) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Archive check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Exists && fix {
		if err := h.service.FixArchive(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create archive bucket",
				"details": err.Error(),
			})
		}
		report.Exists = true
	}

	return c.JSON(report)
}
