package syncjob

import (
	"errors"

	"catalog-sync/core/logger"
	"catalog-sync/feature/syncjob/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleRun)
	group.Get("/last", h.HandleLast)
}

// HandleRun runs a reconciliation and returns its report.
// @Summary Run Sync
// @Description Reconcile the catalog with the ERS. The body is optional; createMissing defaults to true.
// @Tags sync
// @Accept json
// @Produce json
// @Param options body reconcile.Options false "Run options"
// @Success 200 {object} reconcile.Report "Run report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "A run is already in progress"
// @Failure 500 {object} map[string]interface{} "Run failed"
// @Router /sync [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	opts := reconcile.DefaultOptions()
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body: " + err.Error()})
		}
	}

	report, err := h.service.Run(c.UserContext(), opts)
	if err != nil {
		if errors.Is(err, reconcile.ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}

		l.Error("Sync run failed", zap.Error(err))
		var syncErr *reconcile.SyncError
		if errors.As(err, &syncErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  err.Error(),
				"hint":   syncErr.Hint,
				"stage":  syncErr.Stage,
				"report": report,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Sync run triggered over HTTP", zap.String("run_id", report.RunID))
	return c.JSON(report)
}

// HandleLast returns the report of the last run.
// @Summary Last Sync Report
// @Tags sync
// @Produce json
// @Success 200 {object} reconcile.Report "Last run report"
// @Failure 404 {object} map[string]string "No run yet"
// @Router /sync/last [get]
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	report, ok := h.service.Last()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no sync run yet"})
	}
	return c.JSON(report)
}
