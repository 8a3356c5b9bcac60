package catalog

import (
	"errors"
	"strconv"

	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleList)
	group.Get("/export", h.HandleExport)
	group.Get("/:id", h.HandleGet)
}

func filterFromQuery(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	if raw := c.Query("inStock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("inStock must be true or false")
		}
		f.InStock = &v
	}
	return f, nil
}

// HandleList returns catalog items.
// @Summary List Catalog
// @Description List catalog items, optionally filtered by category, stock and name.
// @Tags catalog
// @Produce json
// @Param category query string false "Category"
// @Param inStock query bool false "Only items in (true) or out of (false) stock"
// @Param q query string false "Name contains"
// @Success 200 {array} models.CatalogItem "Catalog items"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	f, err := filterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	items, err := h.service.List(c.UserContext(), f)
	if err != nil {
		l.Error("Catalog listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(items)
}

// HandleGet returns one catalog item.
// @Summary Get Catalog Item
// @Tags catalog
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.CatalogItem "Catalog item"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	item, err := h.service.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, ErrItemNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Catalog lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(item)
}

// HandleExport streams the catalog as an Excel workbook.
// @Summary Export Catalog
// @Description Download the (filtered) catalog as an xlsx workbook.
// @Tags catalog
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param category query string false "Category"
// @Param inStock query bool false "Stock filter"
// @Success 200 {file} file "Workbook"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/export [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	f, err := filterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	items, err := h.service.List(c.UserContext(), f)
	if err != nil {
		l.Error("Catalog export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(ExportFileName(f.Category))
	if err := WriteXLSX(c.Response().BodyWriter(), items); err != nil {
		l.Error("Catalog export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return nil
}
