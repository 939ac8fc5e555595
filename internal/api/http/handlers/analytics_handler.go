package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
)

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Overall GET /analytics/overall.
func (h *AnalyticsHandler) Overall(c *fiber.Ctx) error {
	stats, err := h.service.Overall(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// ByStatus GET /analytics/status.
func (h *AnalyticsHandler) ByStatus(c *fiber.Ctx) error {
	counts, err := h.service.StatusDistribution(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StatusCountResponse, 0, len(counts))
	for _, entry := range counts {
		items = append(items, dto.StatusCountResponse{Status: entry.Status, Count: entry.Count})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ByCategory GET /analytics/category.
func (h *AnalyticsHandler) ByCategory(c *fiber.Ctx) error {
	counts, err := h.service.CategoryDistribution(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryCountResponse, 0, len(counts))
	for _, entry := range counts {
		items = append(items, dto.CategoryCountResponse{Category: entry.Category, Count: entry.Count})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Trend GET /analytics/trend.
func (h *AnalyticsHandler) Trend(c *fiber.Ctx) error {
	points, err := h.service.Trend(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": points})
}

// AgencyPerformance GET /analytics/agency-performance.
func (h *AnalyticsHandler) AgencyPerformance(c *fiber.Ctx) error {
	perf, err := h.service.PerAgency(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": perf})
}
