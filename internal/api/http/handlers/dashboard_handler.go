package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/service"
)

// DashboardSource is the dashboard service surface used by the handler.
type DashboardSource interface {
	Status() service.DashboardStatus
	Metrics(ctx context.Context, actor service.Actor) (*domain.DashboardMetrics, error)
}

// DashboardHandler serves dashboard summaries.
type DashboardHandler struct {
	dashboard DashboardSource
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard DashboardSource) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Status GET /api/dashboard/status.
func (h *DashboardHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.dashboard.Status())
}

// Metrics GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	metrics, err := h.dashboard.Metrics(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}
