package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stoik/internal/services"
)

type DashboardHandler struct {
	Analytics *services.AnalyticsService
}

// GET /api/v1/dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	st, err := h.Analytics.Dashboard(c.UserContext())
	if err != nil {
		return fail(c, "dashboard.get", err)
	}
	return c.JSON(st)
}
