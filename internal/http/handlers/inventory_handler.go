package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stoik/internal/services"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?productId=&size=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	avail, err := h.Inv.CheckAvailability(c.UserContext(), c.Query("productId"), c.Query("size"))
	if err != nil {
		return fail(c, "availability.check", err)
	}
	return c.JSON(avail)
}
