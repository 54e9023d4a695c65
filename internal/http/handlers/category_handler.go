package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stoik/internal/services"
)

type CategoryHandler struct {
	Products *services.ProductService
}

// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Products.Categories(c.UserContext())
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return c.JSON(fiber.Map{"categories": cats})
}
