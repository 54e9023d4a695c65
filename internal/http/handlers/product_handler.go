package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stoik/internal/domain"
	applog "stoik/internal/log"
	"stoik/internal/services"
)

type ProductHandler struct {
	Products *services.ProductService
}

// GET /api/v1/products?category=&q=&lowStock=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.Products.List(c.UserContext(), services.ProductFilter{
		Category: c.Query("category"),
		Q:        c.Query("q"),
		LowStock: c.QueryBool("lowStock"),
	})
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(fiber.Map{"products": ps})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.Products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "products.get", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in domain.Product
	if err := parseBody(c, &in); err != nil {
		return fail(c, "products.create", err)
	}
	p, err := h.Products.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in domain.Product
	if err := parseBody(c, &in); err != nil {
		return fail(c, "products.update", err)
	}
	p, err := h.Products.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": p.ID})
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return fail(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

type stockRequest struct {
	Size       string `json:"size"`
	StockLevel *int   `json:"stockLevel"`
}

// PUT /api/v1/products/:id/stock
func (h *ProductHandler) SetStock(c *fiber.Ctx) error {
	var in stockRequest
	if err := parseBody(c, &in); err != nil {
		return fail(c, "products.stock", err)
	}
	if in.StockLevel == nil {
		return fail(c, "products.stock", domain.Validation("stockLevel is required"))
	}
	p, err := h.Products.SetStock(c.UserContext(), c.Params("id"), in.Size, *in.StockLevel)
	if err != nil {
		return fail(c, "products.stock", err)
	}
	applog.Audit(c, "products.stock", map[string]any{"product_id": p.ID, "size": in.Size, "stock_level": *in.StockLevel})
	return c.JSON(p)
}
