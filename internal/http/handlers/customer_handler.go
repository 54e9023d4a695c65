package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stoik/internal/domain"
	applog "stoik/internal/log"
	"stoik/internal/services"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	cs, err := h.Customers.List(c.UserContext(), c.Query("q"))
	if err != nil {
		return fail(c, "customers.list", err)
	}
	return c.JSON(fiber.Map{"customers": cs})
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	cu, err := h.Customers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "customers.get", err)
	}
	return c.JSON(cu)
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in domain.Customer
	if err := parseBody(c, &in); err != nil {
		return fail(c, "customers.create", err)
	}
	cu, err := h.Customers.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "customers.create", err)
	}
	applog.Audit(c, "customers.create", map[string]any{"customer_id": cu.ID})
	return c.Status(fiber.StatusCreated).JSON(cu)
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in domain.Customer
	if err := parseBody(c, &in); err != nil {
		return fail(c, "customers.update", err)
	}
	cu, err := h.Customers.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "customers.update", err)
	}
	applog.Audit(c, "customers.update", map[string]any{"customer_id": cu.ID})
	return c.JSON(cu)
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Customers.Delete(c.UserContext(), id); err != nil {
		return fail(c, "customers.delete", err)
	}
	applog.Audit(c, "customers.delete", map[string]any{"customer_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/v1/customers/:id/recompute
func (h *CustomerHandler) Recompute(c *fiber.Ctx) error {
	cu, err := h.Customers.RecomputeAggregates(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "customers.recompute", err)
	}
	applog.Audit(c, "customers.recompute", map[string]any{
		"customer_id":  cu.ID,
		"total_orders": cu.TotalOrders,
		"total_spent":  cu.TotalSpent,
	})
	return c.JSON(cu)
}
