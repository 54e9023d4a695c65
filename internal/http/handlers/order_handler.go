package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"stoik/internal/domain"
	applog "stoik/internal/log"
	"stoik/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// orderView adds the list grouping flag to an order.
type orderView struct {
	*domain.Order
	Bulk bool `json:"isBulk"`
}

func view(o *domain.Order) orderView {
	return orderView{Order: o, Bulk: services.IsBulkForDisplay(o.Items)}
}

// GET /api/v1/orders?status=&paymentStatus=&customerId=&type=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var limit int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, "orders.list", domain.Validation("limit must be a whole number"))
		}
		limit = n
	}
	list, err := h.Orders.List(c.UserContext(), services.OrderFilter{
		Status:        domain.OrderStatus(c.Query("status")),
		PaymentStatus: domain.PaymentStatus(c.Query("paymentStatus")),
		CustomerID:    c.Query("customerId"),
		Type:          domain.OrderKind(c.Query("type")),
		Limit:         limit,
	})
	if err != nil {
		return fail(c, "orders.list", err)
	}
	out := make([]orderView, 0, len(list))
	for i := range list {
		out = append(out, view(&list[i]))
	}
	return c.JSON(fiber.Map{"orders": out})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	o, err := h.Orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "orders.get", err)
	}
	return c.JSON(view(o))
}

// POST /api/v1/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	return h.place(c, "orders.create", h.Orders.Create)
}

// POST /api/v1/orders/bulk
func (h *OrderHandler) CreateBulk(c *fiber.Ctx) error {
	return h.place(c, "orders.create_bulk", h.Orders.CreateBulk)
}

func (h *OrderHandler) place(c *fiber.Ctx, action string, create func(ctx context.Context, in services.CreateOrderInput) (*domain.Order, error)) error {
	var in services.CreateOrderInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, action, err)
	}
	o, err := create(c.UserContext(), in)
	if err != nil {
		return fail(c, action, err)
	}
	applog.Audit(c, action, map[string]any{
		"order_id":      o.ID,
		"customer_id":   o.CustomerID,
		"kind":          string(o.Kind),
		"total_selling": o.TotalSelling,
	})
	return c.Status(fiber.StatusCreated).JSON(view(o))
}

// PATCH /api/v1/orders/:id
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in services.UpdateOrderInput
	if err := parseBody(c, &in); err != nil {
		return fail(c, "orders.update", err)
	}
	o, err := h.Orders.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, "orders.update", err)
	}
	applog.Audit(c, "orders.update", map[string]any{
		"order_id":       o.ID,
		"status":         string(o.Status),
		"payment_status": string(o.PaymentStatus),
	})
	return c.JSON(view(o))
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Orders.Delete(c.UserContext(), id); err != nil {
		return fail(c, "orders.delete", err)
	}
	applog.Audit(c, "orders.delete", map[string]any{"order_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
