package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopcore/internal/domain"
	applog "shopcore/internal/log"
	"shopcore/internal/services"
	"shopcore/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// Create converts the caller's cart into an order.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "order.create", domain.ErrForbidden)
	}
	o, err := h.Orders.CreateOrderFromCart(cust.ID)
	if err != nil {
		applog.Security(c, "order.create.fail", map[string]any{"customer_id": cust.ID, "error": err.Error()})
		return fail(c, "order.create", err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": o.ID, "total": o.TotalAmount})
	return respond(c, fiber.StatusCreated, "Order placed successfully", o)
}

func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "order.list", domain.ErrForbidden)
	}
	page, limit := validate.Page(c.Query("page"), c.Query("limit"))

	var status domain.OrderStatus
	if raw := c.Query("status"); raw != "" {
		st, ok := domain.ParseOrderStatus(raw)
		if !ok {
			return badRequest(c, "unknown status filter")
		}
		status = st
	}

	pageOut, err := h.Orders.GetMyOrders(cust.ID, page, limit, status)
	if err != nil {
		return fail(c, "order.list", err)
	}
	return respondPage(c, "My orders fetched", pageOut.Items, pageOut.Total, pageOut.Page, pageOut.Limit)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return fail(c, "order.get", domain.ErrForbidden)
	}
	requesterID := ""
	if cust, ok := currentCustomer(c); ok {
		requesterID = cust.ID
	}
	o, err := h.Orders.GetOrderByID(oid, requesterID, u.Role)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		}
		return fail(c, "order.get", err)
	}
	return respond(c, fiber.StatusOK, "Order fetched", o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	cust, okc := currentCustomer(c)
	if !okc {
		return fail(c, "order.cancel", domain.ErrForbidden)
	}
	o, err := h.Orders.CancelOrder(oid, cust.ID)
	if err != nil {
		return fail(c, "order.cancel", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": o.ID})
	return respond(c, fiber.StatusOK, "Order canceled & stock rolled back", o)
}

type statusBody struct {
	Status string `json:"status"`
}

// UpdateStatus is the admin fulfillment transition endpoint.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body statusBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	st, ok := domain.ParseOrderStatus(body.Status)
	if !ok {
		return badRequest(c, "unknown status")
	}
	o, err := h.Orders.UpdateOrderStatus(oid, st)
	if err != nil {
		return fail(c, "order.status", err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": o.ID, "status": o.Status})
	return respond(c, fiber.StatusOK, "Order status updated", o)
}
