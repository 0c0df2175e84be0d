package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopcore/internal/domain"
	applog "shopcore/internal/log"
	"shopcore/internal/services"
	"shopcore/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartItemBody struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "cart.add", domain.ErrForbidden)
	}
	var body cartItemBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	pid, okID := validate.ID(body.ProductID)
	if !okID {
		return badRequest(c, "missing productId")
	}
	if err := h.Cart.Add(cust.ID, pid, body.Quantity); err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": pid, "qty": body.Quantity})
	return h.view(c, cust.ID, "Item added to cart")
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "cart.update", domain.ErrForbidden)
	}
	pid, okID := validate.ID(c.Params("productId"))
	if !okID {
		return badRequest(c, "invalid productId")
	}
	var body cartItemBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.Cart.SetQuantity(cust.ID, pid, body.Quantity); err != nil {
		return fail(c, "cart.update", err)
	}
	return h.view(c, cust.ID, "Cart updated")
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "cart.remove", domain.ErrForbidden)
	}
	pid, okID := validate.ID(c.Params("productId"))
	if !okID {
		return badRequest(c, "invalid productId")
	}
	if err := h.Cart.Remove(cust.ID, pid); err != nil {
		return fail(c, "cart.remove", err)
	}
	return h.view(c, cust.ID, "Item removed")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "cart.clear", domain.ErrForbidden)
	}
	if err := h.Cart.Clear(cust.ID); err != nil {
		return fail(c, "cart.clear", err)
	}
	return h.view(c, cust.ID, "Cart cleared")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cust, ok := currentCustomer(c)
	if !ok {
		return fail(c, "cart.view", domain.ErrForbidden)
	}
	return h.view(c, cust.ID, "Cart fetched")
}

func (h *CartHandler) view(c *fiber.Ctx, customerID, message string) error {
	cv, err := h.Cart.View(customerID)
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return respond(c, fiber.StatusOK, message, cv)
}
