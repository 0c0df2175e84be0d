package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopcore/internal/domain"
	applog "shopcore/internal/log"
	"shopcore/internal/repos"
	"shopcore/internal/services"
)

// RequireCustomer resolves the session to a customer account and stashes
// both user and customer in locals. The engine downstream trusts these as
// pre-validated identity.
func RequireCustomer(auth *services.AuthService, customers *repos.CustomerRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "login required"})
		}
		cust, err := customers.ByUserID(u.ID)
		if err != nil {
			applog.Security(c, "access.denied.customer", map[string]any{"user_id": u.ID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "customer account required"})
		}
		c.Locals("user", u)
		c.Locals("customer", cust)
		return c.Next()
	}
}

func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || u.Role != "ADMIN" {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "admin access required"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func currentCustomer(c *fiber.Ctx) (domain.Customer, bool) {
	cust, ok := c.Locals("customer").(domain.Customer)
	return cust, ok
}
