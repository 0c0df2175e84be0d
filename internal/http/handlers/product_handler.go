package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shopcore/internal/domain"
	applog "shopcore/internal/log"
	"shopcore/internal/services"
	"shopcore/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, limit := validate.Page(c.Query("page"), c.Query("limit"))
	minPrice, _ := strconv.ParseFloat(c.Query("minPrice"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("maxPrice"), 64)

	pageOut, err := h.Catalog.List(services.ProductQuery{
		Term:     c.Query("searchTerm"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return fail(c, "product.list", err)
	}
	return respondPage(c, "Products fetched", pageOut.Items, pageOut.Total, pageOut.Page, pageOut.Limit)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, "product.get", err)
	}
	return respond(c, fiber.StatusOK, "Product fetched", p)
}

type productBody struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name, ok := validate.Name(body.Name)
	if !ok {
		return badRequest(c, "name is required (max 80 chars)")
	}
	if body.Price < 0 || body.Stock < 0 {
		return badRequest(c, "price and stock must be non-negative")
	}
	p, err := h.Catalog.Create(domain.Product{
		ID:          body.ID,
		Name:        name,
		Description: body.Description,
		Price:       body.Price,
		Stock:       body.Stock,
	})
	if err != nil {
		return fail(c, "product.create", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID})
	return respond(c, fiber.StatusCreated, "Product created", p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	name, okName := validate.Name(body.Name)
	if !okName {
		return badRequest(c, "name is required (max 80 chars)")
	}
	if body.Price < 0 || body.Stock < 0 {
		return badRequest(c, "price and stock must be non-negative")
	}
	p, err := h.Catalog.Update(domain.Product{
		ID:          id,
		Name:        name,
		Description: body.Description,
		Price:       body.Price,
		Stock:       body.Stock,
	})
	if err != nil {
		return fail(c, "product.update", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID})
	return respond(c, fiber.StatusOK, "Product updated", p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	if err := h.Catalog.Delete(id); err != nil {
		return fail(c, "product.delete", err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return respond(c, fiber.StatusOK, "Product deleted", nil)
}
