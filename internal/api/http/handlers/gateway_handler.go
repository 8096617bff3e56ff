package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-api/internal/api/dto"
	"github.com/spec-kit/school-api/internal/service"
	apperrors "github.com/spec-kit/school-api/pkg/util"
)

// GatewayHandler exposes registry-backed CRUD over /api/:table.
type GatewayHandler struct {
	gateway *service.GatewayService
}

// NewGatewayHandler constructs handler.
func NewGatewayHandler(gatewayService *service.GatewayService) *GatewayHandler {
	return &GatewayHandler{gateway: gatewayService}
}

// List handles GET /api/:table.
func (h *GatewayHandler) List(c *fiber.Ctx) error {
	size := c.QueryInt("size", 0)
	if size == 0 {
		size = c.QueryInt("limit", 10)
	}

	rows, pagination, err := h.gateway.List(c.UserContext(), c.Params("table"), service.GatewayListInput{
		Search:      c.Query("search"),
		SearchField: c.Query("search_field"),
		SortBy:      c.Query("sort_by"),
		Order:       c.Query("order"),
		Page:        c.QueryInt("page", 1),
		PageSize:    size,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows, "pagination": pagination})
}

// Get handles GET /api/:table/:id.
func (h *GatewayHandler) Get(c *fiber.Ctx) error {
	row, err := h.gateway.GetByID(c.UserContext(), c.Params("table"), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": row})
}

// Create handles POST /api/:table.
func (h *GatewayHandler) Create(c *fiber.Ctx) error {
	var values map[string]any
	if err := c.BodyParser(&values); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	row, err := h.gateway.Create(c.UserContext(), c.Params("table"), values)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": row})
}

// Update handles PUT /api/:table/:id.
func (h *GatewayHandler) Update(c *fiber.Ctx) error {
	var values map[string]any
	if err := c.BodyParser(&values); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	row, err := h.gateway.Update(c.UserContext(), c.Params("table"), c.Params("id"), values)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": row})
}

// Delete handles DELETE /api/:table/:id.
func (h *GatewayHandler) Delete(c *fiber.Ctx) error {
	if err := h.gateway.Delete(c.UserContext(), c.Params("table"), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "deleted"}})
}

// BulkInsert handles POST /api/:table/bulk.
func (h *GatewayHandler) BulkInsert(c *fiber.Ctx) error {
	var req dto.BulkInsertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	count, err := h.gateway.BulkInsert(c.UserContext(), c.Params("table"), req.Records)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"inserted": count}})
}

// Search handles GET /api/search/:table.
func (h *GatewayHandler) Search(c *fiber.Ctx) error {
	rows, err := h.gateway.Search(c.UserContext(), c.Params("table"), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}
