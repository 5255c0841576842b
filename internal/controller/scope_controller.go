package controller

import (
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/serverutils"
	"persona-forge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IScopeController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type scopeController struct {
	scopeService service.IScopeService
}

func NewScopeController(scopeService service.IScopeService) IScopeController {
	return &scopeController{
		scopeService: scopeService,
	}
}

func (c *scopeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/scope/v1")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *scopeController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateScopeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scopeService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create scope", res))
}

func (c *scopeController) Show(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.scopeService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show scope", res))
}

func (c *scopeController) List(ctx *fiber.Ctx) error {
	res, err := c.scopeService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list scopes", res))
}

func (c *scopeController) Update(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateScopeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.scopeService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update scope", res))
}

func (c *scopeController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.scopeService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete scope", nil))
}

// parseIdParam reads the :id path segment; a malformed id is reported as not
// found rather than echoed back.
func parseIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return id, nil
}
