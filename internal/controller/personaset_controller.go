package controller

import (
	"strconv"

	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/pkg/serverutils"
	"persona-forge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPersonaSetController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Expand(ctx *fiber.Ctx) error
	Score(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
}

type personaSetController struct {
	synthesisService  service.ISynthesisService
	scoringService    service.IScoringService
	validationService service.IValidationService
}

func NewPersonaSetController(
	synthesisService service.ISynthesisService,
	scoringService service.IScoringService,
	validationService service.IValidationService,
) IPersonaSetController {
	return &personaSetController{
		synthesisService:  synthesisService,
		scoringService:    scoringService,
		validationService: validationService,
	}
}

func (c *personaSetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/personaset/v1")
	h.Post("generate", c.Generate)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
	h.Post(":id/expand", c.Expand)
	h.Post(":id/score", c.Score)
	h.Post(":id/validate", c.Validate)
}

func (c *personaSetController) Generate(ctx *fiber.Ctx) error {
	var req dto.GeneratePersonaSetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.synthesisService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate persona set", res))
}

func (c *personaSetController) Show(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.synthesisService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show persona set", res))
}

func (c *personaSetController) List(ctx *fiber.Ctx) error {
	req := dto.ListPersonaSetsRequest{
		Status: ctx.Query("status", ""),
		Limit:  queryInt(ctx, "limit", 20),
		Offset: queryInt(ctx, "offset", 0),
	}
	if scopeIdValue := ctx.Query("scope_id", ""); scopeIdValue != "" {
		scopeId, err := uuid.Parse(scopeIdValue)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "scope_id is not a valid uuid")
		}
		req.ScopeId = &scopeId
	}

	res, err := c.synthesisService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list persona sets", res))
}

func (c *personaSetController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.synthesisService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete persona set", nil))
}

func (c *personaSetController) Expand(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.ExpandPersonaSetRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.synthesisService.Expand(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success expand persona set", res))
}

func (c *personaSetController) Score(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.scoringService.ScorePersonaSet(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success score persona set", res))
}

func (c *personaSetController) Validate(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.validationService.Validate(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success validate persona set", res))
}

func queryInt(ctx *fiber.Ctx, key string, fallback int) int {
	value, err := strconv.Atoi(ctx.Query(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
