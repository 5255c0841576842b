package controller

import (
	"persona-forge-be/internal/pkg/serverutils"
	"persona-forge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	DiversityTrend(ctx *fiber.Ctx) error
	Report(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics/v1")
	h.Get("diversity-trend", c.DiversityTrend)
	h.Get("report", c.Report)
}

func (c *analyticsController) DiversityTrend(ctx *fiber.Ctx) error {
	scopeId, err := queryScopeId(ctx)
	if err != nil {
		return err
	}

	res, err := c.analyticsService.DiversityTrend(ctx.Context(), scopeId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success diversity trend", res))
}

func (c *analyticsController) Report(ctx *fiber.Ctx) error {
	scopeId, err := queryScopeId(ctx)
	if err != nil {
		return err
	}

	res, err := c.analyticsService.ScopeReport(ctx.Context(), scopeId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success scope report", res))
}

func queryScopeId(ctx *fiber.Ctx) (*uuid.UUID, error) {
	value := ctx.Query("scope_id", "")
	if value == "" {
		return nil, nil
	}
	scopeId, err := uuid.Parse(value)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "scope_id is not a valid uuid")
	}
	return &scopeId, nil
}
