package controller

import (
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/pkg/serverutils"
	"persona-forge-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICompletionController interface {
	RegisterRoutes(r fiber.Router)
	Complete(ctx *fiber.Ctx) error
}

type completionController struct {
	completionService service.ICompletionService
}

func NewCompletionController(completionService service.ICompletionService) ICompletionController {
	return &completionController{completionService: completionService}
}

func (c *completionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/prompt/v1")
	h.Post("complete", c.Complete)
}

func (c *completionController) Complete(ctx *fiber.Ctx) error {
	var req dto.CompletePromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.completionService.Complete(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success complete prompt", res))
}
