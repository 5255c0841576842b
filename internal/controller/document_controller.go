package controller

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/serverutils"
	"persona-forge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("", c.Create)
	h.Post("upload", c.Upload)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

// Upload ingests a plain-text file from a multipart form. Only .txt and .md
// files are accepted, everything else would embed as garbage.
func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".txt" && ext != ".md" {
		return fmt.Errorf("%w: %s files are not supported, upload .txt or .md", apperrors.ErrUnsupportedFormat, ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	req := dto.CreateDocumentRequest{
		Filename: fileHeader.Filename,
		Content:  string(content),
		Type:     ctx.FormValue("type"),
	}
	if scopeIdValue := ctx.FormValue("scope_id"); scopeIdValue != "" {
		scopeId, err := uuid.Parse(scopeIdValue)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "scope_id is not a valid uuid")
		}
		req.ScopeId = &scopeId
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	req := dto.ListDocumentsRequest{
		Type:   ctx.Query("type", ""),
		Status: ctx.Query("status", ""),
	}
	if scopeIdValue := ctx.Query("scope_id", ""); scopeIdValue != "" {
		scopeId, err := uuid.Parse(scopeIdValue)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "scope_id is not a valid uuid")
		}
		req.ScopeId = &scopeId
	}

	res, err := c.documentService.List(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.documentService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}
