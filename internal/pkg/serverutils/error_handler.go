package serverutils

import (
	"errors"

	"persona-forge-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// errorMapping pins each pipeline failure to one HTTP status and one stable
// machine code, so a caller can tell "try again later" from "add more
// documents first" without string matching.
type errorMapping struct {
	status int
	code   string
}

var errorMappings = []struct {
	sentinel error
	mapping  errorMapping
}{
	{apperrors.ErrInsufficientInput, errorMapping{fiber.StatusUnprocessableEntity, "insufficient_input"}},
	{apperrors.ErrInsufficientData, errorMapping{fiber.StatusConflict, "insufficient_data"}},
	{apperrors.ErrGenerationParse, errorMapping{fiber.StatusBadGateway, "generation_parse"}},
	{apperrors.ErrEmbeddingUnavailable, errorMapping{fiber.StatusBadGateway, "embedding_unavailable"}},
	{apperrors.ErrVectorIndex, errorMapping{fiber.StatusBadGateway, "vector_index"}},
	{apperrors.ErrEncoding, errorMapping{fiber.StatusBadRequest, "encoding"}},
	{apperrors.ErrUnsupportedFormat, errorMapping{fiber.StatusUnsupportedMediaType, "unsupported_format"}},
	{apperrors.ErrNotFound, errorMapping{fiber.StatusNotFound, "not_found"}},
}

// ErrorHandlerMiddleware converts service errors bubbling out of handlers
// into the response envelope. Unrecognized errors become opaque 500s.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponseWithCode(fiber.StatusBadRequest, "validation", validationErr.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		for _, m := range errorMappings {
			if errors.Is(err, m.sentinel) {
				return ctx.Status(m.mapping.status).
					JSON(ErrorResponseWithCode(m.mapping.status, m.mapping.code, err.Error()))
			}
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponseWithCode(fiber.StatusInternalServerError, "internal", "internal server error"))
	}
}
