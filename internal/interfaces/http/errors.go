package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/domain"
)

// writeError maps a use case error to its HTTP response.
// written is what a multi-row submission committed before a RowError; it is echoed back.
func writeError(c *fiber.Ctx, err error, written interface{}) error {
	var verr *domain.ValidationError
	var rerr *domain.RowError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: verr.Message, Rows: verr.Rows})
	case errors.As(err, &rerr) && errors.Is(rerr.Err, domain.ErrConflict):
		// another request changed the row first
		return c.Status(fiber.StatusConflict).JSON(dto.PartialWriteResponse{
			Code:      "CONFLICT",
			Message:   rerr.Error(),
			FailedRow: rerr.Ref,
			Operation: rerr.Op,
			Written:   written,
		})
	case errors.As(err, &rerr):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.PartialWriteResponse{
			Code:      "PARTIAL_WRITE",
			Message:   rerr.Error(),
			FailedRow: rerr.Ref,
			Operation: rerr.Op,
			Written:   written,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
}

// sendFile writes a download with its content type and file name.
func sendFile(c *fiber.Ctx, name, contentType string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}
