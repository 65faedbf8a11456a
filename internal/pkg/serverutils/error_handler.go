package serverutils

import (
	"errors"

	"citizen-helpdesk-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-level fiber error handler. Domain validation errors
// map to 400, fiber errors keep their code, everything else is a 500 with the
// detail kept out of the response body.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var validationErr *rag.ValidationError
	if errors.As(err, &validationErr) {
		return ctx.Status(fiber.StatusBadRequest).JSON(ErrorBody{
			Success: false,
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorBody{
			Success: false,
			Message: fiberErr.Message,
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
		Success: false,
		Message: "internal server error",
	})
}
