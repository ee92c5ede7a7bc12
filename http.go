package contacts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// HTTPStatusFromError maps an error to the response status. Rich errors map
// by category; everything unrecognized is a 500.
func HTTPStatusFromError(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	switch richErr.Category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return fiber.StatusBadRequest
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// RenderError writes the JSON error body for err. Internal details never
// leave the process: unrecognized errors render as a generic message.
func RenderError(c *fiber.Ctx, err error) error {
	status := HTTPStatusFromError(err)

	body := fiber.Map{
		"error": "internal server error",
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && status < fiber.StatusInternalServerError {
		body["error"] = richErr.Message
		if richErr.TextCode != "" {
			body["code"] = richErr.TextCode
		}
	}

	return c.Status(status).JSON(body)
}

// RenderValidationError writes a 400 carrying the per-field messages.
func RenderValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":      "validation failed",
		"code":       "VALIDATION",
		"validation": FormatValidationErrorToMap(err),
	})
}

// FormatValidationErrorToMap flattens a validation error into field messages.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if fieldErrs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range fieldErrs {
			if fieldErr != nil {
				out[field] = fieldErr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
