package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stoik/internal/domain"
	applog "stoik/internal/log"
)

func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindValidation, domain.KindInvalidTransition:
		return fiber.StatusBadRequest
	case domain.KindCustomerNotFound, domain.KindProductNotFound, domain.KindOrderNotFound:
		return fiber.StatusNotFound
	case domain.KindInsufficientStock:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func errorBody(kind, detail string) fiber.Map {
	return fiber.Map{"error": fiber.Map{"kind": kind, "detail": detail}}
}

// fail writes err as the JSON error body. Anything that is not a domain error
// is logged and reported without detail.
func fail(c *fiber.Ctx, action string, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody(string(domain.KindStoreUnavailable), "Something went wrong. Please try again."))
	}
	status := statusFor(de.Kind)
	switch {
	case status == fiber.StatusInternalServerError:
		applog.Error(c, action, err, nil)
	case de.Kind == domain.KindValidation:
		applog.Security(c, "validation.fail", map[string]any{"action": action, "detail": de.Detail})
	default:
		applog.Info(c, action+".reject", map[string]any{"kind": string(de.Kind), "detail": de.Detail})
	}
	return c.Status(status).JSON(errorBody(string(de.Kind), de.Detail))
}

// parseBody decodes a JSON request body.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Validation("request body must be a JSON object")
	}
	return nil
}

// ErrorHandler answers errors that escape handlers (routing, body limits, panics)
// without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(errorBody("HTTPError", fe.Message))
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody(string(domain.KindStoreUnavailable), "Something went wrong. Please try again."))
}
