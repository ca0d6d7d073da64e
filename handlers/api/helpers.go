package api

import (
	"errors"

	"placemail/backend"
	"placemail/compose"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// localizer returns the request-scoped localizer set by the locale
// middleware, falling back to the default.
func localizer(c *fiber.Ctx) *i18n.Localizer {
	if l, ok := c.Locals("localizer").(*i18n.Localizer); ok && l != nil {
		return l
	}
	return utils.Localizer
}

// credential returns the backend session credential for this request.
func credential(c *fiber.Ctx) string {
	cred, _ := c.Locals("credential").(string)
	return cred
}

// sessionID returns the console session id for this request.
func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals("sessionID").(string)
	return id
}

// notifyError turns a compose or backend failure into the JSON error
// envelope the console renders as a toast. Validation failures keep their
// code so the UI can highlight the offending field.
func notifyError(c *fiber.Ctx, err error) error {
	loc := localizer(c)

	var verr *compose.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    verr.Code,
			"error":   utils.T(loc, "validation_"+verr.Code),
		})
	}

	if errors.Is(err, compose.ErrSendInFlight) {
		return utils.ConflictError(utils.T(loc, "error_send_in_flight"), nil)
	}

	var aerr *backend.APIError
	if errors.As(err, &aerr) {
		message := aerr.Message
		if message == "" {
			message = utils.T(loc, "error_backend_generic")
		}
		return utils.BadGatewayError(message, nil)
	}

	utils.Log.Error("Unhandled handler error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   utils.T(loc, "error_backend_generic"),
	})
}

// requireConfirm enforces the UI's confirmation gate on destructive calls.
// Without confirm=true nothing is issued to the backend.
func requireConfirm(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return utils.BadRequestError("Confirmation required", nil)
	}
	return nil
}

// ErrorHandler renders every error that escapes a handler as the standard
// JSON envelope, mapping AppError codes to HTTP statuses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if appErr, ok := err.(*utils.AppError); ok {
		code = appErr.Code
		if code >= 500 {
			utils.Log.Error("Application error: %v", appErr)
		}
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
