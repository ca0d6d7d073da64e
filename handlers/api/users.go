package api

import (
	"placemail/backend"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
)

// UserHandler passes the user-management table through to the backend. No
// local cache: the screen is low-traffic and always wants fresh rows.
type UserHandler struct {
	backend *backend.Client
}

// NewUserHandler creates a new user handler
func NewUserHandler(client *backend.Client) *UserHandler {
	return &UserHandler{backend: client}
}

// ListUsers returns all console users.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	bound := h.backend.WithCredential(credential(c))
	users, err := bound.ListUsers(c.UserContext())
	if err != nil {
		return notifyError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
	})
}

// UpdateUser changes a user's role and active flag.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return utils.BadRequestError("User ID required", nil)
	}

	var req backend.UserUpdate
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	bound := h.backend.WithCredential(credential(c))
	if err := bound.UpdateUser(c.UserContext(), userID, req); err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": utils.T(loc, "user_updated"),
	})
}

// DeleteUser removes a user account, confirm-gated.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return utils.BadRequestError("User ID required", nil)
	}
	if err := requireConfirm(c); err != nil {
		return err
	}

	bound := h.backend.WithCredential(credential(c))
	if err := bound.DeleteUser(c.UserContext(), userID); err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": utils.T(loc, "user_deleted"),
	})
}
