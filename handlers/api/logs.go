package api

import (
	"placemail/backend"
	"placemail/config"
	"placemail/models"
	"placemail/services"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
)

// LogHandler serves the send-history screen: a read-only expandable list
// plus confirmed deletion.
type LogHandler struct {
	config  *config.Config
	backend *backend.Client
	logs    *services.LogService
}

// NewLogHandler creates a new log handler
func NewLogHandler(cfg *config.Config, client *backend.Client, logs *services.LogService) *LogHandler {
	return &LogHandler{config: cfg, backend: client, logs: logs}
}

// ListLogs fetches and returns a page of send history.
func (h *LogHandler) ListLogs(c *fiber.Ctx) error {
	page := models.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", h.config.Logs.DefaultPageSize),
	}.Normalize(h.config.Logs.DefaultPageSize, h.config.Logs.MaxPageSize)

	bound := h.backend.WithCredential(credential(c))
	if err := h.logs.Refresh(c.UserContext(), bound, page); err != nil {
		return notifyError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"logs":    h.logs.Snapshot(),
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

// DeleteLog removes one history entry. The call is gated on confirm=true,
// set by the UI's confirmation dialog. A successful delete re-fetches the
// list from the backend rather than splicing locally.
func (h *LogHandler) DeleteLog(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Log ID required", nil)
	}
	if err := requireConfirm(c); err != nil {
		return err
	}

	bound := h.backend.WithCredential(credential(c))
	if err := h.logs.Delete(c.UserContext(), bound, id); err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success": true,
		"logs":    h.logs.Snapshot(),
		"message": utils.T(loc, "log_deleted"),
	})
}
