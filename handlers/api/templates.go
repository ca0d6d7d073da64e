package api

import (
	"time"

	"placemail/backend"
	"placemail/services"

	"github.com/gofiber/fiber/v2"
)

// TemplateHandler serves the template catalog.
type TemplateHandler struct {
	backend   *backend.Client
	templates *services.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(client *backend.Client, templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{backend: client, templates: templates}
}

// catalogTTL controls how long a fetched catalog is served without hitting
// the backend again. ?refresh=true bypasses it.
const catalogTTL = 5 * time.Minute

// ListTemplates returns the grouped template catalog.
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	if c.Query("refresh") == "true" || !h.templates.Fresh(catalogTTL) {
		bound := h.backend.WithCredential(credential(c))
		if err := h.templates.Refresh(c.UserContext(), bound); err != nil {
			return notifyError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"groupedTemplates": h.templates.Snapshot(),
	})
}
