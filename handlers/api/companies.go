package api

import (
	"placemail/backend"
	"placemail/services"
	"placemail/storage"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
)

// CompanyHandler serves the batch company screens and the company-to-compose
// handoff.
type CompanyHandler struct {
	backend   *backend.Client
	companies *services.CompanyService
	handoffs  *storage.HandoffStore
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(client *backend.Client, companies *services.CompanyService, handoffs *storage.HandoffStore) *CompanyHandler {
	return &CompanyHandler{backend: client, companies: companies, handoffs: handoffs}
}

// ListCompanies fetches a batch's companies, optionally filtered by name.
func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	batchID := c.Params("batchId")
	if batchID == "" {
		return utils.BadRequestError("Batch ID required", nil)
	}

	bound := h.backend.WithCredential(credential(c))
	if err := h.companies.Refresh(c.UserContext(), bound, batchID); err != nil {
		return notifyError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"companies": h.companies.Snapshot(batchID, c.Query("name")),
	})
}

// DeleteCompany removes a company from a batch, confirm-gated, with a full
// re-fetch of the batch on success.
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	companyID := c.Params("id")
	batchID := c.Params("batchId")
	if companyID == "" || batchID == "" {
		return utils.BadRequestError("Company ID and batch ID required", nil)
	}
	if err := requireConfirm(c); err != nil {
		return err
	}

	bound := h.backend.WithCredential(credential(c))
	if err := h.companies.DeleteCompany(c.UserContext(), bound, companyID, batchID); err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success":   true,
		"companies": h.companies.Snapshot(batchID, ""),
		"message":   utils.T(loc, "company_deleted"),
	})
}

// DeletePosition removes one open position, confirm-gated.
func (h *CompanyHandler) DeletePosition(c *fiber.Ctx) error {
	positionID := c.Params("id")
	if positionID == "" {
		return utils.BadRequestError("Position ID required", nil)
	}
	if err := requireConfirm(c); err != nil {
		return err
	}

	bound := h.backend.WithCredential(credential(c))
	batchID := c.Query("batch")
	if err := h.companies.DeletePosition(c.UserContext(), bound, positionID, batchID); err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": utils.T(loc, "position_deleted"),
	})
}

// CreateHandoff stores a student selection for the compose view and returns
// a one-time token the UI appends to its compose navigation.
func (h *CompanyHandler) CreateHandoff(c *fiber.Ctx) error {
	var req storage.CompanyHandoff
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if len(req.StudentIDs) == 0 {
		return utils.BadRequestError("At least one student is required", nil)
	}

	token := h.handoffs.Put(req)

	return c.JSON(fiber.Map{
		"success": true,
		"handoff": token,
	})
}
