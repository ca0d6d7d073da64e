package api

import (
	"context"
	"io"
	"strconv"
	"strings"

	"placemail/backend"
	"placemail/compose"
	"placemail/config"
	"placemail/models"
	"placemail/services"
	"placemail/storage"
	"placemail/utils"

	"github.com/gofiber/fiber/v2"
)

// ComposeHandler owns the compose workflow: one draft per console session,
// template selection, attachment reconciliation, and the send pipeline.
type ComposeHandler struct {
	config    *config.Config
	backend   *backend.Client
	drafts    *storage.DraftStore
	handoffs  *storage.HandoffStore
	templates *services.TemplateService
	logs      *services.LogService
	pipeline  *compose.Pipeline
}

// NewComposeHandler creates a new compose handler
func NewComposeHandler(cfg *config.Config, client *backend.Client, drafts *storage.DraftStore,
	handoffs *storage.HandoffStore, templates *services.TemplateService, logs *services.LogService,
	pipeline *compose.Pipeline) *ComposeHandler {
	return &ComposeHandler{
		config:    cfg,
		backend:   client,
		drafts:    drafts,
		handoffs:  handoffs,
		templates: templates,
		logs:      logs,
		pipeline:  pipeline,
	}
}

// GetDraft returns the session's draft. A handoff token from a company
// screen seeds a fresh draft with the selected students; the token is
// consumed on first use, so a reload does not re-seed.
func (h *ComposeHandler) GetDraft(c *fiber.Ctx) error {
	var draft *compose.Draft
	err := h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		if token := c.Query("handoff"); token != "" {
			if handoff, ok := h.handoffs.Take(token); ok {
				d.Reset()
				d.RecipientMode = models.ModeStudentIDs
				d.StudentIDs = joinIDs(handoff.StudentIDs)
				if handoff.EventTitle != "" {
					d.Title = handoff.EventTitle
				} else if handoff.CompanyName != "" {
					d.Title = handoff.CompanyName
				}
			}
		}
		draft = d
		return nil
	})
	if err != nil {
		return notifyError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// DraftUpdate carries partial field edits; nil fields are left untouched.
type DraftUpdate struct {
	Title                 *string                 `json:"title"`
	Subject               *string                 `json:"subject"`
	Body                  *string                 `json:"body"`
	SenderEmail           *string                 `json:"sender_email"`
	ToEmails              *string                 `json:"to_emails"`
	CcEmails              *string                 `json:"cc_emails"`
	RecipientMode         *string                 `json:"recipient_mode"`
	RecipientFilter       *models.RecipientFilter `json:"recipient_filter"`
	ManualRecipientEmails *string                 `json:"manual_recipient_emails"`
	StudentIDs            *string                 `json:"student_ids"`
	MessageID             *string                 `json:"message_id"`
	ParentMessageID       *string                 `json:"parent_message_id"`
}

// UpdateDraft applies field edits to the session's draft. The body is
// sanitized on the way in; it is rendered as markup downstream.
func (h *ComposeHandler) UpdateDraft(c *fiber.Ctx) error {
	var update DraftUpdate
	if err := c.BodyParser(&update); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	if update.RecipientMode != nil && !models.RecipientMode(*update.RecipientMode).Valid() {
		return utils.BadRequestError("Unknown recipient mode", nil)
	}

	var draft *compose.Draft
	err := h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		applyUpdate(d, &update)
		draft = d
		return nil
	})
	if err != nil {
		return notifyError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

func applyUpdate(d *compose.Draft, u *DraftUpdate) {
	if u.Title != nil {
		d.Title = utils.StripMarkup(*u.Title)
	}
	if u.Subject != nil {
		d.Subject = utils.StripMarkup(*u.Subject)
	}
	if u.Body != nil {
		d.Body = utils.SanitizeBody(*u.Body)
	}
	if u.SenderEmail != nil {
		d.SenderEmail = strings.TrimSpace(*u.SenderEmail)
	}
	if u.ToEmails != nil {
		d.ToEmails = *u.ToEmails
	}
	if u.CcEmails != nil {
		d.CcEmails = *u.CcEmails
	}
	if u.RecipientMode != nil {
		d.RecipientMode = models.RecipientMode(*u.RecipientMode)
	}
	if u.RecipientFilter != nil {
		d.RecipientFilter = *u.RecipientFilter
	}
	if u.ManualRecipientEmails != nil {
		d.ManualRecipientEmails = *u.ManualRecipientEmails
	}
	if u.StudentIDs != nil {
		d.StudentIDs = *u.StudentIDs
	}
	if u.MessageID != nil {
		d.MessageID = strings.TrimSpace(*u.MessageID)
	}
	if u.ParentMessageID != nil {
		d.ParentMessageID = strings.TrimSpace(*u.ParentMessageID)
	}
}

// SelectTemplate prefills the draft from a catalog template.
func (h *ComposeHandler) SelectTemplate(c *fiber.Ctx) error {
	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if req.TemplateID == "" {
		return utils.BadRequestError("Template ID required", nil)
	}

	template, ok := h.templates.Find(req.TemplateID)
	if !ok {
		// Catalog may be cold after a restart; retry once from the backend
		bound := h.backend.WithCredential(credential(c))
		if err := h.templates.Refresh(c.UserContext(), bound); err != nil {
			return notifyError(c, err)
		}
		if template, ok = h.templates.Find(req.TemplateID); !ok {
			return utils.NotFoundError("Template not found", nil)
		}
	}

	var draft *compose.Draft
	_ = h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		d.SelectTemplate(template)
		draft = d
		return nil
	})

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// DeselectTemplate clears the template selection and its prefilled fields.
func (h *ComposeHandler) DeselectTemplate(c *fiber.Ctx) error {
	var draft *compose.Draft
	_ = h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		d.DeselectTemplate()
		draft = d
		return nil
	})

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// UploadAttachments adds user files to the draft under the combined cap.
func (h *ComposeHandler) UploadAttachments(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.BadRequestError("Invalid upload", err)
	}

	headers := form.File["attachments"]
	if len(headers) == 0 {
		return utils.BadRequestError("No files provided", nil)
	}

	files := make([]models.FileAttachment, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return utils.BadRequestError("Unreadable file: "+header.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return utils.BadRequestError("Unreadable file: "+header.Filename, err)
		}
		files = append(files, models.FileAttachment{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     content,
		})
	}

	var result compose.AddResult
	err = h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		result, err = d.AddManualAttachments(files, h.config.Compose.MaxAttachmentSize, h.config.Compose.MaxAttachments)
		return err
	})
	if err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success":   true,
		"added":     result.Added,
		"oversized": result.Oversized,
		"message": utils.TWithData(loc, "attachments_added", map[string]interface{}{
			"Count": result.Added,
		}),
	})
}

// RemoveManualAttachment removes one uploaded file by position.
func (h *ComposeHandler) RemoveManualAttachment(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return utils.BadRequestError("Invalid attachment index", err)
	}

	var draft *compose.Draft
	_ = h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		d.RemoveManualAttachment(index)
		draft = d
		return nil
	})

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// RemoveTemplateAttachment excludes one template attachment by filename.
func (h *ComposeHandler) RemoveTemplateAttachment(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" {
		return utils.BadRequestError("Filename required", nil)
	}

	var draft *compose.Draft
	_ = h.drafts.Update(sessionID(c), func(d *compose.Draft) error {
		d.RemoveTemplateAttachment(filename)
		draft = d
		return nil
	})

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// Send validates and dispatches the session's draft. On success the draft is
// reset and the send history is refreshed in the background; on failure the
// draft is untouched so the user can retry. The pipeline accesses the draft
// only through the store, so a concurrent draft edit cannot race the send.
func (h *ComposeHandler) Send(c *fiber.Ctx) error {
	bound := h.backend.WithCredential(credential(c))
	refresh := func(ctx context.Context) error {
		return h.logs.RefreshLast(ctx, bound)
	}

	outcome, err := h.pipeline.Send(c.UserContext(), sessionID(c), h.drafts, bound, refresh)
	if err != nil {
		return notifyError(c, err)
	}

	loc := localizer(c)
	return c.JSON(fiber.Map{
		"success":    true,
		"successful": outcome.Successful,
		"failed":     outcome.Failed,
		"message": utils.TWithData(loc, "send_summary", map[string]interface{}{
			"Successful": outcome.Successful,
			"Failed":     outcome.Failed,
		}),
	})
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
