package compose

import (
	"fmt"

	"placemail/models"
)

// Default limits for the attachment reconciler. The config file can lower or
// raise them; handlers pass the configured values through.
const (
	DefaultMaxAttachments    = 5
	DefaultMaxAttachmentSize = 10 << 20 // 10 MiB per file
)

// Draft is the message being composed in one console session. A session owns
// exactly one draft: created empty when the compose view first loads (or
// seeded from a company handoff), reset to empty on successful send.
//
// Two attachment sets live under a single combined cap: the selected
// template's own attachments (minus user exclusions) and files the user
// uploaded in this session.
type Draft struct {
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	SenderEmail string `json:"sender_email"`

	// Raw comma-separated address input, parsed only at resolve time
	ToEmails string `json:"to_emails"`
	CcEmails string `json:"cc_emails"`

	RecipientMode         models.RecipientMode   `json:"recipient_mode"`
	RecipientFilter       models.RecipientFilter `json:"recipient_filter"`
	ManualRecipientEmails string                 `json:"manual_recipient_emails"`
	StudentIDs            string                 `json:"student_ids"`

	MessageID       string `json:"message_id,omitempty"`
	ParentMessageID string `json:"parent_message_id,omitempty"`

	SelectedTemplate *models.Template `json:"selected_template,omitempty"`

	ManualAttachments              []models.FileAttachment `json:"manual_attachments"`
	RemovedTemplateAttachmentNames []string                `json:"removed_template_attachment_names"`
}

// NewDraft returns an empty draft in filter mode.
func NewDraft() *Draft {
	return &Draft{RecipientMode: models.ModeFilter}
}

// Reset blanks the draft back to its initial state.
func (d *Draft) Reset() {
	*d = *NewDraft()
}

// SelectTemplate prefills composition fields from the template. Manual
// attachments and the exclusion set are deliberately left alone; reusing the
// selection modal without clearing exclusions is the caller's concern.
func (d *Draft) SelectTemplate(t models.Template) {
	d.Title = t.Name
	d.Subject = t.Subject
	d.Body = t.Body
	d.SenderEmail = t.SenderEmail
	d.CcEmails = joinEmails(t.CcEmails)
	d.SelectedTemplate = &t
}

// DeselectTemplate clears the selection, the exclusion set, and the three
// prefilled text fields. Sender and CC survive so manual edits to them are
// not lost.
func (d *Draft) DeselectTemplate() {
	d.SelectedTemplate = nil
	d.RemovedTemplateAttachmentNames = nil
	d.Title = ""
	d.Subject = ""
	d.Body = ""
}

// AddResult summarizes one upload batch.
type AddResult struct {
	Added     int      `json:"added"`
	Oversized []string `json:"oversized,omitempty"` // filenames rejected individually
}

// AddManualAttachments appends an upload batch. Files over maxSize are
// rejected individually and reported by name. If the surviving files would
// push the combined total past maxCombined, the entire batch is rejected and
// the draft is unchanged.
func (d *Draft) AddManualAttachments(files []models.FileAttachment, maxSize int64, maxCombined int) (AddResult, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	if maxCombined <= 0 {
		maxCombined = DefaultMaxAttachments
	}

	var result AddResult
	valid := make([]models.FileAttachment, 0, len(files))
	for _, f := range files {
		if f.Size > maxSize {
			result.Oversized = append(result.Oversized, f.Filename)
			continue
		}
		valid = append(valid, f)
	}

	total := len(d.EffectiveTemplateAttachments()) + len(d.ManualAttachments) + len(valid)
	if total > maxCombined {
		return result, newValidationError(CodeAttachmentLimitExceeded,
			fmt.Sprintf("at most %d attachments are allowed per message", maxCombined))
	}

	d.ManualAttachments = append(d.ManualAttachments, valid...)
	result.Added = len(valid)
	return result, nil
}

// RemoveManualAttachment removes by position. Out-of-range indices are a
// no-op.
func (d *Draft) RemoveManualAttachment(index int) {
	if index < 0 || index >= len(d.ManualAttachments) {
		return
	}
	d.ManualAttachments = append(d.ManualAttachments[:index], d.ManualAttachments[index+1:]...)
}

// RemoveTemplateAttachment excludes one of the template's attachments by
// filename. The template itself is never modified. Idempotent.
func (d *Draft) RemoveTemplateAttachment(filename string) {
	for _, name := range d.RemovedTemplateAttachmentNames {
		if name == filename {
			return
		}
	}
	d.RemovedTemplateAttachmentNames = append(d.RemovedTemplateAttachmentNames, filename)
}

// EffectiveTemplateAttachments returns the selected template's attachment
// list with user exclusions applied.
func (d *Draft) EffectiveTemplateAttachments() []models.TemplateAttachment {
	if d.SelectedTemplate == nil {
		return nil
	}
	removed := make(map[string]bool, len(d.RemovedTemplateAttachmentNames))
	for _, name := range d.RemovedTemplateAttachmentNames {
		removed[name] = true
	}
	var effective []models.TemplateAttachment
	for _, att := range d.SelectedTemplate.Attachments {
		if !removed[att.Filename] {
			effective = append(effective, att)
		}
	}
	return effective
}

// AttachmentCount returns the combined total counted against the cap.
func (d *Draft) AttachmentCount() int {
	return len(d.EffectiveTemplateAttachments()) + len(d.ManualAttachments)
}

func joinEmails(emails []string) string {
	out := ""
	for i, e := range emails {
		if i > 0 {
			out += ", "
		}
		out += e
	}
	return out
}
