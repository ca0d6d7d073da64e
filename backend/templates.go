package backend

import (
	"context"
	"encoding/json"
	"strings"

	"placemail/models"
)

// rawTemplate mirrors the template rows as the backend actually stores them.
// Older rows keep cc_emails as a bare string and attachments as a
// JSON-encoded string; newer rows use native arrays. Both forms are
// normalized here, once, so nothing downstream ever sniffs formats again.
type rawTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	SenderEmail string          `json:"sender_email"`
	CcEmails    json.RawMessage `json:"cc_emails"`
	Attachments json.RawMessage `json:"attachments"`
}

type rawTemplateGroup struct {
	Category  string        `json:"category"`
	Templates []rawTemplate `json:"templates"`
}

type templatesResponse struct {
	Success          bool               `json:"success"`
	GroupedTemplates []rawTemplateGroup `json:"groupedTemplates"`
}

// ListTemplates fetches all message templates grouped by category.
func (c *Client) ListTemplates(ctx context.Context) ([]models.TemplateGroup, error) {
	var resp templatesResponse
	if err := c.get(ctx, "/emails/email-templates", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: 200, Message: "template listing reported failure"}
	}

	groups := make([]models.TemplateGroup, 0, len(resp.GroupedTemplates))
	for _, rg := range resp.GroupedTemplates {
		group := models.TemplateGroup{Category: rg.Category}
		for _, rt := range rg.Templates {
			group.Templates = append(group.Templates, c.normalizeTemplate(rg.Category, rt))
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (c *Client) normalizeTemplate(category string, rt rawTemplate) models.Template {
	return models.Template{
		ID:          rt.ID,
		Name:        rt.Name,
		Category:    category,
		Subject:     rt.Subject,
		Body:        rt.Body,
		SenderEmail: rt.SenderEmail,
		CcEmails:    c.normalizeCcEmails(rt.ID, rt.CcEmails),
		Attachments: c.normalizeAttachments(rt.ID, rt.Attachments),
	}
}

// normalizeCcEmails accepts a native string array, a JSON-array-in-a-string,
// or a bare address string. A string that fails to parse as JSON degrades to
// a single address rather than failing the whole template.
func (c *Client) normalizeCcEmails(templateID string, raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return trimNonEmpty(list)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logger.Warn("Template %s: unusable cc_emails value, ignoring", templateID)
		return nil
	}
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return trimNonEmpty(list)
	}
	if s = strings.TrimSpace(s); s != "" {
		return []string{s}
	}
	return nil
}

// normalizeAttachments accepts a native attachment array or a JSON-encoded
// string. A string that fails to parse yields an empty list; the template is
// still usable without its attachments.
func (c *Client) normalizeAttachments(templateID string, raw json.RawMessage) []models.TemplateAttachment {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []models.TemplateAttachment
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logger.Warn("Template %s: unusable attachments value, dropping list", templateID)
		return nil
	}
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		c.logger.Warn("Template %s: malformed attachment list, dropping: %v", templateID, err)
		return nil
	}
	return list
}

func trimNonEmpty(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
