package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"placemail/models"
)

// stringList decodes backend fields stored either as a native array or as a
// comma-separated string. Normalization happens here, at the fetch boundary.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = trimNonEmpty(list)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = trimNonEmpty(strings.Split(raw, ","))
	return nil
}

type rawSendLog struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	SenderEmail     string     `json:"sender_email"`
	ToEmails        stringList `json:"to_emails"`
	CcEmails        stringList `json:"cc_emails"`
	TotalRecipients int        `json:"total_recipients"`
	TotalSuccessful int        `json:"total_successful"`
	TotalFailed     int        `json:"total_failed"`
	SentAt          time.Time  `json:"sent_at"`
	MessageID       string     `json:"message_id"`
	ParentMessageID string     `json:"parent_message_id"`
	EventTitle      string     `json:"event_title"`
}

type logsResponse struct {
	Success bool         `json:"success"`
	Logs    []rawSendLog `json:"logs"`
}

// ListLogs fetches a page of send history, newest first.
func (c *Client) ListLogs(ctx context.Context, page models.PageRequest) ([]models.SendLog, error) {
	path := fmt.Sprintf("/emails/email-logs?page=%d&limit=%d", page.Page, page.Limit)
	var resp logsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: 200, Message: "log listing reported failure"}
	}

	logs := make([]models.SendLog, 0, len(resp.Logs))
	for _, rl := range resp.Logs {
		logs = append(logs, models.SendLog{
			ID:              rl.ID,
			Title:           rl.Title,
			Subject:         rl.Subject,
			SenderEmail:     rl.SenderEmail,
			ToEmails:        rl.ToEmails,
			CcEmails:        rl.CcEmails,
			TotalRecipients: rl.TotalRecipients,
			TotalSuccessful: rl.TotalSuccessful,
			TotalFailed:     rl.TotalFailed,
			SentAt:          rl.SentAt,
			MessageID:       rl.MessageID,
			ParentMessageID: rl.ParentMessageID,
			EventTitle:      rl.EventTitle,
		})
	}
	return logs, nil
}

// DeleteLog removes one send-history entry by id.
func (c *Client) DeleteLog(ctx context.Context, id string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.delete(ctx, "/emails/email-logs/"+id, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Status: 200, Message: resp.Error}
	}
	return nil
}

// SendRequest is the fully resolved outbound message the compose pipeline
// hands to the backend. Exactly one of StudentIDs / RecipientEmails / Filter
// is populated, matching Mode.
type SendRequest struct {
	Title       string
	Subject     string
	Body        string
	SenderEmail string
	ToEmails    []string
	CcEmails    []string

	Mode            models.RecipientMode
	RecipientType   string // student_ids mode only, defaults to "registered"
	StudentIDs      []int
	RecipientEmails []string
	Filter          *models.RecipientFilter

	MessageID       string
	ParentMessageID string

	TemplateID                 string
	RemovedTemplateAttachments []string

	Attachments []models.FileAttachment
}

type sendResponse struct {
	Success      bool                `json:"success"`
	Error        string              `json:"error"`
	EmailResults models.EmailResults `json:"emailResults"`
}

// Send dispatches one composed message. Student-ID sends go to the dedicated
// students endpoint; filter and manual sends share the general one. Both use
// the same multipart encoding so attachment binaries ride along either way.
func (c *Client) Send(ctx context.Context, req *SendRequest) (*models.EmailResults, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := writeSendForm(w, req); err != nil {
		return nil, &APIError{Err: fmt.Errorf("encode send form: %w", err)}
	}
	if err := w.Close(); err != nil {
		return nil, &APIError{Err: fmt.Errorf("encode send form: %w", err)}
	}

	path := "/emails/email-logs/send"
	if req.Mode == models.ModeStudentIDs {
		path = "/emails/email-logs/send/students"
	}

	var resp sendResponse
	if err := c.do(ctx, http.MethodPost, path, &body, w.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &APIError{Status: 200, Message: resp.Error}
	}
	return &resp.EmailResults, nil
}

// writeSendForm lays the request out as form fields. Optional fields are
// omitted entirely when empty; an empty string would make the backend treat
// them as set.
func writeSendForm(w *multipart.Writer, req *SendRequest) error {
	fields := map[string]string{
		"title":   req.Title,
		"subject": req.Subject,
		"body":    req.Body,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return err
		}
	}

	if err := writeJSONField(w, "to_emails", req.ToEmails); err != nil {
		return err
	}
	if req.SenderEmail != "" {
		if err := w.WriteField("sender_email", req.SenderEmail); err != nil {
			return err
		}
	}
	if len(req.CcEmails) > 0 {
		if err := writeJSONField(w, "cc_emails", req.CcEmails); err != nil {
			return err
		}
	}
	if req.MessageID != "" {
		if err := w.WriteField("message_id", req.MessageID); err != nil {
			return err
		}
	}
	if req.ParentMessageID != "" {
		if err := w.WriteField("parent_message_id", req.ParentMessageID); err != nil {
			return err
		}
	}

	switch req.Mode {
	case models.ModeStudentIDs:
		if err := writeJSONField(w, "student_ids", req.StudentIDs); err != nil {
			return err
		}
		recipientType := req.RecipientType
		if recipientType == "" {
			recipientType = "registered"
		}
		if err := w.WriteField("recipient_type", recipientType); err != nil {
			return err
		}
	case models.ModeManual:
		if err := writeJSONField(w, "recipient_emails", req.RecipientEmails); err != nil {
			return err
		}
	case models.ModeFilter:
		filter := models.RecipientFilter{}
		if req.Filter != nil {
			filter = *req.Filter
		}
		if err := writeJSONField(w, "recipient_filter", filter); err != nil {
			return err
		}
	}

	// The backend only needs the template reference when the user excluded
	// some of its attachments; otherwise the template's own list applies.
	if req.TemplateID != "" && len(req.RemovedTemplateAttachments) > 0 {
		if err := w.WriteField("template_id", req.TemplateID); err != nil {
			return err
		}
		if err := writeJSONField(w, "removed_template_attachments", req.RemovedTemplateAttachments); err != nil {
			return err
		}
	}

	for _, att := range req.Attachments {
		part, err := w.CreateFormFile("attachments", att.Filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(att.Content); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONField(w *multipart.Writer, name string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return w.WriteField(name, string(data))
}
