package compose

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"placemail/backend"
	"placemail/models"
	"placemail/utils"
)

// ErrSendInFlight is returned when a second send is attempted for a draft
// whose previous send has not resolved yet. Rejecting outright keeps a
// double-click from dispatching duplicates.
var ErrSendInFlight = errors.New("a send is already in progress for this draft")

// Sender dispatches one resolved message. *backend.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, req *backend.SendRequest) (*models.EmailResults, error)
}

// Drafts serializes access to per-session drafts. *storage.DraftStore
// satisfies it. The pipeline never holds a draft pointer outside fn; all
// reads and the post-success reset go through Update so concurrent draft
// edits from the same session cannot race a send.
type Drafts interface {
	Update(key string, fn func(*Draft) error) error
}

// Outcome is what a successful send reports back to the user.
type Outcome struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Pipeline validates, encodes and dispatches composed messages: exactly one
// backend call per invocation, draft reset on success, draft untouched on
// failure so the user can retry without re-entering anything.
type Pipeline struct {
	logger         *utils.Logger
	refreshTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]bool // draft key -> send pending
}

// NewPipeline creates a send pipeline.
func NewPipeline(logger *utils.Logger) *Pipeline {
	if logger == nil {
		logger = utils.Log
	}
	return &Pipeline{
		logger:         logger,
		refreshTimeout: 30 * time.Second,
		inFlight:       make(map[string]bool),
	}
}

// Send runs the full pipeline for the draft identified by key (one key per
// console session). sender is already bound to the session credential.
// refresh, if non-nil, is started in the background after a successful send;
// its result is not awaited and a failure is only logged.
//
// The wire request is encoded under the draft lock and is self-contained, so
// the lock is not held across the network call. The reset on success also
// runs under the lock, discarding any edits made while the send was pending.
func (p *Pipeline) Send(ctx context.Context, key string, drafts Drafts, sender Sender, refresh func(context.Context) error) (*Outcome, error) {
	if !p.begin(key) {
		return nil, ErrSendInFlight
	}
	defer p.end(key)

	var req *backend.SendRequest
	err := drafts.Update(key, func(draft *Draft) error {
		// Validation failures are terminal: no network call, no state change
		if strings.TrimSpace(draft.Title) == "" ||
			strings.TrimSpace(draft.Subject) == "" ||
			strings.TrimSpace(draft.Body) == "" {
			return newValidationError(CodeMissingRequiredFields, "title, subject and body are required")
		}

		recipients, err := ResolveRecipients(draft)
		if err != nil {
			return err
		}

		req = encodeSendRequest(draft, recipients)
		return nil
	})
	if err != nil {
		return nil, err
	}

	results, err := sender.Send(ctx, req)
	if err != nil {
		// Draft is left as-is for a retry
		return nil, err
	}

	_ = drafts.Update(key, func(draft *Draft) error {
		draft.Reset()
		return nil
	})

	if refresh != nil {
		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), p.refreshTimeout)
			defer cancel()
			if err := refresh(rctx); err != nil {
				p.logger.Warn("Background history refresh failed: %v", err)
			}
		}()
	}

	p.logger.Info("Message sent: title=%q successful=%d failed=%d",
		req.Title, results.Successful, results.Failed)

	return &Outcome{Successful: results.Successful, Failed: results.Failed}, nil
}

// encodeSendRequest maps the draft plus resolved recipients onto the wire
// request. Optional fields stay empty so the client omits them; an empty
// message_id means "let the backend generate one". Draft-owned slices are
// copied: the request outlives the draft lock.
func encodeSendRequest(d *Draft, r *RecipientRequest) *backend.SendRequest {
	req := &backend.SendRequest{
		Title:           d.Title,
		Subject:         d.Subject,
		Body:            d.Body,
		SenderEmail:     d.SenderEmail,
		ToEmails:        r.ToEmails,
		CcEmails:        r.CcEmails,
		Mode:            r.Mode,
		RecipientType:   r.RecipientType,
		StudentIDs:      r.StudentIDs,
		RecipientEmails: r.RecipientEmails,
		Filter:          r.Filter,
		MessageID:       d.MessageID,
		ParentMessageID: d.ParentMessageID,
		Attachments:     append([]models.FileAttachment(nil), d.ManualAttachments...),
	}
	if d.SelectedTemplate != nil {
		req.TemplateID = d.SelectedTemplate.ID
		req.RemovedTemplateAttachments = append([]string(nil), d.RemovedTemplateAttachmentNames...)
	}
	return req
}

func (p *Pipeline) begin(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[key] {
		return false
	}
	p.inFlight[key] = true
	return true
}

func (p *Pipeline) end(key string) {
	p.mu.Lock()
	delete(p.inFlight, key)
	p.mu.Unlock()
}
