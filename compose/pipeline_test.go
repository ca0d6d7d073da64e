package compose

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"placemail/backend"
	"placemail/models"
)

type fakeSender struct {
	mu      sync.Mutex
	calls   int
	lastReq *backend.SendRequest

	results *models.EmailResults
	err     error

	entered chan struct{} // closed when Send is first entered, if set
	release chan struct{} // Send blocks on this, if set
}

func (f *fakeSender) Send(ctx context.Context, req *backend.SendRequest) (*models.EmailResults, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	first := f.calls == 1
	f.mu.Unlock()

	if f.entered != nil && first {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	return f.results, f.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// draftMap is a minimal Drafts implementation for pipeline tests.
type draftMap struct {
	mu sync.Mutex
	m  map[string]*Draft
}

func newDraftMap() *draftMap {
	return &draftMap{m: make(map[string]*Draft)}
}

func (s *draftMap) Update(key string, fn func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.m[key]
	if !ok {
		d = NewDraft()
		s.m[key] = d
	}
	return fn(d)
}

func (s *draftMap) snapshot(key string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.m[key]; ok {
		return *d
	}
	return *NewDraft()
}

func validDraft() *Draft {
	return &Draft{
		Title:                 "Drive announcement",
		Subject:               "Acme drive",
		Body:                  "<p>Details inside</p>",
		ToEmails:              "a@x.com",
		RecipientMode:         models.ModeManual,
		ManualRecipientEmails: "b@x.com, c@x.com",
	}
}

func draftsWith(key string, d *Draft) *draftMap {
	s := newDraftMap()
	s.m[key] = d
	return s
}

func TestSend_ValidationRejectsWithoutNetworkCall(t *testing.T) {
	p := NewPipeline(nil)
	sender := &fakeSender{results: &models.EmailResults{}}

	draft := validDraft()
	draft.Subject = ""
	drafts := draftsWith("s1", draft)

	_, err := p.Send(context.Background(), "s1", drafts, sender, nil)
	verr, ok := err.(*ValidationError)
	if !ok || verr.Code != CodeMissingRequiredFields {
		t.Fatalf("expected missing_required_fields, got %v", err)
	}
	if sender.callCount() != 0 {
		t.Errorf("validation failure must not reach the network")
	}
	if got := drafts.snapshot("s1"); got.ToEmails != "a@x.com" {
		t.Errorf("rejected send must not mutate the draft")
	}
}

func TestSend_SuccessResetsDraftAndRefreshes(t *testing.T) {
	p := NewPipeline(nil)
	sender := &fakeSender{results: &models.EmailResults{Successful: 2, Failed: 0}}

	refreshed := make(chan struct{})
	refresh := func(ctx context.Context) error {
		close(refreshed)
		return nil
	}

	drafts := draftsWith("s1", validDraft())
	outcome, err := p.Send(context.Background(), "s1", drafts, sender, refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Successful != 2 || outcome.Failed != 0 {
		t.Errorf("outcome = %+v, want 2/0", outcome)
	}

	got := drafts.snapshot("s1")
	if got.Title != "" || got.Subject != "" || got.ManualRecipientEmails != "" {
		t.Errorf("draft not reset after success: %+v", got)
	}
	if got.RecipientMode != models.ModeFilter {
		t.Errorf("reset draft mode = %q, want filter", got.RecipientMode)
	}

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Error("background refresh never ran")
	}
}

func TestSend_EncodesManualRecipients(t *testing.T) {
	p := NewPipeline(nil)
	sender := &fakeSender{results: &models.EmailResults{Successful: 2}}

	drafts := draftsWith("s1", validDraft())
	if _, err := p.Send(context.Background(), "s1", drafts, sender, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := sender.lastReq
	if req.Mode != models.ModeManual {
		t.Errorf("Mode = %q, want manual", req.Mode)
	}
	if len(req.RecipientEmails) != 2 || req.RecipientEmails[0] != "b@x.com" || req.RecipientEmails[1] != "c@x.com" {
		t.Errorf("RecipientEmails = %v", req.RecipientEmails)
	}
	if req.TemplateID != "" {
		t.Errorf("TemplateID must be empty without a selection")
	}
	if req.MessageID != "" {
		t.Errorf("MessageID must stay empty so the backend generates one")
	}
}

func TestSend_FailureLeavesDraftUntouched(t *testing.T) {
	p := NewPipeline(nil)
	sender := &fakeSender{err: &backend.APIError{Status: 500, Message: "smtp pool exhausted"}}

	drafts := draftsWith("s1", validDraft())
	_, err := p.Send(context.Background(), "s1", drafts, sender, nil)
	if err == nil {
		t.Fatal("expected an error")
	}

	var aerr *backend.APIError
	if !errors.As(err, &aerr) || aerr.Message != "smtp pool exhausted" {
		t.Errorf("expected the backend error to surface, got %v", err)
	}
	got := drafts.snapshot("s1")
	if got.Title != "Drive announcement" || got.ManualRecipientEmails != "b@x.com, c@x.com" {
		t.Errorf("failed send must leave the draft intact for retry: %+v", got)
	}
}

func TestSend_InFlightGuard(t *testing.T) {
	p := NewPipeline(nil)
	sender := &fakeSender{
		results: &models.EmailResults{Successful: 1},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	drafts := draftsWith("s1", validDraft())
	drafts.m["s2"] = validDraft()

	done := make(chan error, 1)
	go func() {
		_, err := p.Send(context.Background(), "s1", drafts, sender, nil)
		done <- err
	}()

	<-sender.entered

	// Second send for the same draft key while the first is pending
	_, err := p.Send(context.Background(), "s1", drafts, sender, nil)
	if !errors.Is(err, ErrSendInFlight) {
		t.Errorf("expected ErrSendInFlight, got %v", err)
	}

	// A different session is unaffected
	other := &fakeSender{results: &models.EmailResults{Successful: 1}}
	if _, err := p.Send(context.Background(), "s2", drafts, other, nil); err != nil {
		t.Errorf("unrelated session blocked: %v", err)
	}

	close(sender.release)
	if err := <-done; err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	if sender.callCount() != 1 {
		t.Errorf("duplicate send reached the network: %d calls", sender.callCount())
	}

	// Guard releases after completion
	again := &fakeSender{results: &models.EmailResults{Successful: 1}}
	drafts.m["s1"] = validDraft()
	if _, err := p.Send(context.Background(), "s1", drafts, again, nil); err != nil {
		t.Errorf("send after completion rejected: %v", err)
	}
}

// Draft edits arriving while a send is pending must not share unsynchronized
// state with the pipeline: encoding happens under the draft lock before the
// network call, and the reset afterwards goes through the store as well.
func TestSend_ConcurrentDraftEditsDuringSend(t *testing.T) {
	p := NewPipeline(nil)
	sender := &fakeSender{
		results: &models.EmailResults{Successful: 1},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	drafts := draftsWith("s1", validDraft())

	done := make(chan error, 1)
	go func() {
		_, err := p.Send(context.Background(), "s1", drafts, sender, nil)
		done <- err
	}()

	<-sender.entered

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = drafts.Update("s1", func(d *Draft) error {
				d.Subject = "edited while sending"
				d.ManualAttachments = append(d.ManualAttachments, models.FileAttachment{Filename: "late.pdf"})
				return nil
			})
		}()
	}
	wg.Wait()

	close(sender.release)
	if err := <-done; err != nil {
		t.Fatalf("send failed: %v", err)
	}

	// The request was encoded before the edits and must not reflect them
	if len(sender.lastReq.Attachments) != 0 {
		t.Errorf("request picked up attachments added mid-send: %v", sender.lastReq.Attachments)
	}

	// Mid-send edits are discarded by the post-success reset
	got := drafts.snapshot("s1")
	if got.Subject != "" || len(got.ManualAttachments) != 0 {
		t.Errorf("draft not reset after send: %+v", got)
	}
}
