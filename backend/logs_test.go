package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"placemail/models"
)

func sendHandler(t *testing.T, wantPath string, capture *map[string][]string, files *[]string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("path = %s, want %s", r.URL.Path, wantPath)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		*capture = r.MultipartForm.Value
		for _, fh := range r.MultipartForm.File["attachments"] {
			*files = append(*files, fh.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "emailResults": {"successful": 2, "failed": 0}}`))
	})
}

func formValue(form map[string][]string, name string) (string, bool) {
	vals, ok := form[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func TestSend_ManualMode(t *testing.T) {
	var form map[string][]string
	var files []string
	client, _ := testClient(t, sendHandler(t, "/emails/email-logs/send", &form, &files))

	req := &SendRequest{
		Title:           "Drive reminder",
		Subject:         "TCS drive",
		Body:            "<p>tomorrow</p>",
		ToEmails:        []string{"a@x.com"},
		Mode:            models.ModeManual,
		RecipientEmails: []string{"b@x.com", "c@x.com"},
	}
	results, err := client.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.Successful != 2 || results.Failed != 0 {
		t.Errorf("results = %+v", results)
	}

	if got, _ := formValue(form, "recipient_emails"); got != `["b@x.com","c@x.com"]` {
		t.Errorf("recipient_emails = %q", got)
	}
	if got, _ := formValue(form, "to_emails"); got != `["a@x.com"]` {
		t.Errorf("to_emails = %q", got)
	}
	for _, absent := range []string{"sender_email", "cc_emails", "message_id", "parent_message_id", "template_id", "student_ids", "recipient_filter"} {
		if _, ok := formValue(form, absent); ok {
			t.Errorf("field %s present, want omitted", absent)
		}
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}

func TestSend_FilterMode(t *testing.T) {
	var form map[string][]string
	var files []string
	client, _ := testClient(t, sendHandler(t, "/emails/email-logs/send", &form, &files))

	req := &SendRequest{
		Title:    "Placement update",
		Subject:  "s",
		Body:     "b",
		ToEmails: []string{"cell@college.edu"},
		Mode:     models.ModeFilter,
		Filter: &models.RecipientFilter{
			Branches:   []string{"CSE"},
			BatchYears: []int{2025},
		},
	}
	if _, err := client.Send(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Unset filter dimensions must not appear in the payload at all
	if got, _ := formValue(form, "recipient_filter"); got != `{"branch":["CSE"],"batch_year":[2025]}` {
		t.Errorf("recipient_filter = %q", got)
	}
}

func TestSend_StudentIDMode(t *testing.T) {
	var form map[string][]string
	var files []string
	client, _ := testClient(t, sendHandler(t, "/emails/email-logs/send/students", &form, &files))

	req := &SendRequest{
		Title:      "Shortlist",
		Subject:    "s",
		Body:       "b",
		ToEmails:   []string{"cell@college.edu"},
		Mode:       models.ModeStudentIDs,
		StudentIDs: []int{12, 7, 3},
		MessageID:  "msg-9",
	}
	if _, err := client.Send(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := formValue(form, "student_ids"); got != `[12,7,3]` {
		t.Errorf("student_ids = %q", got)
	}
	if got, _ := formValue(form, "recipient_type"); got != "registered" {
		t.Errorf("recipient_type = %q", got)
	}
	if got, _ := formValue(form, "message_id"); got != "msg-9" {
		t.Errorf("message_id = %q", got)
	}
}

func TestSend_TemplateExclusionsAndAttachments(t *testing.T) {
	var form map[string][]string
	var files []string
	client, _ := testClient(t, sendHandler(t, "/emails/email-logs/send", &form, &files))

	req := &SendRequest{
		Title:                      "t",
		Subject:                    "s",
		Body:                       "b",
		ToEmails:                   []string{"a@x.com"},
		Mode:                       models.ModeManual,
		RecipientEmails:            []string{"a@x.com"},
		TemplateID:                 "tmpl-1",
		RemovedTemplateAttachments: []string{"old-jd.pdf"},
		Attachments: []models.FileAttachment{
			{Filename: "notice.pdf", ContentType: "application/pdf", Content: []byte("pdfdata")},
		},
	}
	if _, err := client.Send(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := formValue(form, "template_id"); got != "tmpl-1" {
		t.Errorf("template_id = %q", got)
	}
	if got, _ := formValue(form, "removed_template_attachments"); got != `["old-jd.pdf"]` {
		t.Errorf("removed_template_attachments = %q", got)
	}
	if len(files) != 1 || files[0] != "notice.pdf" {
		t.Errorf("files = %v", files)
	}
}

func TestSend_TemplateWithoutExclusionsOmitsReference(t *testing.T) {
	var form map[string][]string
	var files []string
	client, _ := testClient(t, sendHandler(t, "/emails/email-logs/send", &form, &files))

	req := &SendRequest{
		Title:           "t",
		Subject:         "s",
		Body:            "b",
		ToEmails:        []string{"a@x.com"},
		Mode:            models.ModeManual,
		RecipientEmails: []string{"a@x.com"},
		TemplateID:      "tmpl-1",
	}
	if _, err := client.Send(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := formValue(form, "template_id"); ok {
		t.Error("template_id present without exclusions")
	}
}

func TestSend_BackendRejection(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "smtp pool exhausted"}`))
	}))

	req := &SendRequest{
		Title: "t", Subject: "s", Body: "b",
		ToEmails: []string{"a@x.com"},
		Mode:     models.ModeManual, RecipientEmails: []string{"a@x.com"},
	}
	_, err := client.Send(context.Background(), req)
	var aerr *APIError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if aerr.Message != "smtp pool exhausted" {
		t.Errorf("message = %q", aerr.Message)
	}
}

func TestListLogs_NormalizesRecipientLists(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.RawQuery; got != "page=2&limit=10" {
			t.Errorf("query = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"logs": [
				{"id": "l1", "title": "a", "to_emails": ["x@x.com", "y@x.com"], "cc_emails": []},
				{"id": "l2", "title": "b", "to_emails": "x@x.com, y@x.com", "cc_emails": "dean@college.edu"}
			]
		}`))
	}))

	logs, err := client.ListLogs(context.Background(), models.PageRequest{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len = %d", len(logs))
	}
	if len(logs[0].ToEmails) != 2 || logs[0].ToEmails[1] != "y@x.com" {
		t.Errorf("array to_emails = %v", logs[0].ToEmails)
	}
	if len(logs[1].ToEmails) != 2 || logs[1].ToEmails[1] != "y@x.com" {
		t.Errorf("string to_emails = %v", logs[1].ToEmails)
	}
	if len(logs[1].CcEmails) != 1 || logs[1].CcEmails[0] != "dean@college.edu" {
		t.Errorf("string cc_emails = %v", logs[1].CcEmails)
	}
}

func TestDeleteLog(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"success": true}`))
	}))

	if err := client.DeleteLog(context.Background(), "l7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/emails/email-logs/l7" {
		t.Errorf("got %s %s", gotMethod, gotPath)
	}
}
