package compose

import (
	"reflect"
	"testing"

	"placemail/models"
)

func makeFiles(names ...string) []models.FileAttachment {
	files := make([]models.FileAttachment, len(names))
	for i, name := range names {
		files[i] = models.FileAttachment{Filename: name, Size: 100}
	}
	return files
}

func templateWithAttachments(names ...string) models.Template {
	t := models.Template{ID: "t1", Name: "Placement Drive", Subject: "Drive", Body: "<p>Hi</p>"}
	for _, name := range names {
		t.Attachments = append(t.Attachments, models.TemplateAttachment{Filename: name, Size: 10})
	}
	return t
}

func TestAddManualAttachments_Cap(t *testing.T) {
	d := NewDraft()
	d.SelectTemplate(templateWithAttachments("a.pdf", "b.pdf", "c.pdf"))

	// 3 template + 2 manual = 5, at the cap
	result, err := d.AddManualAttachments(makeFiles("x.pdf", "y.pdf"), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("Added = %d, want 2", result.Added)
	}

	// One more would exceed the cap: whole batch rejected, nothing added
	_, err = d.AddManualAttachments(makeFiles("z.pdf"), 0, 0)
	verr, ok := err.(*ValidationError)
	if !ok || verr.Code != CodeAttachmentLimitExceeded {
		t.Fatalf("expected attachment_limit_exceeded, got %v", err)
	}
	if len(d.ManualAttachments) != 2 {
		t.Errorf("ManualAttachments = %d entries, want 2 (batch must not be partially applied)", len(d.ManualAttachments))
	}

	// Retrying the same over-cap batch is an idempotent no-op
	_, err = d.AddManualAttachments(makeFiles("z.pdf"), 0, 0)
	if err == nil {
		t.Fatal("expected second over-cap attempt to fail too")
	}
	if len(d.ManualAttachments) != 2 {
		t.Errorf("ManualAttachments changed on rejected retry")
	}
}

func TestAddManualAttachments_OversizedFilteredIndividually(t *testing.T) {
	d := NewDraft()
	files := []models.FileAttachment{
		{Filename: "small.pdf", Size: 100},
		{Filename: "huge.iso", Size: 11 << 20},
	}

	result, err := d.AddManualAttachments(files, DefaultMaxAttachmentSize, DefaultMaxAttachments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("Added = %d, want 1", result.Added)
	}
	if !reflect.DeepEqual(result.Oversized, []string{"huge.iso"}) {
		t.Errorf("Oversized = %v, want [huge.iso]", result.Oversized)
	}
	if len(d.ManualAttachments) != 1 || d.ManualAttachments[0].Filename != "small.pdf" {
		t.Errorf("draft attachments = %+v", d.ManualAttachments)
	}
}

func TestRemoveTemplateAttachment_Idempotent(t *testing.T) {
	d := NewDraft()
	d.SelectTemplate(templateWithAttachments("a.pdf", "b.pdf"))

	d.RemoveTemplateAttachment("a.pdf")
	once := d.EffectiveTemplateAttachments()

	d.RemoveTemplateAttachment("a.pdf")
	twice := d.EffectiveTemplateAttachments()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("removal not idempotent: %v vs %v", once, twice)
	}
	if len(twice) != 1 || twice[0].Filename != "b.pdf" {
		t.Errorf("effective = %v, want [b.pdf]", twice)
	}
	if len(d.RemovedTemplateAttachmentNames) != 1 {
		t.Errorf("exclusion set = %v, want a single entry", d.RemovedTemplateAttachmentNames)
	}
}

func TestRemoveManualAttachment_OutOfRangeIsNoop(t *testing.T) {
	d := NewDraft()
	if _, err := d.AddManualAttachments(makeFiles("a.pdf"), 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.RemoveManualAttachment(-1)
	d.RemoveManualAttachment(5)
	if len(d.ManualAttachments) != 1 {
		t.Errorf("out-of-range removal changed the draft")
	}

	d.RemoveManualAttachment(0)
	if len(d.ManualAttachments) != 0 {
		t.Errorf("in-range removal did not apply")
	}
}

func TestTemplateSelection_PrefillOnly(t *testing.T) {
	d := NewDraft()
	tpl := templateWithAttachments()
	tpl.SenderEmail = "cell@college.edu"
	tpl.CcEmails = []string{"dean@college.edu"}
	d.SelectTemplate(tpl)

	// Manual edit after selection does not clear the selection
	d.Subject = "Edited subject"
	if d.SelectedTemplate == nil {
		t.Fatal("selection lost after manual edit")
	}

	d.DeselectTemplate()
	if d.Subject != "" || d.Title != "" || d.Body != "" {
		t.Errorf("deselect must blank title/subject/body, got %q/%q/%q", d.Title, d.Subject, d.Body)
	}
	if d.SenderEmail != "cell@college.edu" {
		t.Errorf("deselect must not revert sender, got %q", d.SenderEmail)
	}
	if d.CcEmails != "dean@college.edu" {
		t.Errorf("deselect must not revert cc, got %q", d.CcEmails)
	}
	if d.RemovedTemplateAttachmentNames != nil {
		t.Errorf("deselect must clear the exclusion set")
	}
}

func TestSelectTemplate_KeepsManualAttachments(t *testing.T) {
	d := NewDraft()
	if _, err := d.AddManualAttachments(makeFiles("notes.pdf"), 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.SelectTemplate(templateWithAttachments("t.pdf"))
	if len(d.ManualAttachments) != 1 {
		t.Errorf("template selection must not touch manual attachments")
	}
	if d.AttachmentCount() != 2 {
		t.Errorf("AttachmentCount = %d, want 2", d.AttachmentCount())
	}
}
