package models

// Template is a reusable message skeleton owned by the placement backend and
// read-only to this service. CC addresses and the attachment list arrive from
// the backend in more than one historical encoding (bare string vs. array,
// JSON-string-encoded attachment lists); the backend client normalizes them
// once at the fetch boundary, so downstream code only ever sees these shapes.
type Template struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Category    string               `json:"category"`
	Subject     string               `json:"subject"`
	Body        string               `json:"body"`
	SenderEmail string               `json:"sender_email"`
	CcEmails    []string             `json:"cc_emails"`
	Attachments []TemplateAttachment `json:"attachments"`
}

// TemplateAttachment describes a file stored alongside a template.
type TemplateAttachment struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// TemplateGroup is one category bucket as returned by the template listing.
type TemplateGroup struct {
	Category  string     `json:"category"`
	Templates []Template `json:"templates"`
}
