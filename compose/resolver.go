package compose

import (
	"strconv"
	"strings"

	"placemail/models"
)

// RecipientRequest is the recipient portion of the outbound request, produced
// by resolving one of the three mutually exclusive recipient modes. It is a
// pure function of the draft; nothing here touches the network.
type RecipientRequest struct {
	Mode     models.RecipientMode
	ToEmails []string
	CcEmails []string

	// student_ids mode
	StudentIDs    []int
	RecipientType string

	// manual mode
	RecipientEmails []string

	// filter mode; only non-empty fields are serialized
	Filter *models.RecipientFilter
}

// ResolveRecipients validates the draft's recipient input and produces the
// normalized recipient request for the active mode.
func ResolveRecipients(d *Draft) (*RecipientRequest, error) {
	to := SplitEmails(d.ToEmails)
	if len(to) == 0 {
		return nil, newValidationError(CodeMissingToEmails, "at least one To address is required")
	}

	req := &RecipientRequest{
		Mode:     d.RecipientMode,
		ToEmails: to,
		CcEmails: SplitEmails(d.CcEmails),
	}

	switch d.RecipientMode {
	case models.ModeStudentIDs:
		ids := ParseStudentIDs(d.StudentIDs)
		if len(ids) == 0 {
			return nil, newValidationError(CodeNoValidStudentIDs, "no valid student IDs were provided")
		}
		req.StudentIDs = ids
		req.RecipientType = "registered"

	case models.ModeManual:
		emails := SplitEmails(d.ManualRecipientEmails)
		if len(emails) == 0 {
			return nil, newValidationError(CodeMissingRecipientEmails, "at least one recipient address is required")
		}
		req.RecipientEmails = emails

	default:
		// Filter mode needs no further validation: an all-empty filter is
		// legal and means "no restriction".
		filter := d.RecipientFilter
		req.Filter = &filter
	}

	return req, nil
}

// SplitEmails parses comma-separated address input into trimmed, non-empty
// entries. Order is preserved and duplicates are kept; the backend owns
// dedup policy.
func SplitEmails(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseStudentIDs parses comma-separated numeric input into an ordered set.
// Non-numeric tokens are dropped; repeated IDs are kept once, first position
// wins.
func ParseStudentIDs(raw string) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.Atoi(token)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
