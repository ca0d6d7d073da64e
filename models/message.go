package models

// RecipientMode selects which of the three mutually exclusive strategies
// determines who receives a message.
type RecipientMode string

const (
	ModeFilter     RecipientMode = "filter"
	ModeManual     RecipientMode = "manual"
	ModeStudentIDs RecipientMode = "student_ids"
)

// Valid reports whether m is one of the three known modes.
func (m RecipientMode) Valid() bool {
	switch m {
	case ModeFilter, ModeManual, ModeStudentIDs:
		return true
	}
	return false
}

// RecipientFilter narrows the default audience when sending in filter mode.
// An all-empty filter is legal and means "no restriction". Empty fields are
// omitted from the wire payload entirely, never sent as empty arrays.
type RecipientFilter struct {
	Branches        []string `json:"branch,omitempty"`
	BatchYears      []int    `json:"batch_year,omitempty"`
	PlacementStatus string   `json:"placement_status,omitempty"` // "placed" or "unplaced"
}

// IsZero reports whether no filter field is set.
func (f RecipientFilter) IsZero() bool {
	return len(f.Branches) == 0 && len(f.BatchYears) == 0 && f.PlacementStatus == ""
}

// FileAttachment is a user-supplied attachment held in the draft for the
// lifetime of the compose session. Content is never serialized to JSON;
// listings carry only filename, type and size.
type FileAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"`
}

// EmailResults is the delivery summary the backend reports after a send.
type EmailResults struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
