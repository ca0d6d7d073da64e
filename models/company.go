package models

import "time"

// Company is a row on the batch company screen. Companies and their open
// positions live in the backend; the console lists them, deletes them, and
// lets the user hand a set of registered students off to the compose view.
type Company struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	BatchID     string     `json:"batch_id"`
	Website     string     `json:"website,omitempty"`
	ContactMail string     `json:"contact_email,omitempty"`
	VisitDate   *time.Time `json:"visit_date,omitempty"`
	Positions   []Position `json:"positions,omitempty"`
}

// Position is an open role offered by a company.
type Position struct {
	ID        string  `json:"id"`
	CompanyID string  `json:"company_id"`
	Title     string  `json:"title"`
	CTC       float64 `json:"ctc,omitempty"`
	Openings  int     `json:"openings,omitempty"`
}
