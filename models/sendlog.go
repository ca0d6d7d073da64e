package models

import "time"

// SendLog is a record of a previously dispatched message with its delivery
// counts. Logs are owned by the backend; this service fetches, displays and
// deletes them but never edits one.
type SendLog struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject"`
	SenderEmail     string    `json:"sender_email"`
	ToEmails        []string  `json:"to_emails"`
	CcEmails        []string  `json:"cc_emails"`
	TotalRecipients int       `json:"total_recipients"`
	TotalSuccessful int       `json:"total_successful"`
	TotalFailed     int       `json:"total_failed"`
	SentAt          time.Time `json:"sent_at"`
	MessageID       string    `json:"message_id"`
	ParentMessageID string    `json:"parent_message_id,omitempty"`
	EventTitle      string    `json:"event_title,omitempty"`
}
