package compose

// Validation codes surfaced to the console UI. Handlers map them to
// localized notification messages.
const (
	CodeMissingRequiredFields   = "missing_required_fields"
	CodeMissingToEmails         = "missing_to_emails"
	CodeNoValidStudentIDs       = "no_valid_student_ids"
	CodeMissingRecipientEmails  = "missing_recipient_emails"
	CodeAttachmentLimitExceeded = "attachment_limit_exceeded"
)

// ValidationError is a user-correctable failure caught before any network
// call. It is never logged as a system fault; the user fixes the draft and
// retries.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func newValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
