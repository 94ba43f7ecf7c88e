package services

import "fmt"

// Precondition error codes. Precondition failures happen before any
// state mutation and are never retried automatically.
const (
	CodeUnauthenticated   = "unauthenticated"
	CodeStoreUnavailable  = "store_unavailable"
	CodeMissingCredential = "missing_ai_credential"
	CodeNotFound          = "skill_not_found"
	CodeNotOwner          = "not_owner"
	CodeInvalidTransition = "invalid_status_transition"
	CodeContentUnchanged  = "content_unchanged"
	CodeInvalidInput      = "invalid_input"
)

// PreconditionError is rejected input or state: no side effects
// occurred.
type PreconditionError struct {
	Code    string
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func precondition(code, format string, args ...any) *PreconditionError {
	return &PreconditionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PipelineError is a failure after the submission pipeline started
// mutating state. The skill is parked in pending_review with a
// status_message and the caller may resubmit.
type PipelineError struct {
	Message   string
	Retryable bool
	Err       error
}

func (e *PipelineError) Error() string {
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
