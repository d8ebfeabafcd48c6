package lifecycle

import "fmt"

// ValidationError covers missing, malformed, or out-of-enum request fields.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// BlockedContentError is raised when the content filter matches. The
// offending term is kept for server-side logging but the caller only sees
// a generic message, so the lexicon cannot be probed.
type BlockedContentError struct {
	Field string
	Term  string
}

func (e *BlockedContentError) Error() string {
	return "inappropriate content detected, please revise and resubmit"
}

// NotFoundError reports a missing row or a repeated disposition.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found or already processed" }
