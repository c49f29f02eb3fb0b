package enrich

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal enrichment failure.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindFetchTimeout       Kind = "fetch_timeout"
	KindFetchUpstream      Kind = "fetch_upstream"
	KindConfig             Kind = "config"
	KindCompletionUpstream Kind = "completion_upstream"
	KindCompletionTimeout  Kind = "completion_timeout"
	KindEmptyReply         Kind = "empty_reply"
	KindExtraction         Kind = "extraction"
)

// Group is the coarse failure class callers branch on.
type Group string

const (
	GroupValidation Group = "ValidationError"
	GroupFetch      Group = "FetchError"
	GroupAI         Group = "AIError"
	GroupExtraction Group = "ExtractionError"
)

func (k Kind) Group() Group {
	switch k {
	case KindValidation:
		return GroupValidation
	case KindFetchTimeout, KindFetchUpstream:
		return GroupFetch
	case KindExtraction:
		return GroupExtraction
	default:
		return GroupAI
	}
}

// BadInput reports whether the failure was caused by the request itself.
func (k Kind) BadInput() bool { return k == KindValidation }

// Error is a terminal enrichment failure. Message is safe to show to users;
// Err carries the diagnostic cause and is never shown.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "enrich error"
	}
	if e.Err != nil {
		return fmt.Sprintf("enrich %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("enrich %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrNoRecord is the cause of KindExtraction failures.
var ErrNoRecord = errors.New("no structured record in model reply")

// KindOf returns the Kind of an *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// UserMessage returns the user-facing message for err. Errors that did not
// come from the pipeline get a generic message.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Enrichment failed"
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
