package trivia

import (
	"fmt"
)

// ErrorCode classifies trivia engine failures.
type ErrorCode string

const (
	// ErrorUpstream covers LLM transport or availability failures, including
	// request timeouts. Never retried automatically.
	ErrorUpstream ErrorCode = "UPSTREAM_ERROR"

	// ErrorParseFailure marks an LLM reply that is not the expected JSON record.
	ErrorParseFailure ErrorCode = "PARSE_FAILURE"

	// ErrorMissingField marks a JSON record lacking the question or answer field.
	ErrorMissingField ErrorCode = "MISSING_FIELD"
)

// Error is a coded trivia engine error. Parse failures never leave the filter
// boundary; upstream errors degrade to a fixed user-visible reply in the
// dispatcher.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("trivia: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("trivia: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
