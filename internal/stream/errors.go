package stream

import (
	"errors"
	"fmt"
)

var (
	ErrTurnInProgress = errors.New("a turn is already in progress")
	ErrEmptyInput     = errors.New("input is empty")
)

// TransportError ends a turn: the request could not be sent, the server
// refused it, or reading the response failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a candidate that is not a JSON object. The turn
// continues.
type DecodeError struct {
	Candidate string
	Reason    string
}

func (e *DecodeError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "invalid JSON"
	}
	return fmt.Sprintf("decode candidate %q: %s", abbreviate(e.Candidate), reason)
}

// SchemaError reports a JSON object that carries no string content field.
type SchemaError struct {
	Candidate string
	Reason    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("candidate %q: %s", abbreviate(e.Candidate), e.Reason)
}

const maxCandidateInError = 64

func abbreviate(s string) string {
	if len(s) <= maxCandidateInError {
		return s
	}
	return s[:maxCandidateInError] + "..."
}
