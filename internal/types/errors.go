package types

import (
	"errors"
	"fmt"
)

// ErrStaleSession is returned when an asynchronous completion targets a session
// that has been reset or replaced since the call started. Callers treat it as a no-op.
var ErrStaleSession = errors.New("session has been replaced")

// InvalidInputError is a synchronous rejection of malformed input. No state changes.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid input in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// UnsupportedFormatError is returned for résumé or job-description files of an unrecognized type.
type UnsupportedFormatError struct {
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q", e.MimeType)
}

// CollaboratorError wraps a failure of a remote collaborator: a transport error,
// a malformed response or a payload that violates its contract.
type CollaboratorError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *CollaboratorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Cause
}

// TransitionError is returned when a command is not accepted in the current status.
type TransitionError struct {
	From    string
	Command string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("command %s not accepted in status %s", e.Command, e.From)
}
