// Package server provides the HTTP API for the interview coach.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/types"
)

// ErrNotOwner is returned when a request would act on a session owned by
// another identity.
var ErrNotOwner = errors.New("session belongs to another candidate")

// ErrCandidateNotFound indicates no archived record matches the requested email.
var ErrCandidateNotFound = errors.New("candidate not found")

// ErrValidation indicates a malformed request body or query.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalid     *types.InvalidInputError
		unsupported *types.UnsupportedFormatError
		transition  *types.TransitionError
		collab      *types.CollaboratorError
		validation  *ErrValidation
		fieldErrs   validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusOK
	// A collaborator failure may wrap the validation error that rejected its payload.
	case errors.As(err, &collab):
		return http.StatusBadGateway
	case errors.As(err, &validation), errors.As(err, &invalid), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingestion.ErrNoText), errors.Is(err, ingestion.ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transition), errors.Is(err, types.ErrStaleSession), errors.Is(err, interview.ErrAnswerClosed):
		return http.StatusConflict
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrCandidateNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
