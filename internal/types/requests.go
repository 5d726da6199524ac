package types

import (
	"github.com/go-playground/validator/v10"
)

// SubmitAnswerRequest is the body of an answer submission.
type SubmitAnswerRequest struct {
	Index  int    `json:"index" validate:"min=0"`
	Answer string `json:"answer" validate:"max=2000"`
}

// ProvideFieldRequest carries the candidate's reply to a missing-field prompt.
type ProvideFieldRequest struct {
	Value string `json:"value" validate:"required,max=200"`
}

// Validate validates the SubmitAnswerRequest using the validator.
func (r *SubmitAnswerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ProvideFieldRequest using the validator.
func (r *ProvideFieldRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
