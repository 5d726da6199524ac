// Package profile implements the candidate profile partition: identity fields,
// extracted document text and the dialogue transcript.
package profile

import "github.com/jonathan/interview-coach/internal/types"

// Status tracks résumé processing.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Profile is the candidate's identity and documents. Only file metadata and
// extracted text are kept; raw file contents never enter the profile.
type Profile struct {
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	ResumeText         string              `json:"resume_text"`
	JobDescriptionText string              `json:"job_description_text,omitempty"`
	ResumeFile         *types.FileMeta     `json:"resume_file"`
	JobDescriptionFile *types.FileMeta     `json:"job_description_file"`
	ChatHistory        []types.ChatMessage `json:"chat_history"`
	Status             Status              `json:"status"`
	Error              string              `json:"error,omitempty"`
}

// Initial returns the value of an empty profile.
func Initial() Profile {
	return Profile{
		ChatHistory: []types.ChatMessage{},
		Status:      StatusIdle,
	}
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	out := p
	if p.ResumeFile != nil {
		f := *p.ResumeFile
		out.ResumeFile = &f
	}
	if p.JobDescriptionFile != nil {
		f := *p.JobDescriptionFile
		out.JobDescriptionFile = &f
	}
	out.ChatHistory = make([]types.ChatMessage, len(p.ChatHistory))
	for i, m := range p.ChatHistory {
		out.ChatHistory[i] = m.Clone()
	}
	return out
}

// Complete reports whether name, email and phone are all present.
func (p Profile) Complete() bool {
	return len(p.MissingFields()) == 0
}

// HasUserMessages reports whether the candidate has written anything in the transcript.
func (p Profile) HasUserMessages() bool {
	for _, m := range p.ChatHistory {
		if m.Sender == types.SenderUser {
			return true
		}
	}
	return false
}

// Get returns the value of a contact field.
func (p Profile) Get(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	}
	return ""
}
