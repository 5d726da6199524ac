package profile

import "github.com/jonathan/interview-coach/internal/types"

// Command is a profile partition command.
type Command interface {
	Name() string
	profileCommand()
}

// SetProfile stores the result of résumé processing.
type SetProfile struct {
	FullName           string
	Email              string
	Phone              string
	ResumeText         string
	JobDescriptionText string
	ResumeFile         *types.FileMeta
	JobDescriptionFile *types.FileMeta
}

// UpdateField sets one contact field.
type UpdateField struct {
	Field Field
	Value string
}

// AddMessage appends to the transcript.
type AddMessage struct {
	Message types.ChatMessage
}

// ClearChatHistory empties the transcript.
type ClearChatHistory struct{}

// SetLoading marks résumé processing as started.
type SetLoading struct{}

// SetError records a résumé processing failure.
type SetError struct {
	Message string
}

// Reset discards the profile.
type Reset struct{}

func (SetProfile) Name() string       { return "set-profile" }
func (UpdateField) Name() string      { return "update-field" }
func (AddMessage) Name() string       { return "add-message" }
func (ClearChatHistory) Name() string { return "clear-chat-history" }
func (SetLoading) Name() string       { return "set-loading" }
func (SetError) Name() string         { return "set-error" }
func (Reset) Name() string            { return "reset-profile" }

func (SetProfile) profileCommand()       {}
func (UpdateField) profileCommand()      {}
func (AddMessage) profileCommand()       {}
func (ClearChatHistory) profileCommand() {}
func (SetLoading) profileCommand()       {}
func (SetError) profileCommand()         {}
func (Reset) profileCommand()            {}
