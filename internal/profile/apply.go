package profile

import (
	"fmt"

	"github.com/jonathan/interview-coach/internal/types"
)

// Apply returns the profile that results from applying cmd to p. p is never modified.
func Apply(p Profile, cmd Command) (Profile, error) {
	next := p.Clone()
	switch c := cmd.(type) {
	case SetProfile:
		next.Name = c.FullName
		next.Email = c.Email
		next.Phone = c.Phone
		next.ResumeText = c.ResumeText
		next.JobDescriptionText = c.JobDescriptionText
		next.ResumeFile = copyMeta(c.ResumeFile)
		next.JobDescriptionFile = copyMeta(c.JobDescriptionFile)
		next.Status = StatusSucceeded
		next.Error = ""
	case UpdateField:
		value, err := ValidateField(c.Field, c.Value)
		if err != nil {
			return p, err
		}
		switch c.Field {
		case FieldName:
			next.Name = value
		case FieldEmail:
			next.Email = value
		case FieldPhone:
			next.Phone = value
		}
	case AddMessage:
		if c.Message.Sender != types.SenderUser && c.Message.Sender != types.SenderSystem {
			return p, &types.InvalidInputError{Field: "sender", Message: fmt.Sprintf("unknown sender %q", c.Message.Sender)}
		}
		next.ChatHistory = append(next.ChatHistory, c.Message.Clone())
	case ClearChatHistory:
		next.ChatHistory = []types.ChatMessage{}
	case SetLoading:
		next.Status = StatusLoading
	case SetError:
		next.Status = StatusFailed
		next.Error = c.Message
	case Reset:
		return Initial(), nil
	default:
		return p, fmt.Errorf("unknown profile command %T", cmd)
	}
	return next, nil
}

func copyMeta(m *types.FileMeta) *types.FileMeta {
	if m == nil {
		return nil
	}
	out := *m
	return &out
}
