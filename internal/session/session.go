// Package session implements the interview session partition: its states and
// the pure transition function that moves a session between them.
package session

import (
	"github.com/google/uuid"

	"github.com/jonathan/interview-coach/internal/types"
)

// Status is the finite state of a session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in-progress"
	StatusEvaluating Status = "evaluating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Session is one candidate's question/answer/evaluation cycle.
type Session struct {
	// ID identifies one run of questions. It changes every time questions are
	// loaded, so asynchronous completions can tell whether their session is still current.
	ID                   string           `json:"id,omitempty"`
	Questions            []types.Question `json:"questions"`
	CurrentQuestionIndex int              `json:"current_question_index"`
	Answers              []types.Answer   `json:"answers"`
	Summary              types.Summary    `json:"summary"`
	Status               Status           `json:"status"`
	Error                string           `json:"error,omitempty"`
	OwnerID              string           `json:"owner_id,omitempty"`
}

// Initial returns the value of a fresh session.
func Initial() Session {
	return Session{
		Questions: []types.Question{},
		Answers:   []types.Answer{},
		Summary:   types.NewSummary(nil, ""),
		Status:    StatusIdle,
	}
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	out.Questions = make([]types.Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	out.Answers = append([]types.Answer{}, s.Answers...)
	out.Summary = s.Summary.Clone()
	return out
}

// CurrentQuestion returns the question awaiting an answer, if any.
func (s Session) CurrentQuestion() (types.Question, bool) {
	if s.Status != StatusInProgress {
		return types.Question{}, false
	}
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return types.Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// MaxScore is the best total a session of this size can reach.
func (s Session) MaxScore() float64 {
	return float64(len(s.Questions)) * types.MaxScorePerAnswer
}

// Resumable reports whether the session may be offered for continuation to identity.
// A session owned by another identity is treated as abandoned.
func (s Session) Resumable(identity string) bool {
	if identity == "" || s.OwnerID != identity {
		return false
	}
	switch s.Status {
	case StatusInProgress, StatusEvaluating, StatusCompleted:
		return true
	}
	return false
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}
