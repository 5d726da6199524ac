package session

import "github.com/jonathan/interview-coach/internal/types"

// Command is a session partition command. The set is closed: only the types in
// this file implement it.
type Command interface {
	Name() string
	sessionCommand()
}

// LoadQuestions starts (or restarts) a session over the given questions.
type LoadQuestions struct {
	SessionID string
	Questions []types.Question
}

// NewLoadQuestions builds a LoadQuestions command with a fresh session ID.
func NewLoadQuestions(questions []types.Question) LoadQuestions {
	return LoadQuestions{SessionID: NewID(), Questions: questions}
}

// SetOwner records the identity the session belongs to.
type SetOwner struct {
	OwnerID string
}

// SubmitAnswer records the answer for the question at Index.
type SubmitAnswer struct {
	Index     int
	Text      string
	TimeTaken int
}

// ApplyEvaluation merges the scorer's per-answer results into the session.
type ApplyEvaluation struct {
	SessionID   string
	Evaluations []types.Evaluation
	Text        string
}

// Fail moves an evaluating session to the failed dead end.
type Fail struct {
	SessionID string
	Reason    string
}

// Reset discards the session.
type Reset struct{}

func (LoadQuestions) Name() string   { return "load-questions" }
func (SetOwner) Name() string        { return "set-owner" }
func (SubmitAnswer) Name() string    { return "submit-answer" }
func (ApplyEvaluation) Name() string { return "apply-evaluation" }
func (Fail) Name() string            { return "fail" }
func (Reset) Name() string           { return "reset-session" }

func (LoadQuestions) sessionCommand()   {}
func (SetOwner) sessionCommand()        {}
func (SubmitAnswer) sessionCommand()    {}
func (ApplyEvaluation) sessionCommand() {}
func (Fail) sessionCommand()            {}
func (Reset) sessionCommand()           {}
