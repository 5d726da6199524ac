package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/prompts"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/types"
)

// GenerateRequest is the input of question generation.
type GenerateRequest struct {
	ResumeText     string
	JobDescription string
}

// QuestionGenerator produces the six-question set for a candidate.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req GenerateRequest) ([]types.Question, error)
}

// ScoreRequest is the input of answer evaluation. Answers are in question order.
type ScoreRequest struct {
	Answers        []types.Answer
	ResumeText     string
	JobDescription string
}

// ScoreResult is the scorer's raw verdict. Evaluations are positional: the i-th
// evaluation belongs to the i-th answer.
type ScoreResult struct {
	Evaluations []types.Evaluation `json:"evaluations"`
	Summary     string             `json:"summary"`
}

// AnswerScorer evaluates a finished session's answers.
type AnswerScorer interface {
	EvaluateAnswers(ctx context.Context, req ScoreRequest) (ScoreResult, error)
}

// Interviewer implements both collaborators on top of a Client.
type Interviewer struct {
	client Client
}

// NewInterviewer wraps client.
func NewInterviewer(client Client) *Interviewer {
	return &Interviewer{client: client}
}

// GenerateQuestions asks the model for a question set and checks it against the
// generation contract. Any violation is a collaborator failure.
func (iv *Interviewer) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]types.Question, error) {
	const op = "generate questions"

	prompt, err := prompts.Render(prompts.GenerateQuestions, map[string]string{
		"ResumeText":     req.ResumeText,
		"JobDescription": optional(req.JobDescription),
	})
	if err != nil {
		return nil, &types.CollaboratorError{Operation: op, Message: "prompt unavailable", Cause: err}
	}

	raw, err := iv.client.GenerateJSON(ctx, prompt, TierStandard)
	if err != nil {
		return nil, &types.CollaboratorError{Operation: op, Message: "model call failed", Cause: err}
	}
	raw = CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Questions, []byte(raw)); err != nil {
		return nil, &types.CollaboratorError{Operation: op, Message: "response violates schema", Cause: err}
	}

	var out struct {
		Questions []types.Question `json:"questions"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return nil, &types.CollaboratorError{Operation: op, Message: "malformed response", Cause: err}
	}
	if err := types.ValidateQuestionSet(out.Questions); err != nil {
		return nil, &types.CollaboratorError{Operation: op, Message: "question set rejected", Cause: err}
	}
	return out.Questions, nil
}

// EvaluateAnswers asks the model to score each answer. Length alignment is
// checked by the caller, which owns the answer list.
func (iv *Interviewer) EvaluateAnswers(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	const op = "evaluate answers"

	prompt, err := prompts.Render(prompts.EvaluateAnswers, map[string]string{
		"ResumeText":     req.ResumeText,
		"JobDescription": optional(req.JobDescription),
		"Answers":        formatAnswers(req.Answers),
	})
	if err != nil {
		return ScoreResult{}, &types.CollaboratorError{Operation: op, Message: "prompt unavailable", Cause: err}
	}

	raw, err := iv.client.GenerateJSON(ctx, prompt, TierAdvanced)
	if err != nil {
		return ScoreResult{}, &types.CollaboratorError{Operation: op, Message: "model call failed", Cause: err}
	}
	raw = CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.Evaluation, []byte(raw)); err != nil {
		return ScoreResult{}, &types.CollaboratorError{Operation: op, Message: "response violates schema", Cause: err}
	}

	var out ScoreResult
	if err := decodeJSON(raw, &out); err != nil {
		return ScoreResult{}, &types.CollaboratorError{Operation: op, Message: "malformed response", Cause: err}
	}
	return out, nil
}

func optional(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none provided)"
	}
	return s
}

func formatAnswers(answers []types.Answer) string {
	var sb strings.Builder
	for i, a := range answers {
		sb.WriteString(fmt.Sprintf("%d. Question (%s): %s\n", i+1, a.Difficulty, a.Question))
		sb.WriteString(fmt.Sprintf("   Answer: %s\n", a.AnswerText))
		sb.WriteString(fmt.Sprintf("   Time Taken: %ds\n", a.TimeTaken))
	}
	return sb.String()
}
