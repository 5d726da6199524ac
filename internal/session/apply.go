package session

import (
	"fmt"

	"github.com/jonathan/interview-coach/internal/types"
)

// Apply returns the session that results from applying cmd to s.
// s is never modified. On error the returned session is s unchanged.
func Apply(s Session, cmd Command) (Session, error) {
	switch c := cmd.(type) {
	case LoadQuestions:
		return loadQuestions(s, c)
	case SetOwner:
		next := s.Clone()
		next.OwnerID = c.OwnerID
		return next, nil
	case SubmitAnswer:
		return submitAnswer(s, c)
	case ApplyEvaluation:
		return applyEvaluation(s, c)
	case Fail:
		return fail(s, c)
	case Reset:
		return Initial(), nil
	default:
		return s, fmt.Errorf("unknown session command %T", cmd)
	}
}

func loadQuestions(s Session, c LoadQuestions) (Session, error) {
	if len(c.Questions) == 0 {
		return s, &types.InvalidInputError{Field: "questions", Message: "question set is empty"}
	}
	if c.SessionID == "" {
		return s, &types.InvalidInputError{Field: "session_id", Message: "session id is required"}
	}
	for i, q := range c.Questions {
		if err := q.Validate(); err != nil {
			return s, fmt.Errorf("question %d: %w", i, err)
		}
	}

	next := Initial()
	next.ID = c.SessionID
	next.OwnerID = s.OwnerID
	next.Status = StatusInProgress
	next.Questions = make([]types.Question, len(c.Questions))
	for i, q := range c.Questions {
		next.Questions[i] = q.Clone()
	}
	return next, nil
}

func submitAnswer(s Session, c SubmitAnswer) (Session, error) {
	if s.Status != StatusInProgress {
		return s, &types.TransitionError{From: string(s.Status), Command: c.Name()}
	}
	if c.Index != s.CurrentQuestionIndex {
		return s, &types.InvalidInputError{
			Field:   "index",
			Message: fmt.Sprintf("expected answer for question %d, got %d", s.CurrentQuestionIndex, c.Index),
		}
	}
	if c.TimeTaken < 0 {
		return s, &types.InvalidInputError{Field: "time_taken", Message: "must be non-negative"}
	}
	if c.Index < 0 || c.Index >= len(s.Questions) {
		return s, &types.InvalidInputError{
			Field:   "index",
			Message: fmt.Sprintf("question %d outside %d questions", c.Index, len(s.Questions)),
		}
	}

	q := s.Questions[c.Index]
	next := s.Clone()
	next.Answers = append(next.Answers, types.Answer{
		Question:   q.Text,
		AnswerText: c.Text,
		Difficulty: q.Difficulty,
		TimeTaken:  c.TimeTaken,
	})

	if c.Index < len(s.Questions)-1 {
		next.CurrentQuestionIndex = c.Index + 1
		return next, nil
	}
	next.Status = StatusEvaluating
	return next, nil
}

func applyEvaluation(s Session, c ApplyEvaluation) (Session, error) {
	if c.SessionID != s.ID {
		return s, types.ErrStaleSession
	}
	if s.Status != StatusEvaluating {
		return s, &types.TransitionError{From: string(s.Status), Command: c.Name()}
	}
	if len(c.Evaluations) != len(s.Answers) {
		return s, &types.InvalidInputError{
			Field:   "evaluations",
			Message: fmt.Sprintf("got %d evaluations for %d answers", len(c.Evaluations), len(s.Answers)),
		}
	}

	next := s.Clone()
	next.Summary = types.NewSummary(c.Evaluations, c.Text)
	for i := range next.Answers {
		next.Answers[i].Score = c.Evaluations[i].Score
		next.Answers[i].Feedback = c.Evaluations[i].Feedback
	}
	next.Status = StatusCompleted
	next.Error = ""
	return next, nil
}

func fail(s Session, c Fail) (Session, error) {
	if c.SessionID != s.ID {
		return s, types.ErrStaleSession
	}
	if s.Status != StatusEvaluating {
		return s, &types.TransitionError{From: string(s.Status), Command: c.Name()}
	}
	next := s.Clone()
	next.Status = StatusFailed
	next.Error = c.Reason
	return next, nil
}
