package session

import (
	"fmt"
	"math"

	"github.com/jonathan/interview-coach/internal/types"
)

// scoreTolerance absorbs float rounding when comparing a total to its sum.
const scoreTolerance = 1e-9

// Validate checks the structural invariants a session reached only through
// Apply always satisfies. Persisted sessions are checked with it before they
// are trusted.
func (s Session) Validate() error {
	n := len(s.Questions)
	switch s.Status {
	case StatusIdle:
		if n != 0 || len(s.Answers) != 0 || s.CurrentQuestionIndex != 0 {
			return invalid("status", "an idle session holds no questions or answers")
		}
	case StatusInProgress:
		if n == 0 {
			return invalid("questions", "an in-progress session needs questions")
		}
		if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= n {
			return invalid("current_question_index", fmt.Sprintf("index %d outside %d questions", s.CurrentQuestionIndex, n))
		}
		if len(s.Answers) != s.CurrentQuestionIndex {
			return invalid("answers", fmt.Sprintf("%d answers before question %d", len(s.Answers), s.CurrentQuestionIndex))
		}
	case StatusEvaluating, StatusCompleted, StatusFailed:
		if n == 0 {
			return invalid("questions", fmt.Sprintf("a %s session needs questions", s.Status))
		}
		if len(s.Answers) != n {
			return invalid("answers", fmt.Sprintf("%d answers for %d questions", len(s.Answers), n))
		}
		if s.CurrentQuestionIndex != n-1 {
			return invalid("current_question_index", fmt.Sprintf("index %d after the last of %d questions", s.CurrentQuestionIndex, n))
		}
	default:
		return invalid("status", fmt.Sprintf("unknown status %q", s.Status))
	}

	for i, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	for i, a := range s.Answers {
		if a.Difficulty != s.Questions[i].Difficulty {
			return invalid("answers", fmt.Sprintf("answer %d is %s, its question is %s", i, a.Difficulty, s.Questions[i].Difficulty))
		}
	}
	return s.validateSummary()
}

func (s Session) validateSummary() error {
	evals := s.Summary.Evaluations
	sum := 0.0
	for _, e := range evals {
		sum += e.Score
	}
	if math.Abs(sum-s.Summary.TotalScore) > scoreTolerance {
		return invalid("total_score", fmt.Sprintf("total %v is not the sum %v of its evaluations", s.Summary.TotalScore, sum))
	}

	if s.Status != StatusCompleted {
		if len(evals) != 0 {
			return invalid("evaluations", fmt.Sprintf("a %s session carries no evaluations", s.Status))
		}
		return nil
	}
	if len(evals) != len(s.Answers) {
		return invalid("evaluations", fmt.Sprintf("%d evaluations for %d answers", len(evals), len(s.Answers)))
	}
	for i, e := range evals {
		if math.IsNaN(e.Score) || e.Score < 0 || e.Score > types.MaxScorePerAnswer {
			return invalid("evaluations", fmt.Sprintf("evaluation %d has score %v", i, e.Score))
		}
		if s.Answers[i].Score != e.Score {
			return invalid("answers", fmt.Sprintf("answer %d score %v differs from its evaluation %v", i, s.Answers[i].Score, e.Score))
		}
	}
	return nil
}

func invalid(field, message string) error {
	return &types.InvalidInputError{Field: field, Message: message}
}
