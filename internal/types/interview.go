// Package types provides type definitions for structured data shared across the interview system.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Difficulty is the tier of a question. It decides the question format and its timer duration.
type Difficulty string

const (
	// DifficultyEasy questions are multiple choice with exactly four options.
	DifficultyEasy Difficulty = "Easy"
	// DifficultyMedium questions expect a short free-text answer.
	DifficultyMedium Difficulty = "Medium"
	// DifficultyHard questions expect a one-line explanatory answer.
	DifficultyHard Difficulty = "Hard"
)

// MCQOptionCount is the number of options every Easy question carries.
const MCQOptionCount = 4

// MaxScorePerAnswer is the upper bound of a single evaluation score.
const MaxScorePerAnswer = 10.0

// NoAnswerText is shown in place of an empty answer.
const NoAnswerText = "No answer provided"

// ScorerNoAnswerText is what the scorer receives for an empty answer.
const ScorerNoAnswerText = NoAnswerText + "."

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a generated interview question. It is immutable once generated.
type Question struct {
	Text       string     `json:"question" validate:"required"`
	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Options    []string   `json:"options,omitempty"`
}

// Validate checks the field constraints and the options rule:
// options are present iff the difficulty is Easy, and then there are exactly four.
func (q Question) Validate() error {
	if err := validator.New().Struct(q); err != nil {
		return &InvalidInputError{Field: "question", Message: err.Error()}
	}
	if q.Difficulty == DifficultyEasy {
		if len(q.Options) != MCQOptionCount {
			return &InvalidInputError{
				Field:   "options",
				Message: fmt.Sprintf("easy question must have %d options, got %d", MCQOptionCount, len(q.Options)),
			}
		}
		return nil
	}
	if len(q.Options) > 0 {
		return &InvalidInputError{Field: "options", Message: fmt.Sprintf("%s question must not have options", q.Difficulty)}
	}
	return nil
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]string(nil), q.Options...)
	}
	return out
}

// Answer is the candidate's response to one question, with the evaluation fields attached.
// Score and Feedback hold a zero placeholder until the evaluation pipeline merges real results.
type Answer struct {
	Question   string     `json:"question"`
	AnswerText string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
	TimeTaken  int        `json:"time_taken"`
	Score      float64    `json:"score"`
	Feedback   string     `json:"feedback"`
}

// DisplayText returns the answer text or the "no answer" placeholder.
func (a Answer) DisplayText() string {
	if a.AnswerText == "" {
		return NoAnswerText
	}
	return a.AnswerText
}

// Evaluation is the scorer's verdict on one answer.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Summary is the merged evaluation result of a session.
// TotalScore always equals the sum of the evaluation scores; build it with NewSummary.
type Summary struct {
	Evaluations []Evaluation `json:"evaluations"`
	Text        string       `json:"text"`
	TotalScore  float64      `json:"total_score"`
}

// NewSummary builds a Summary, deriving TotalScore from the evaluations.
func NewSummary(evaluations []Evaluation, text string) Summary {
	evals := make([]Evaluation, len(evaluations))
	copy(evals, evaluations)
	total := 0.0
	for _, e := range evals {
		total += e.Score
	}
	return Summary{Evaluations: evals, Text: text, TotalScore: total}
}

// Clone returns a copy that shares no memory with s.
func (s Summary) Clone() Summary {
	out := s
	out.Evaluations = append([]Evaluation{}, s.Evaluations...)
	return out
}

// Difficulties lists the tiers in session order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// TierCounts is the question mix a generated set must have.
var TierCounts = map[Difficulty]int{
	DifficultyEasy:   2,
	DifficultyMedium: 2,
	DifficultyHard:   2,
}

// ValidateQuestionSet checks a generated set against the generation contract:
// every question valid and exactly two questions per tier.
func ValidateQuestionSet(questions []Question) error {
	counts := make(map[Difficulty]int)
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		counts[q.Difficulty]++
	}
	for _, tier := range Difficulties {
		if want := TierCounts[tier]; counts[tier] != want {
			return &InvalidInputError{
				Field:   "questions",
				Message: fmt.Sprintf("expected %d %s questions, got %d", want, tier, counts[tier]),
			}
		}
	}
	return nil
}
