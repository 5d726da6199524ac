package llm

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/interview-coach/internal/types"
)

//go:embed default_bank.yaml
var defaultBank []byte

// BankEntry is one prepared question with the material needed to grade it offline.
type BankEntry struct {
	Question   string           `yaml:"question"`
	Difficulty types.Difficulty `yaml:"difficulty"`
	Options    []string         `yaml:"options"`
	// Answer is the correct option of an Easy question.
	Answer string `yaml:"answer"`
	// Keywords are the terms a good free-text answer mentions.
	Keywords []string `yaml:"keywords"`
	// Topics match the question to résumé content.
	Topics []string `yaml:"topics"`
}

func (e BankEntry) question() types.Question {
	return types.Question{Text: e.Question, Difficulty: e.Difficulty, Options: e.Options}.Clone()
}

// QuestionBank is a prepared set of questions used when no model is configured.
type QuestionBank struct {
	Questions []BankEntry `yaml:"questions"`
}

// DefaultQuestionBank returns the embedded bank.
func DefaultQuestionBank() (*QuestionBank, error) {
	return ParseQuestionBank(defaultBank)
}

// LoadQuestionBank reads a YAML bank from path.
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return ParseQuestionBank(data)
}

// ParseQuestionBank decodes and validates a YAML bank.
func ParseQuestionBank(data []byte) (*QuestionBank, error) {
	var bank QuestionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if err := bank.Validate(); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Validate checks that every entry is a valid question, every Easy entry names
// one of its options as the answer, and each tier can fill a set.
func (b *QuestionBank) Validate() error {
	counts := make(map[types.Difficulty]int)
	for i, e := range b.Questions {
		if err := e.question().Validate(); err != nil {
			return fmt.Errorf("bank entry %d: %w", i, err)
		}
		if e.Difficulty == types.DifficultyEasy && !containsFold(e.Options, e.Answer) {
			return &types.InvalidInputError{Field: "answer", Message: fmt.Sprintf("bank entry %d: answer is not one of the options", i)}
		}
		counts[e.Difficulty]++
	}
	for tier, want := range types.TierCounts {
		if counts[tier] < want {
			return &types.InvalidInputError{
				Field:   "questions",
				Message: fmt.Sprintf("bank needs at least %d %s questions, has %d", want, tier, counts[tier]),
			}
		}
	}
	return nil
}

func (b *QuestionBank) lookup(question string) (BankEntry, bool) {
	for _, e := range b.Questions {
		if e.Question == question {
			return e, true
		}
	}
	return BankEntry{}, false
}

// BankGenerator picks questions from a bank, preferring those whose topics
// appear in the résumé. Ties are broken randomly.
type BankGenerator struct {
	bank *QuestionBank
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewBankGenerator creates a generator. The same seed yields the same picks.
func NewBankGenerator(bank *QuestionBank, seed uint64) *BankGenerator {
	return &BankGenerator{bank: bank, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

var tierOrder = []types.Difficulty{types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard}

// GenerateQuestions returns two questions per tier in Easy, Medium, Hard order.
func (g *BankGenerator) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]types.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.CollaboratorError{Operation: "generate questions", Message: "cancelled", Cause: err}
	}
	text := strings.ToLower(req.ResumeText + "\n" + req.JobDescription)

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]types.Question, 0, 6)
	for _, tier := range tierOrder {
		type ranked struct {
			entry BankEntry
			score int
			tie   uint64
		}
		var pool []ranked
		for _, e := range g.bank.Questions {
			if e.Difficulty != tier {
				continue
			}
			score := 0
			for _, topic := range e.Topics {
				if strings.Contains(text, strings.ToLower(topic)) {
					score++
				}
			}
			pool = append(pool, ranked{entry: e, score: score, tie: g.rng.Uint64()})
		}
		sort.Slice(pool, func(i, j int) bool {
			if pool[i].score != pool[j].score {
				return pool[i].score > pool[j].score
			}
			return pool[i].tie < pool[j].tie
		})
		want := types.TierCounts[tier]
		if len(pool) < want {
			return nil, &types.CollaboratorError{Operation: "generate questions", Message: fmt.Sprintf("bank has too few %s questions", tier)}
		}
		for _, r := range pool[:want] {
			out = append(out, r.entry.question())
		}
	}
	return out, nil
}

// HeuristicScorer grades answers against the bank: Easy answers by the
// correct option, free-text answers by keyword coverage.
type HeuristicScorer struct {
	bank *QuestionBank
}

// NewHeuristicScorer creates a scorer over bank.
func NewHeuristicScorer(bank *QuestionBank) *HeuristicScorer {
	return &HeuristicScorer{bank: bank}
}

// EvaluateAnswers returns one evaluation per answer, in order.
func (s *HeuristicScorer) EvaluateAnswers(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return ScoreResult{}, &types.CollaboratorError{Operation: "evaluate answers", Message: "cancelled", Cause: err}
	}

	result := ScoreResult{Evaluations: make([]types.Evaluation, len(req.Answers))}
	total := 0.0
	answered := 0
	for i, a := range req.Answers {
		ev := s.grade(a)
		result.Evaluations[i] = ev
		total += ev.Score
		if !isEmptyAnswer(a.AnswerText) {
			answered++
		}
	}
	maxScore := float64(len(req.Answers)) * types.MaxScorePerAnswer
	result.Summary = fmt.Sprintf("Answered %d of %d questions and scored %g out of %g.", answered, len(req.Answers), total, maxScore)
	return result, nil
}

func (s *HeuristicScorer) grade(a types.Answer) types.Evaluation {
	if isEmptyAnswer(a.AnswerText) {
		return types.Evaluation{Score: 0, Feedback: "No answer was given."}
	}
	entry, ok := s.bank.lookup(a.Question)
	if !ok {
		return types.Evaluation{Score: 5, Feedback: "Answer recorded; no reference answer is available for this question."}
	}

	if a.Difficulty == types.DifficultyEasy {
		if strings.EqualFold(strings.TrimSpace(a.AnswerText), strings.TrimSpace(entry.Answer)) {
			return types.Evaluation{Score: 10, Feedback: "Correct."}
		}
		return types.Evaluation{Score: 0, Feedback: fmt.Sprintf("Incorrect. The expected answer is %q.", entry.Answer)}
	}

	if len(entry.Keywords) == 0 {
		return types.Evaluation{Score: 5, Feedback: "Answer recorded; no reference keywords are available."}
	}
	text := strings.ToLower(a.AnswerText)
	var missing []string
	for _, k := range entry.Keywords {
		if !strings.Contains(text, strings.ToLower(k)) {
			missing = append(missing, k)
		}
	}
	covered := len(entry.Keywords) - len(missing)
	score := math.Round(float64(covered) / float64(len(entry.Keywords)) * types.MaxScorePerAnswer)
	if len(missing) == 0 {
		return types.Evaluation{Score: score, Feedback: "Covers the key points."}
	}
	return types.Evaluation{Score: score, Feedback: "Consider mentioning: " + strings.Join(missing, ", ") + "."}
}

func isEmptyAnswer(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || t == types.ScorerNoAnswerText || t == types.NoAnswerText
}

func containsFold(options []string, s string) bool {
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
