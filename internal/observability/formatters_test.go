package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

func completedSession() session.Session {
	s := session.Initial()
	s.Status = session.StatusCompleted
	s.Questions = []types.Question{
		{Text: "What is JSX?", Difficulty: types.DifficultyEasy, Options: []string{"a", "b", "c", "d"}},
		{Text: "Explain the event loop", Difficulty: types.DifficultyHard},
	}
	s.Answers = []types.Answer{
		{Question: "What is JSX?", AnswerText: "b", Difficulty: types.DifficultyEasy, TimeTaken: 7, Score: 10, Feedback: "Correct"},
		{Question: "Explain the event loop", Difficulty: types.DifficultyHard, TimeTaken: 120},
	}
	s.Summary = types.NewSummary([]types.Evaluation{{Score: 10}, {Score: 0}}, "Solid fundamentals.")
	return s
}

func TestPrintQuestion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestion(types.Question{Text: "Pick one", Difficulty: types.DifficultyEasy, Options: []string{"x", "y", "z", "w"}}, 0, 6, 20)
	output := buf.String()

	assert.Contains(t, output, "QUESTION 1/6 (Easy)")
	assert.Contains(t, output, "Pick one")
	assert.Contains(t, output, "1. x")
	assert.Contains(t, output, "4. w")
	assert.Contains(t, output, "Time limit: 20s")
}

func TestPrintSession(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSession(completedSession())
	output := buf.String()

	assert.Contains(t, output, "INTERVIEW ANSWERS")
	assert.Contains(t, output, "[Easy] What is JSX?")
	assert.Contains(t, output, "Answer: b (7s)")
	assert.Contains(t, output, "Score:  10/10 - Correct")
	assert.Contains(t, output, "Answer: No answer provided (120s)")
}

func TestPrintSession_NoAnswers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSession(session.Initial())

	assert.Empty(t, buf.String())
}

func TestPrintSession_HidesScoresUntilCompleted(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	s := completedSession()
	s.Status = session.StatusFailed
	s.Error = "Evaluation failed: timeout"
	p.PrintSession(s)
	output := buf.String()

	assert.NotContains(t, output, "Score:")
	assert.Contains(t, output, "Evaluation failed: timeout")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(completedSession())
	output := buf.String()

	assert.Contains(t, output, "RESULTS")
	assert.Contains(t, output, "Total score: 10 / 20")
	assert.Contains(t, output, "Solid fundamentals.")
}

func TestPrintSummary_NotCompleted(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	s := completedSession()
	s.Status = session.StatusEvaluating
	p.PrintSummary(s)

	assert.Empty(t, buf.String())
}

func TestPrintCandidates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	records := []archive.CandidateRecord{
		{
			Profile:     archive.Contact{Name: "Jane Doe", Email: "jane@example.com"},
			Answers:     make([]types.Answer, 6),
			Summary:     types.Summary{TotalScore: 45},
			CompletedAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		},
		{
			Profile: archive.Contact{Name: "John Roe", Email: "john@example.com"},
			Answers: make([]types.Answer, 6),
			Summary: types.Summary{TotalScore: 30},
		},
	}
	stats := archive.Stats{Count: 2, AverageScore: 37.5, TopPerformer: &records[0]}

	p.PrintCandidates(records, stats)
	output := buf.String()

	assert.Contains(t, output, "CANDIDATES")
	assert.Contains(t, output, "Candidates: 2   Average: 37.5")
	assert.Contains(t, output, "Top performer: Jane Doe")
	assert.Contains(t, output, "#1  Jane Doe <jane@example.com>")
	assert.Contains(t, output, "Score: 45 / 60  (2026-03-04)")
	assert.Contains(t, output, "#2  John Roe")
}

func TestPrintCandidates_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCandidates(nil, archive.Stats{})

	assert.Contains(t, buf.String(), "NO CANDIDATES FOUND")
}

func TestPrintCandidates_Truncates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var records []archive.CandidateRecord
	for i := 0; i < 7; i++ {
		records = append(records, archive.CandidateRecord{Profile: archive.Contact{Name: "Candidate", Email: "c@example.com"}})
	}
	p.PrintCandidates(records, archive.Stats{Count: 7})

	assert.Contains(t, buf.String(), "... and 2 more candidates")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))
	output := buf.String()

	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
}
