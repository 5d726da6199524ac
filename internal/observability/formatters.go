// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for terminal sessions
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintQuestion outputs the question at index i of n, with its options and time limit.
func (p *Printer) PrintQuestion(q types.Question, i, n, seconds int) {
	var sb strings.Builder
	sb.WriteString(q.Text)
	if len(q.Options) > 0 {
		sb.WriteString("\n")
		for j, opt := range q.Options {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", j+1, opt))
		}
	}
	sb.WriteString(fmt.Sprintf("\n\nTime limit: %ds", seconds))

	p.printBox(fmt.Sprintf("QUESTION %d/%d (%s)", i+1, n, q.Difficulty), sb.String())
}

// PrintSession outputs the answers of a session with their scores and timings.
func (p *Printer) PrintSession(s session.Session) {
	if len(s.Answers) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status: %s\n\n", s.Status))
	for i, a := range s.Answers {
		sb.WriteString(fmt.Sprintf("#%d  [%s] %s\n", i+1, a.Difficulty, a.Question))
		sb.WriteString(fmt.Sprintf("    Answer: %s (%ds)\n", a.DisplayText(), a.TimeTaken))
		if s.Status == session.StatusCompleted {
			sb.WriteString(fmt.Sprintf("    Score:  %g/%g", a.Score, types.MaxScorePerAnswer))
			if a.Feedback != "" {
				sb.WriteString(" - " + a.Feedback)
			}
			sb.WriteString("\n")
		}
		if i < len(s.Answers)-1 {
			sb.WriteString("\n")
		}
	}
	if s.Error != "" {
		sb.WriteString("\n⚠ " + s.Error)
	}

	p.printBox("INTERVIEW ANSWERS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the final score and the evaluator's summary.
func (p *Printer) PrintSummary(s session.Session) {
	if s.Status != session.StatusCompleted {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total score: %g / %g\n", s.Summary.TotalScore, s.MaxScore()))
	if s.Summary.Text != "" {
		sb.WriteString("\n")
		sb.WriteString(s.Summary.Text)
	}

	p.printBox("RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidates outputs archived candidates in the given order, followed by
// archive statistics.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCandidates(records []archive.CandidateRecord, stats archive.Stats) {
	if len(records) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO CANDIDATES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates: %d   Average: %.1f\n", stats.Count, stats.AverageScore))
	if stats.TopPerformer != nil {
		sb.WriteString(fmt.Sprintf("Top performer: %s\n", stats.TopPerformer.Profile.Name))
	}
	sb.WriteString("\n")

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := records[i]
		sb.WriteString(fmt.Sprintf("#%d  %s <%s>\n", i+1, r.Profile.Name, r.Profile.Email))
		sb.WriteString(fmt.Sprintf("    Score: %g / %g", r.Summary.TotalScore, r.MaxScore()))
		if !r.CompletedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("  (%s)", r.CompletedAt.Format("2006-01-02")))
		}
		sb.WriteString("\n")
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(records)-maxItemsToShow))
	}

	p.printBox("CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}
