// Package archive implements the completed-candidate archive partition that interviewers review.
package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/interview-coach/internal/types"
)

// Contact is the profile subset frozen into a record.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CandidateRecord is a frozen snapshot of one finished interview, keyed by email.
type CandidateRecord struct {
	Profile     Contact          `json:"profile"`
	Questions   []types.Question `json:"questions"`
	Answers     []types.Answer   `json:"answers"`
	Summary     types.Summary    `json:"summary"`
	CompletedAt time.Time        `json:"completed_at"`
}

// MaxScore is the best total the record's interview could reach.
func (r CandidateRecord) MaxScore() float64 {
	return float64(len(r.Answers)) * types.MaxScorePerAnswer
}

// Clone returns a deep copy of r.
func (r CandidateRecord) Clone() CandidateRecord {
	out := r
	out.Questions = make([]types.Question, len(r.Questions))
	for i, q := range r.Questions {
		out.Questions[i] = q.Clone()
	}
	out.Answers = append([]types.Answer{}, r.Answers...)
	out.Summary = r.Summary.Clone()
	return out
}

// Archive holds at most one record per email.
type Archive struct {
	Candidates []CandidateRecord `json:"candidates"`
}

// Initial returns an empty archive.
func Initial() Archive {
	return Archive{Candidates: []CandidateRecord{}}
}

// Clone returns a deep copy of a.
func (a Archive) Clone() Archive {
	out := Archive{Candidates: make([]CandidateRecord, len(a.Candidates))}
	for i, r := range a.Candidates {
		out.Candidates[i] = r.Clone()
	}
	return out
}

func sameKey(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Command is an archive partition command.
type Command interface {
	Name() string
	archiveCommand()
}

// AddCandidate upserts a record: a record with the same email is replaced in place.
type AddCandidate struct {
	Record CandidateRecord
}

func (AddCandidate) Name() string    { return "add-candidate" }
func (AddCandidate) archiveCommand() {}

// Apply returns the archive that results from applying cmd to a. a is never modified.
func Apply(a Archive, cmd Command) (Archive, error) {
	switch c := cmd.(type) {
	case AddCandidate:
		if strings.TrimSpace(c.Record.Profile.Email) == "" {
			return a, &types.InvalidInputError{Field: "email", Message: "candidate record requires an email"}
		}
		next := a.Clone()
		record := c.Record.Clone()
		for i, existing := range next.Candidates {
			if sameKey(existing.Profile.Email, record.Profile.Email) {
				next.Candidates[i] = record
				return next, nil
			}
		}
		next.Candidates = append(next.Candidates, record)
		return next, nil
	default:
		return a, fmt.Errorf("unknown archive command %T", cmd)
	}
}
