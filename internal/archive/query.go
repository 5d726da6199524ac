package archive

import (
	"math"
	"sort"
	"strings"
)

// SortKey selects the ordering of List.
type SortKey string

const (
	SortByTotalScore SortKey = "totalScore"
	SortByName       SortKey = "name"
)

// Query filters and orders archive listings.
type Query struct {
	Search string
	SortBy SortKey
	// Ascending flips the default descending order.
	Ascending bool
}

// List returns the records whose name contains Search (case-insensitive), ordered per the query.
// The default order is total score, highest first.
func (a Archive) List(q Query) []CandidateRecord {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]CandidateRecord, 0, len(a.Candidates))
	for _, r := range a.Candidates {
		if search == "" || strings.Contains(strings.ToLower(r.Profile.Name), search) {
			out = append(out, r.Clone())
		}
	}

	less := func(i, j int) bool {
		return out[i].Summary.TotalScore < out[j].Summary.TotalScore
	}
	if q.SortBy == SortByName {
		less = func(i, j int) bool {
			return strings.ToLower(out[i].Profile.Name) < strings.ToLower(out[j].Profile.Name)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Ascending {
			return less(i, j)
		}
		return less(j, i)
	})
	return out
}

// Get returns the record for email.
func (a Archive) Get(email string) (CandidateRecord, bool) {
	for _, r := range a.Candidates {
		if sameKey(r.Profile.Email, email) {
			return r.Clone(), true
		}
	}
	return CandidateRecord{}, false
}

// Stats summarizes the archive for the interviewer dashboard.
type Stats struct {
	Count        int              `json:"count"`
	AverageScore float64          `json:"average_score"`
	TopPerformer *CandidateRecord `json:"top_performer,omitempty"`
}

// Stats computes the candidate count, the average total score rounded to one
// decimal and the highest-scoring record.
func (a Archive) Stats() Stats {
	s := Stats{Count: len(a.Candidates)}
	if s.Count == 0 {
		return s
	}
	sum := 0.0
	top := 0
	for i, r := range a.Candidates {
		sum += r.Summary.TotalScore
		if r.Summary.TotalScore > a.Candidates[top].Summary.TotalScore {
			top = i
		}
	}
	s.AverageScore = math.Round(sum/float64(s.Count)*10) / 10
	best := a.Candidates[top].Clone()
	s.TopPerformer = &best
	return s
}
