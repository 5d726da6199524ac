package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

// StateView is the body of GET /state and of every candidate mutation.
type StateView struct {
	Profile   profile.Profile `json:"profile"`
	Session   session.Session `json:"session"`
	Resumable bool            `json:"resumable"`
	Timer     *Tick           `json:"timer,omitempty"`
}

func (s *Server) stateView(identity string) StateView {
	snap := s.store.Snapshot()
	view := StateView{
		Profile:   snap.Profile,
		Session:   snap.Session,
		Resumable: snap.Session.Resumable(identity),
	}
	if index, remaining, ok := s.controller.Remaining(); ok {
		view.Timer = &Tick{Index: index, Remaining: remaining}
	}
	return view
}

// identity returns the authenticated identity, writing 401 when there is none.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return identity, true
}

// requireOwner rejects requests that would act on another identity's session.
func (s *Server) requireOwner(identity string) error {
	owner := s.store.Snapshot().Session.OwnerID
	if owner != "" && owner != identity {
		return ErrNotOwner
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

// handleState returns the candidate's view of the store.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, s.stateView(identity))
}

// handleEvents streams "state" notifications after every accepted command and
// "tick" events while a question is open.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, unsubscribe := s.store.Subscribe()
	defer unsubscribe()
	ticks, stopTicks := s.ticks.Subscribe()
	defer stopTicks()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	w.WriteHeader(http.StatusOK)
	if err := sse.WriteKeepAlive(); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent("state", newStateNotification(ev)); err != nil {
				return
			}
		case tick := <-ticks:
			if err := sse.WriteEvent("tick", tick); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := sse.WriteKeepAlive(); err != nil {
				return
			}
		}
	}
}

// handleUploadResume accepts a multipart form with a "resume" file and an
// optional "job_description" file.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "resume", Message: "expected a multipart form under 10MB"})
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	resume, err := readDocument(r, "resume")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resume == nil {
		s.writeError(w, r, &ErrValidation{Field: "resume", Message: "file is required"})
		return
	}
	job, err := readDocument(r, "job_description")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.controller.UploadResume(r.Context(), identity, *resume, job); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.stateView(identity))
}

// readDocument reads an uploaded file. It returns nil when the field is absent.
func readDocument(r *http.Request, field string) (*interview.Document, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrValidation{Field: field, Message: err.Error()}
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		mimeType = ingestion.DetectMimeType(header.Filename, data)
	}
	return &interview.Document{Name: header.Filename, Type: mimeType, Data: data}, nil
}

// handleProvideField answers the pending missing-field prompt.
func (s *Server) handleProvideField(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var req types.ProvideFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.requireOwner(identity); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.controller.ProvideField(r.Context(), req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.stateView(identity))
}

// handleGenerate retries question generation after a failure.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	if err := s.requireOwner(identity); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.controller.Generate(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.stateView(identity))
}

// handleContinue resumes a persisted session for its owner.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	continued, err := s.controller.Continue(r.Context(), identity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"continued": continued,
		"state":     s.stateView(identity),
	})
}

// handleAnswer commits the answer for the open question.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var req types.SubmitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.requireOwner(identity); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.controller.SubmitAnswer(r.Context(), req.Index, req.Answer); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.stateView(identity))
}

// handleResetSession discards the session. Any identity may reset; a session
// owned by someone else is treated as abandoned.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	s.reset(w, r, s.controller.ResetSession)
}

func (s *Server) handleResetProfile(w http.ResponseWriter, r *http.Request) {
	s.reset(w, r, s.controller.ResetProfile)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.reset(w, r, s.controller.Restart)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("state reset", zap.String("path", r.URL.Path))
	s.jsonResponse(w, http.StatusOK, s.stateView(identity))
}

// handleListCandidates lists archived candidates.
// Query: search (name substring), sort (totalScore|name), order (asc|desc).
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	q, err := parseCandidateQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records := s.store.Snapshot().Archive.List(q)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"candidates": records,
		"count":      len(records),
	})
}

func parseCandidateQuery(r *http.Request) (archive.Query, error) {
	values := r.URL.Query()
	q := archive.Query{Search: values.Get("search"), SortBy: archive.SortByTotalScore}

	switch sortBy := values.Get("sort"); sortBy {
	case "", string(archive.SortByTotalScore):
	case string(archive.SortByName):
		q.SortBy = archive.SortByName
		// Names read naturally A to Z unless asked otherwise.
		q.Ascending = true
	default:
		return q, &ErrValidation{Field: "sort", Message: fmt.Sprintf("unknown sort key %q (must be totalScore or name)", sortBy)}
	}

	switch order := values.Get("order"); order {
	case "":
	case "asc":
		q.Ascending = true
	case "desc":
		q.Ascending = false
	default:
		return q, &ErrValidation{Field: "order", Message: fmt.Sprintf("unknown order %q (must be asc or desc)", order)}
	}
	return q, nil
}

// handleCandidateStats returns archive statistics.
func (s *Server) handleCandidateStats(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot().Archive.Stats())
}

// handleGetCandidate returns one archived record by email.
func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	record, ok := s.store.Snapshot().Archive.Get(r.PathValue("email"))
	if !ok {
		s.writeError(w, r, ErrCandidateNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}
