// Package evaluation runs a finished session's answers through the scorer and
// merges the verdict back into the store.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/types"
)

const operation = "evaluate answers"

// Pipeline scores a session once it reaches evaluating. It never retries.
type Pipeline struct {
	store  *store.Store
	scorer llm.AnswerScorer
	logger *zap.Logger
	now    func() time.Time
}

// NewPipeline creates a pipeline dispatching into st.
func NewPipeline(st *store.Store, scorer llm.AnswerScorer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{store: st, scorer: scorer, logger: logger, now: time.Now}
}

// Run evaluates the session identified by sessionID.
//
// On success the session is completed and a CandidateRecord is upserted into
// the archive. On scorer failure the session moves to failed and the
// collaborator error is returned. If the session was reset or replaced while
// the scorer was running, nothing changes and types.ErrStaleSession is returned.
func (p *Pipeline) Run(ctx context.Context, sessionID string) error {
	log := p.logger.With(zap.String("session_id", sessionID))

	snap := p.store.Snapshot()
	if snap.Session.ID != sessionID {
		log.Warn("evaluation requested for a replaced session")
		return types.ErrStaleSession
	}
	if snap.Session.Status != session.StatusEvaluating {
		return &types.TransitionError{From: string(snap.Session.Status), Command: "evaluate"}
	}

	// The contact is taken now so that a profile reset while the scorer runs
	// does not take the candidate's record with it.
	contact := archive.Contact{
		Name:  snap.Profile.Name,
		Email: snap.Profile.Email,
		Phone: snap.Profile.Phone,
	}
	answers := snap.Session.Answers
	req := llm.ScoreRequest{
		Answers:        scorerAnswers(answers),
		ResumeText:     snap.Profile.ResumeText,
		JobDescription: snap.Profile.JobDescriptionText,
	}

	log.Info("evaluating answers", zap.Int("answers", len(answers)))
	res, err := p.scorer.EvaluateAnswers(ctx, req)
	if err == nil {
		err = checkResult(res, len(answers))
	}
	if err != nil {
		var collab *types.CollaboratorError
		if !errors.As(err, &collab) {
			err = &types.CollaboratorError{Operation: operation, Message: "scorer failed", Cause: err}
		}
		return p.fail(ctx, log, sessionID, err)
	}

	st, err := p.store.Dispatch(ctx, session.ApplyEvaluation{
		SessionID:   sessionID,
		Evaluations: res.Evaluations,
		Text:        res.Summary,
	})
	if errors.Is(err, types.ErrStaleSession) {
		log.Warn("ignoring evaluation for a replaced session")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to apply evaluation: %w", err)
	}
	log.Info("evaluation applied", zap.Float64("total_score", st.Session.Summary.TotalScore))

	record := archive.CandidateRecord{
		Profile:     contact,
		Questions:   st.Session.Questions,
		Answers:     st.Session.Answers,
		Summary:     st.Session.Summary,
		CompletedAt: p.now().UTC(),
	}
	if _, err := p.store.Dispatch(ctx, archive.AddCandidate{Record: record}); err != nil {
		log.Error("failed to archive candidate", zap.Error(err))
		return fmt.Errorf("failed to archive candidate: %w", err)
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, log *zap.Logger, sessionID string, cause error) error {
	log.Error("evaluation failed", zap.Error(cause))
	_, err := p.store.Dispatch(ctx, session.Fail{
		SessionID: sessionID,
		Reason:    "Evaluation failed: " + cause.Error(),
	})
	if errors.Is(err, types.ErrStaleSession) {
		log.Warn("ignoring evaluation failure for a replaced session")
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to record evaluation failure: %w", err)
	}
	return cause
}

// scorerAnswers copies answers, substituting the no-answer text for empty ones.
func scorerAnswers(answers []types.Answer) []types.Answer {
	out := make([]types.Answer, len(answers))
	for i, a := range answers {
		out[i] = a
		if a.AnswerText == "" {
			out[i].AnswerText = types.ScorerNoAnswerText
		}
	}
	return out
}

// checkResult enforces positional alignment and the score range.
func checkResult(res llm.ScoreResult, answers int) error {
	if len(res.Evaluations) != answers {
		return &types.CollaboratorError{
			Operation: operation,
			Message:   fmt.Sprintf("got %d evaluations for %d answers", len(res.Evaluations), answers),
		}
	}
	for i, e := range res.Evaluations {
		if math.IsNaN(e.Score) || e.Score < 0 || e.Score > types.MaxScorePerAnswer {
			return &types.CollaboratorError{
				Operation: operation,
				Message:   fmt.Sprintf("evaluation %d has score %v outside [0, %v]", i, e.Score, types.MaxScorePerAnswer),
			}
		}
	}
	return nil
}
