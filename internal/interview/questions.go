package interview

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/timer"
	"github.com/jonathan/interview-coach/internal/types"
)

// openQuestion posts question index of s and arms a fresh countdown for it.
// It reports false, opening nothing, when s has no question at index.
// The caller holds c.mu.
func (c *Controller) openQuestion(ctx context.Context, s session.Session, index int) bool {
	c.closeQuestion()
	if index < 0 || index >= len(s.Questions) {
		c.logger.Error("no question to open",
			zap.String("session_id", s.ID),
			zap.Int("index", index),
			zap.Int("questions", len(s.Questions)))
		return false
	}

	q := s.Questions[index]
	duration := timer.DurationFor(q.Difficulty)
	c.active = activeQuestion{
		sessionID: s.ID,
		index:     index,
		duration:  duration,
		stopwatch: timer.StartStopwatch(c.clock),
		open:      true,
	}
	c.post(ctx, questionMessage(q, index, len(s.Questions)))

	countdown := &timer.Countdown{}
	countdown.Start(duration)
	c.countdown = countdown

	runCtx, cancel := context.WithCancel(c.ctx)
	c.stopTicker = cancel
	ticks, stop := c.ticker()
	sessionID := s.ID

	c.timerWG.Add(1)
	go func() {
		defer c.timerWG.Done()
		defer stop()
		timer.Run(runCtx, countdown, ticks,
			func(remaining int) {
				if c.onTick != nil {
					c.onTick(index, remaining)
				}
			},
			func() { c.expire(sessionID, index) },
		)
	}()

	c.logger.Info("question opened",
		zap.String("session_id", s.ID),
		zap.Int("index", index),
		zap.String("difficulty", string(q.Difficulty)),
		zap.Int("seconds", duration))
	return true
}

// closeQuestion stops the countdown of the open question. The caller holds c.mu.
func (c *Controller) closeQuestion() {
	if c.stopTicker != nil {
		c.stopTicker()
		c.stopTicker = nil
	}
	if c.countdown != nil {
		c.countdown.Cancel()
	}
	c.active.open = false
}

// SubmitAnswer commits the candidate's answer for the question at index.
// Whichever of this call and the question's timeout gets here first wins; the
// other finds the question closed.
func (c *Controller) SubmitAnswer(ctx context.Context, index int, text string) error {
	req := types.SubmitAnswerRequest{Index: index, Answer: text}
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active.open {
		return ErrAnswerClosed
	}
	if index != c.active.index {
		if index < c.active.index {
			return ErrAnswerClosed
		}
		return &types.InvalidInputError{
			Field:   "index",
			Message: fmt.Sprintf("question %d is open, not %d", c.active.index, index),
		}
	}
	timeTaken := c.active.stopwatch.ElapsedSeconds(c.active.duration)
	return c.commit(ctx, c.active.sessionID, index, text, timeTaken)
}

// expire records an empty answer that used the full duration.
func (c *Controller) expire(sessionID string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active.open || c.active.sessionID != sessionID || c.active.index != index {
		return
	}
	c.logger.Info("question timed out", zap.Int("index", index))
	if err := c.commit(c.ctx, sessionID, index, "", c.active.duration); err != nil && !errors.Is(err, ErrAnswerClosed) {
		c.logger.Error("failed to record timed out answer", zap.Error(err))
	}
}

// commit closes the question, then records the answer and moves on.
// The caller holds c.mu.
func (c *Controller) commit(ctx context.Context, sessionID string, index int, text string, timeTaken int) error {
	if !c.active.open || c.active.sessionID != sessionID || c.active.index != index {
		return ErrAnswerClosed
	}
	c.closeQuestion()

	st, err := c.store.Dispatch(ctx, session.SubmitAnswer{Index: index, Text: text, TimeTaken: timeTaken})
	if err != nil {
		return err
	}
	answer := st.Session.Answers[len(st.Session.Answers)-1]
	c.post(ctx, userMessage(answer.DisplayText()))

	switch st.Session.Status {
	case session.StatusInProgress:
		c.openQuestion(ctx, st.Session, st.Session.CurrentQuestionIndex)
	case session.StatusEvaluating:
		c.post(ctx, systemMessage(msgInterviewComplete))
		c.startEvaluation(sessionID)
	}
	return nil
}

// startEvaluation hands the session to the pipeline in the background.
// The caller holds c.mu.
func (c *Controller) startEvaluation(sessionID string) {
	if c.evaluating == sessionID {
		return
	}
	c.evaluating = sessionID

	c.evalWG.Add(1)
	go func() {
		defer c.evalWG.Done()
		err := c.pipeline.Run(c.ctx, sessionID)

		c.mu.Lock()
		if c.evaluating == sessionID {
			c.evaluating = ""
		}
		c.mu.Unlock()

		snap := c.store.Snapshot()
		if snap.Session.ID != sessionID {
			return
		}
		var collab *types.CollaboratorError
		switch {
		case err == nil:
			summary := snap.Session.Summary
			c.post(c.ctx, systemMessage(fmt.Sprintf("Your score: %g / %g\n\n%s", summary.TotalScore, snap.Session.MaxScore(), summary.Text)))
		case errors.As(err, &collab):
			c.post(c.ctx, systemMessage(msgEvaluationFailed))
		case errors.Is(err, types.ErrStaleSession):
		default:
			c.logger.Error("evaluation did not finish cleanly", zap.Error(err))
		}
	}()
}
