// Package interview coordinates one candidate's run: onboarding, question
// generation, the per-question timer, answer commits and the hand-off to
// evaluation. It is the only package that starts goroutines.
package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/evaluation"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/store"
	"github.com/jonathan/interview-coach/internal/timer"
	"github.com/jonathan/interview-coach/internal/types"
)

// ErrAnswerClosed is returned when an answer arrives for a question that has
// already been committed, by the candidate or by its timer.
var ErrAnswerClosed = errors.New("question is no longer accepting answers")

// TickerFunc returns a channel that delivers one tick per timer resolution,
// and a function that stops it.
type TickerFunc func() (<-chan time.Time, func())

func systemTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(timer.Resolution)
	return t.C, t.Stop
}

// Options configures a Controller.
type Options struct {
	Generator llm.QuestionGenerator
	Scorer    llm.AnswerScorer
	Logger    *zap.Logger
	// Clock measures time spent on a question. Defaults to the system clock.
	Clock timer.Clock
	// Ticker drives countdowns. Defaults to a one-second time.Ticker.
	Ticker TickerFunc
	// OnTick, when set, observes every countdown tick.
	OnTick func(index, remaining int)
}

// Controller drives the interview over a store.
type Controller struct {
	store     *store.Store
	generator llm.QuestionGenerator
	pipeline  *evaluation.Pipeline
	logger    *zap.Logger
	clock     timer.Clock
	ticker    TickerFunc
	onTick    func(index, remaining int)

	ctx     context.Context
	cancel  context.CancelFunc
	timerWG sync.WaitGroup
	evalWG  sync.WaitGroup

	// genMu guards the exactly-once generation flag. genEpoch changes on every
	// reset so a generation that outlives a reset is discarded.
	genMu      sync.Mutex
	generating bool
	genEpoch   int

	// mu serializes answer commits with timer expiry.
	mu         sync.Mutex
	active     activeQuestion
	countdown  *timer.Countdown
	stopTicker context.CancelFunc
	evaluating string
}

// activeQuestion identifies the question currently accepting an answer.
type activeQuestion struct {
	sessionID string
	index     int
	duration  int
	stopwatch timer.Stopwatch
	open      bool
}

// New creates a controller. Close must be called to stop background work.
func New(st *store.Store, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = timer.SystemClock{}
	}
	ticker := opts.Ticker
	if ticker == nil {
		ticker = systemTicker
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:     st,
		generator: opts.Generator,
		pipeline:  evaluation.NewPipeline(st, opts.Scorer, logger),
		logger:    logger,
		clock:     clock,
		ticker:    ticker,
		onTick:    opts.OnTick,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// State returns a snapshot of the store.
func (c *Controller) State() store.State {
	return c.store.Snapshot()
}

// Subscribe registers for store change events. See store.Store.Subscribe.
func (c *Controller) Subscribe() (<-chan store.Event, func()) {
	return c.store.Subscribe()
}

// Remaining reports the open question and its seconds left.
func (c *Controller) Remaining() (index, seconds int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active.open || c.countdown == nil {
		return 0, 0, false
	}
	return c.active.index, c.countdown.Remaining(), true
}

// Wait blocks until background evaluation has finished.
func (c *Controller) Wait() {
	c.evalWG.Wait()
}

// Close stops the timer and waits for background work.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closeQuestion()
	c.mu.Unlock()
	c.cancel()
	c.timerWG.Wait()
	c.evalWG.Wait()
}

func (c *Controller) post(ctx context.Context, m types.ChatMessage) {
	if _, err := c.store.Dispatch(ctx, profile.AddMessage{Message: m}); err != nil {
		c.logger.Error("failed to post message", zap.Error(err))
	}
}

// Resumable reports whether the persisted session may be continued by identity.
func (c *Controller) Resumable(identity string) bool {
	return c.store.Snapshot().Session.Resumable(identity)
}

// Continue resumes a persisted session for its owner. An in-progress session
// gets a fresh timer on its current question; an evaluating session whose
// evaluation is not running is handed to the evaluator again. It reports false
// when there is nothing identity may continue.
func (c *Controller) Continue(ctx context.Context, identity string) (bool, error) {
	snap := c.store.Snapshot()
	if !snap.Session.Resumable(identity) {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch snap.Session.Status {
	case session.StatusInProgress:
		if c.active.open && c.active.sessionID == snap.Session.ID {
			return true, nil
		}
		if !c.openQuestion(ctx, snap.Session, snap.Session.CurrentQuestionIndex) {
			return false, nil
		}
	case session.StatusEvaluating:
		c.startEvaluation(snap.Session.ID)
	}
	c.logger.Info("session continued", zap.String("status", string(snap.Session.Status)))
	return true, nil
}

// ResetSession discards the session and the profile fields, keeping the transcript.
func (c *Controller) ResetSession(ctx context.Context) error {
	c.mu.Lock()
	c.closeQuestion()
	c.evaluating = ""
	c.mu.Unlock()
	c.clearGenerating()

	_, err := c.store.Dispatch(ctx, session.Reset{})
	return err
}

// ResetProfile discards the profile. The session is kept.
func (c *Controller) ResetProfile(ctx context.Context) error {
	c.clearGenerating()
	_, err := c.store.Dispatch(ctx, profile.Reset{})
	return err
}

// Restart returns to résumé upload: reset-session followed by reset-profile.
func (c *Controller) Restart(ctx context.Context) error {
	if err := c.ResetSession(ctx); err != nil {
		return err
	}
	return c.ResetProfile(ctx)
}
