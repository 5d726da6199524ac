// Package timer provides the per-question countdown and the loop that drives it.
package timer

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonathan/interview-coach/internal/types"
)

// Resolution is the countdown granularity.
const Resolution = time.Second

// Policy durations, in seconds.
const (
	EasySeconds   = 20
	MediumSeconds = 60
	HardSeconds   = 120
)

// DurationFor returns the time allowed for a question of the given difficulty, in seconds.
func DurationFor(d types.Difficulty) int {
	switch d {
	case types.DifficultyEasy:
		return EasySeconds
	case types.DifficultyMedium:
		return MediumSeconds
	case types.DifficultyHard:
		return HardSeconds
	default:
		return MediumSeconds
	}
}

// Countdown is a tick-driven countdown. It raises a timeout at most once per Start
// and stops ticking until restarted. Safe for concurrent use.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	running   bool
	fired     bool
}

// Start (re)arms the countdown with a fresh duration.
func (c *Countdown) Start(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	c.remaining = seconds
	c.running = true
	c.fired = false
}

// Tick decrements the remaining time, floored at zero. It reports timedOut=true
// exactly once, on the tick that reaches zero.
func (c *Countdown) Tick() (remaining int, timedOut bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.remaining, false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.running = false
		if !c.fired {
			c.fired = true
			return 0, true
		}
	}
	return c.remaining, false
}

// Cancel stops the countdown without raising a timeout.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether the countdown is armed.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Run drives c from ticks until it times out, ctx is cancelled or the countdown
// is cancelled. onTick may be nil. onTimeout is called at most once.
func Run(ctx context.Context, c *Countdown, ticks <-chan time.Time, onTick func(remaining int), onTimeout func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			if !c.Running() {
				return
			}
			remaining, timedOut := c.Tick()
			if onTick != nil {
				onTick(remaining)
			}
			if timedOut {
				onTimeout()
				return
			}
		}
	}
}

// Clock supplies the current time. time.Now readings carry a monotonic component,
// so differences between them are immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Stopwatch measures the time a candidate spends on a question.
type Stopwatch struct {
	clock Clock
	start time.Time
}

// StartStopwatch starts measuring from now.
func StartStopwatch(clock Clock) Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return Stopwatch{clock: clock, start: clock.Now()}
}

// ElapsedSeconds returns the elapsed time rounded to whole seconds and capped at limit.
func (s Stopwatch) ElapsedSeconds(limit int) int {
	if s.clock == nil {
		return 0
	}
	elapsed := int(math.Round(s.clock.Now().Sub(s.start).Seconds()))
	if elapsed < 0 {
		elapsed = 0
	}
	if limit > 0 && elapsed > limit {
		elapsed = limit
	}
	return elapsed
}
