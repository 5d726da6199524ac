package server

import (
	"sync"

	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/store"
)

// Tick is one countdown update of the open question.
type Tick struct {
	Index     int `json:"index"`
	Remaining int `json:"remaining"`
}

// TickHub fans countdown ticks out to event-stream clients. Slow clients
// miss ticks rather than delaying the timer.
type TickHub struct {
	mu   sync.Mutex
	subs map[chan Tick]struct{}
}

// NewTickHub creates an empty hub.
func NewTickHub() *TickHub {
	return &TickHub{subs: make(map[chan Tick]struct{})}
}

// Publish delivers a tick to every subscriber that is ready for it.
// Its signature matches interview.Options.OnTick.
func (h *TickHub) Publish(index, remaining int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- Tick{Index: index, Remaining: remaining}:
		default:
		}
	}
}

// Subscribe registers a subscriber. The returned function unregisters it.
func (h *TickHub) Subscribe() (<-chan Tick, func()) {
	ch := make(chan Tick, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// stateNotification is the payload of a "state" event. Clients fetch GET
// /state for the full view.
type stateNotification struct {
	Command              string            `json:"command"`
	Partitions           []store.Partition `json:"partitions"`
	Status               session.Status    `json:"status"`
	CurrentQuestionIndex int               `json:"current_question_index"`
	Messages             int               `json:"messages"`
}

func newStateNotification(ev store.Event) stateNotification {
	return stateNotification{
		Command:              ev.Command,
		Partitions:           ev.Partitions,
		Status:               ev.State.Session.Status,
		CurrentQuestionIndex: ev.State.Session.CurrentQuestionIndex,
		Messages:             len(ev.State.Profile.ChatHistory),
	}
}
