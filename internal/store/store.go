// Package store provides the process-wide state container: three partitions
// (profile, session, archive) behind a single serialized dispatch path,
// with write-through persistence and change notifications.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/session"
)

// Partition names a persisted slice of the container.
type Partition string

const (
	PartitionProfile Partition = "profile"
	PartitionSession Partition = "session"
	PartitionArchive Partition = "archive"
)

// Partitions lists every partition in persistence order.
var Partitions = []Partition{PartitionProfile, PartitionSession, PartitionArchive}

// State is a snapshot of the whole container.
type State struct {
	Profile profile.Profile `json:"profile"`
	Session session.Session `json:"session"`
	Archive archive.Archive `json:"archive"`
}

// Initial returns the container with every partition at its initial value.
func Initial() State {
	return State{
		Profile: profile.Initial(),
		Session: session.Initial(),
		Archive: archive.Initial(),
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Profile: s.Profile.Clone(),
		Session: s.Session.Clone(),
		Archive: s.Archive.Clone(),
	}
}

// Command is anything the store can dispatch: a session, profile or archive command.
type Command interface {
	Name() string
}

// Event is delivered to subscribers after every accepted command.
type Event struct {
	Command    string      `json:"command"`
	Partitions []Partition `json:"partitions"`
	State      State       `json:"state"`
}

// Store owns the container. All mutations go through Dispatch.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	logger  *zap.Logger

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New creates a store with initial partitions. storage may be nil for a purely in-memory store.
func New(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:   Initial(),
		storage: storage,
		logger:  logger,
		subs:    make(map[int]chan Event),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies cmd, persists the partitions it changed and notifies subscribers.
// A rejected command leaves the state untouched and returns the error.
func (s *Store) Dispatch(ctx context.Context, cmd Command) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, touched, err := reduce(s.state, cmd)
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next

	s.persist(ctx, touched)
	snapshot := next.Clone()
	s.publish(Event{Command: cmd.Name(), Partitions: touched, State: snapshot})
	return snapshot, nil
}

// reduce routes cmd to its partition. The two reset commands are the only
// ones that reach across partitions.
func reduce(st State, cmd Command) (State, []Partition, error) {
	next := st.Clone()
	switch c := cmd.(type) {
	case session.Reset:
		next.Session = session.Initial()
		transcript := st.Profile.Clone().ChatHistory
		next.Profile = profile.Initial()
		next.Profile.ChatHistory = transcript
		return next, []Partition{PartitionSession, PartitionProfile}, nil
	case profile.Reset:
		next.Profile = profile.Initial()
		return next, []Partition{PartitionProfile}, nil
	case session.Command:
		s, err := session.Apply(st.Session, c)
		if err != nil {
			return st, nil, err
		}
		next.Session = s
		return next, []Partition{PartitionSession}, nil
	case profile.Command:
		p, err := profile.Apply(st.Profile, c)
		if err != nil {
			return st, nil, err
		}
		next.Profile = p
		return next, []Partition{PartitionProfile}, nil
	case archive.Command:
		a, err := archive.Apply(st.Archive, c)
		if err != nil {
			return st, nil, err
		}
		next.Archive = a
		return next, []Partition{PartitionArchive}, nil
	default:
		return st, nil, fmt.Errorf("unknown command %T", cmd)
	}
}

func (s *Store) persist(ctx context.Context, partitions []Partition) {
	if s.storage == nil {
		return
	}
	for _, p := range partitions {
		data, err := json.Marshal(s.partitionValue(p))
		if err != nil {
			s.logger.Error("failed to encode partition", zap.String("partition", string(p)), zap.Error(err))
			continue
		}
		if err := s.storage.Save(ctx, string(p), data); err != nil {
			s.logger.Error("failed to persist partition", zap.String("partition", string(p)), zap.Error(err))
		}
	}
}

func (s *Store) partitionValue(p Partition) any {
	switch p {
	case PartitionProfile:
		return s.state.Profile
	case PartitionSession:
		return s.state.Session
	default:
		return s.state.Archive
	}
}

// Subscribe registers for change events. Slow subscribers observe only the
// latest event: an undelivered older event is dropped in its favor.
// The returned function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Event, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
