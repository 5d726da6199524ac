package store

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/schemas"
	"github.com/jonathan/interview-coach/internal/session"
)

// Rehydrate loads every partition from storage. Each partition is restored
// whole or not at all: a missing, unreadable or schema-violating partition
// falls back to its initial value and never aborts startup. A session must
// also pass session.Validate, since a schema-valid document can still hold
// an index or total no sequence of commands could have produced.
func (s *Store) Rehydrate(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Initial()
	if s.storage == nil {
		s.state = next
		return next.Clone()
	}

	var p profile.Profile
	if s.load(ctx, PartitionProfile, schemas.Profile, &p, nil) {
		next.Profile = p
	}
	var sess session.Session
	if s.load(ctx, PartitionSession, schemas.Session, &sess, func() error { return sess.Validate() }) {
		next.Session = sess
	}
	var a archive.Archive
	if s.load(ctx, PartitionArchive, schemas.Archive, &a, nil) {
		next.Archive = a
	}

	// Cloning turns null collections from older snapshots into empty ones.
	s.state = next.Clone()
	return s.state.Clone()
}

// load decodes partition p into into. check, when set, runs on the decoded
// value; a failing check discards it.
func (s *Store) load(ctx context.Context, p Partition, schema schemas.Name, into any, check func() error) bool {
	log := s.logger.With(zap.String("partition", string(p)))

	data, err := s.storage.Load(ctx, string(p))
	if errors.Is(err, ErrNotFound) {
		log.Info("no persisted partition, starting fresh")
		return false
	}
	if err != nil {
		log.Warn("failed to read partition, using initial value", zap.Error(err))
		return false
	}
	if err := schemas.Validate(schema, data); err != nil {
		log.Warn("persisted partition is corrupt, using initial value", zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, into); err != nil {
		log.Warn("failed to decode partition, using initial value", zap.Error(err))
		return false
	}
	if check != nil {
		if err := check(); err != nil {
			log.Warn("persisted partition breaks its invariants, using initial value", zap.Error(err))
			return false
		}
	}
	return true
}
