package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/archive"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/types"
)

func questions() []types.Question {
	opts := []string{"a", "b", "c", "d"}
	return []types.Question{
		{Text: "q1", Difficulty: types.DifficultyEasy, Options: opts},
		{Text: "q2", Difficulty: types.DifficultyEasy, Options: opts},
		{Text: "q3", Difficulty: types.DifficultyMedium},
		{Text: "q4", Difficulty: types.DifficultyMedium},
		{Text: "q5", Difficulty: types.DifficultyHard},
		{Text: "q6", Difficulty: types.DifficultyHard},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func dispatch(t *testing.T, s *Store, cmds ...Command) State {
	t.Helper()
	var st State
	for _, c := range cmds {
		var err error
		st, err = s.Dispatch(context.Background(), c)
		require.NoError(t, err, c.Name())
	}
	return st
}

// populated returns a store where every partition holds non-initial data.
func populated(t *testing.T, storage Storage) *Store {
	t.Helper()
	s := New(storage, nil)
	dispatch(t, s,
		profile.SetProfile{FullName: "Jane Doe", Email: "jane@example.com", Phone: "4155550134", ResumeText: "resume",
			ResumeFile: &types.FileMeta{Name: "cv.pdf", Type: "application/pdf"}},
		profile.AddMessage{Message: types.ChatMessage{Sender: types.SenderSystem, Text: "hello"}},
		profile.AddMessage{Message: types.ChatMessage{Sender: types.SenderUser, Text: "hi"}},
		archive.AddCandidate{Record: archive.CandidateRecord{
			Profile: archive.Contact{Name: "John", Email: "john@example.com"},
			Summary: types.NewSummary([]types.Evaluation{{Score: 7}}, "fine"),
		}},
		session.SetOwner{OwnerID: "user-1"},
		session.NewLoadQuestions(questions()),
		session.SubmitAnswer{Index: 0, Text: "a", TimeTaken: 4},
	)
	return s
}

func TestDispatch_SingleCommandTouchesOnePartition(t *testing.T) {
	s := populated(t, nil)
	before := s.Snapshot()

	after := dispatch(t, s, session.SubmitAnswer{Index: 1, Text: "b", TimeTaken: 2})
	assert.Equal(t, mustJSON(t, before.Profile), mustJSON(t, after.Profile))
	assert.Equal(t, mustJSON(t, before.Archive), mustJSON(t, after.Archive))
	assert.Equal(t, 2, after.Session.CurrentQuestionIndex)

	before = after
	after = dispatch(t, s, profile.AddMessage{Message: types.ChatMessage{Sender: types.SenderUser, Text: "x"}})
	assert.Equal(t, mustJSON(t, before.Session), mustJSON(t, after.Session))
	assert.Equal(t, mustJSON(t, before.Archive), mustJSON(t, after.Archive))

	before = after
	after = dispatch(t, s, archive.AddCandidate{Record: archive.CandidateRecord{Profile: archive.Contact{Email: "new@example.com"}}})
	assert.Equal(t, mustJSON(t, before.Session), mustJSON(t, after.Session))
	assert.Equal(t, mustJSON(t, before.Profile), mustJSON(t, after.Profile))
}

func TestDispatch_ResetSession(t *testing.T) {
	s := populated(t, nil)
	before := s.Snapshot()

	after := dispatch(t, s, session.Reset{})
	assert.Equal(t, mustJSON(t, session.Initial()), mustJSON(t, after.Session))
	assert.Equal(t, mustJSON(t, before.Archive), mustJSON(t, after.Archive))
	assert.Equal(t, before.Profile.ChatHistory, after.Profile.ChatHistory)
	assert.Empty(t, after.Profile.Name)
	assert.Empty(t, after.Profile.ResumeText)
	assert.Nil(t, after.Profile.ResumeFile)
}

func TestDispatch_ResetProfile(t *testing.T) {
	s := populated(t, nil)
	before := s.Snapshot()

	after := dispatch(t, s, profile.Reset{})
	assert.Equal(t, mustJSON(t, profile.Initial()), mustJSON(t, after.Profile))
	assert.Equal(t, mustJSON(t, before.Session), mustJSON(t, after.Session))
	assert.Equal(t, mustJSON(t, before.Archive), mustJSON(t, after.Archive))
}

func TestDispatch_RejectedCommandLeavesState(t *testing.T) {
	s := populated(t, nil)
	before := mustJSON(t, s.Snapshot())

	_, err := s.Dispatch(context.Background(), session.SubmitAnswer{Index: 5, Text: "skip"})
	var invalid *types.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, before, mustJSON(t, s.Snapshot()))
}

func TestDispatch_StaleCompletion(t *testing.T) {
	s := populated(t, nil)
	staleID := s.Snapshot().Session.ID
	dispatch(t, s, session.Reset{})

	_, err := s.Dispatch(context.Background(), session.ApplyEvaluation{SessionID: staleID})
	assert.True(t, errors.Is(err, types.ErrStaleSession))
}

func TestSnapshot_DoesNotAlias(t *testing.T) {
	s := populated(t, nil)
	snap := s.Snapshot()
	snap.Profile.ChatHistory[0].Text = "mutated"
	snap.Session.Answers[0].AnswerText = "mutated"
	snap.Archive.Candidates[0].Profile.Name = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "hello", fresh.Profile.ChatHistory[0].Text)
	assert.Equal(t, "a", fresh.Session.Answers[0].AnswerText)
	assert.Equal(t, "John", fresh.Archive.Candidates[0].Profile.Name)
}

func TestSubscribe(t *testing.T) {
	s := New(nil, nil)
	events, cancel := s.Subscribe()

	dispatch(t, s, session.SetOwner{OwnerID: "u"})
	select {
	case ev := <-events:
		assert.Equal(t, "set-owner", ev.Command)
		assert.Equal(t, []Partition{PartitionSession}, ev.Partitions)
		assert.Equal(t, "u", ev.State.Session.OwnerID)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
	dispatch(t, s, session.SetOwner{OwnerID: "v"})
}

func TestSubscribe_SlowSubscriberSeesLatest(t *testing.T) {
	s := New(nil, nil)
	events, cancel := s.Subscribe()
	defer cancel()

	dispatch(t, s, session.SetOwner{OwnerID: "first"})
	dispatch(t, s, session.SetOwner{OwnerID: "second"})

	ev := <-events
	assert.Equal(t, "second", ev.State.Session.OwnerID)
}

func TestRehydrate_RoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	original := populated(t, storage).Snapshot()

	restored := New(storage, nil).Rehydrate(context.Background())
	assert.Equal(t, mustJSON(t, original), mustJSON(t, restored))
}

func TestRehydrate_FileBackend(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	original := populated(t, storage).Snapshot()

	restored := New(storage, nil).Rehydrate(context.Background())
	assert.Equal(t, mustJSON(t, original), mustJSON(t, restored))
}

func TestRehydrate_CorruptPartitionFallsBack(t *testing.T) {
	storage := NewMemoryStorage()
	original := populated(t, storage).Snapshot()
	ctx := context.Background()
	require.NoError(t, storage.Save(ctx, string(PartitionSession), []byte(`{"status":"exploded"}`)))
	require.NoError(t, storage.Save(ctx, string(PartitionProfile), []byte(`not json`)))

	restored := New(storage, nil).Rehydrate(ctx)
	assert.Equal(t, mustJSON(t, session.Initial()), mustJSON(t, restored.Session))
	assert.Equal(t, mustJSON(t, profile.Initial()), mustJSON(t, restored.Profile))
	assert.Equal(t, mustJSON(t, original.Archive), mustJSON(t, restored.Archive))
}

func TestRehydrate_InvariantViolationFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		session string
	}{
		{
			name: "index past empty questions",
			session: `{"questions":[],"current_question_index":3,"answers":[],` +
				`"summary":{"evaluations":[],"text":"","total_score":0},"status":"in-progress","owner_id":"u1"}`,
		},
		{
			name: "total not the sum",
			session: `{"questions":[{"question":"q","difficulty":"Hard"}],"current_question_index":0,"answers":[],` +
				`"summary":{"evaluations":[],"text":"","total_score":99},"status":"in-progress","owner_id":"u1"}`,
		},
		{
			name: "answers behind a completed status",
			session: `{"questions":[{"question":"q","difficulty":"Hard"}],"current_question_index":0,"answers":[],` +
				`"summary":{"evaluations":[],"text":"","total_score":0},"status":"completed","owner_id":"u1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			original := populated(t, storage).Snapshot()
			ctx := context.Background()
			require.NoError(t, storage.Save(ctx, string(PartitionSession), []byte(tt.session)))

			restored := New(storage, nil).Rehydrate(ctx)
			assert.Equal(t, mustJSON(t, session.Initial()), mustJSON(t, restored.Session))
			assert.Equal(t, mustJSON(t, original.Profile), mustJSON(t, restored.Profile))
			assert.Equal(t, mustJSON(t, original.Archive), mustJSON(t, restored.Archive))
		})
	}
}

func TestRehydrate_EmptyStorage(t *testing.T) {
	restored := New(NewMemoryStorage(), nil).Rehydrate(context.Background())
	assert.Equal(t, mustJSON(t, Initial()), mustJSON(t, restored))
}

type failingStorage struct{}

func (failingStorage) Load(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (failingStorage) Save(context.Context, string, []byte) error   { return errors.New("down") }
func (failingStorage) Close() error                                 { return nil }

func TestStorageFailuresDoNotBlockDispatch(t *testing.T) {
	s := New(failingStorage{}, nil)
	assert.Equal(t, mustJSON(t, Initial()), mustJSON(t, s.Rehydrate(context.Background())))

	st := dispatch(t, s, session.SetOwner{OwnerID: "u"})
	assert.Equal(t, "u", st.Session.OwnerID)
}

func TestFileStorage_NotFound(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	_, err = storage.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	st, err := OpenStorage(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, st)

	st, err = OpenStorage(ctx, Options{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, st)

	_, err = OpenStorage(ctx, Options{Backend: BackendRedis})
	assert.Error(t, err)
	_, err = OpenStorage(ctx, Options{Backend: "s3"})
	assert.Error(t, err)
}
