package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/types"
)

func sampleQuestions() []types.Question {
	opts := []string{"a", "b", "c", "d"}
	return []types.Question{
		{Text: "What does JSX compile to?", Difficulty: types.DifficultyEasy, Options: opts},
		{Text: "Which hook holds state?", Difficulty: types.DifficultyEasy, Options: opts},
		{Text: "Name the Node module system", Difficulty: types.DifficultyMedium},
		{Text: "Which HTTP verb is idempotent?", Difficulty: types.DifficultyMedium},
		{Text: "Explain the event loop", Difficulty: types.DifficultyHard},
		{Text: "Explain reconciliation", Difficulty: types.DifficultyHard},
	}
}

func loaded(t *testing.T) Session {
	t.Helper()
	s, err := Apply(Initial(), NewLoadQuestions(sampleQuestions()))
	require.NoError(t, err)
	return s
}

func answerAll(t *testing.T, s Session) Session {
	t.Helper()
	for i := range s.Questions {
		var err error
		s, err = Apply(s, SubmitAnswer{Index: i, Text: "answer", TimeTaken: 3})
		require.NoError(t, err)
	}
	return s
}

func TestLoadQuestions_Empty(t *testing.T) {
	s := Initial()
	next, err := Apply(s, NewLoadQuestions(nil))

	var invalid *types.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, s, next)
}

func TestLoadQuestions_ResetsPriorRun(t *testing.T) {
	s := answerAll(t, loaded(t))
	require.Equal(t, StatusEvaluating, s.Status)
	s.OwnerID = "user-1"

	next, err := Apply(s, NewLoadQuestions(sampleQuestions()))
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, next.Status)
	assert.Equal(t, 0, next.CurrentQuestionIndex)
	assert.Empty(t, next.Answers)
	assert.Equal(t, 0.0, next.Summary.TotalScore)
	assert.NotEqual(t, s.ID, next.ID)
	assert.Equal(t, "user-1", next.OwnerID)
}

func TestSubmitAnswer_WalksEveryIndexOnce(t *testing.T) {
	s := loaded(t)
	n := len(s.Questions)
	evaluatingTransitions := 0

	for i := 0; i < n; i++ {
		require.Equal(t, i, s.CurrentQuestionIndex)
		before := s.Status
		var err error
		s, err = Apply(s, SubmitAnswer{Index: i, Text: "x", TimeTaken: 1})
		require.NoError(t, err)
		if before == StatusInProgress && s.Status == StatusEvaluating {
			evaluatingTransitions++
		}
		assert.Len(t, s.Answers, i+1)
	}

	assert.Equal(t, 1, evaluatingTransitions)
	assert.Equal(t, StatusEvaluating, s.Status)
	for _, a := range s.Answers {
		assert.Equal(t, 0.0, a.Score)
		assert.Empty(t, a.Feedback)
	}
}

func TestSubmitAnswer_RejectsWrongIndex(t *testing.T) {
	s := loaded(t)
	s, err := Apply(s, SubmitAnswer{Index: 0, Text: "first"})
	require.NoError(t, err)

	// A second commit for index 0 (e.g. a late timeout) must not record another answer.
	next, err := Apply(s, SubmitAnswer{Index: 0, Text: ""})
	var invalid *types.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Len(t, next.Answers, 1)
	assert.Equal(t, 1, next.CurrentQuestionIndex)
}

func TestSubmitAnswer_RejectedAfterEvaluationStarts(t *testing.T) {
	s := answerAll(t, loaded(t))
	_, err := Apply(s, SubmitAnswer{Index: len(s.Questions), Text: "late"})

	var transition *types.TransitionError
	require.True(t, errors.As(err, &transition))
	assert.Equal(t, string(StatusEvaluating), transition.From)
}

func TestSubmitAnswer_EmptyTextIsAnAnswer(t *testing.T) {
	s, err := Apply(loaded(t), SubmitAnswer{Index: 0, Text: "", TimeTaken: 20})
	require.NoError(t, err)
	require.Len(t, s.Answers, 1)
	assert.Equal(t, "", s.Answers[0].AnswerText)
	assert.Equal(t, types.NoAnswerText, s.Answers[0].DisplayText())
}

func TestApplyEvaluation_MergesByIndex(t *testing.T) {
	s := answerAll(t, loaded(t))
	scores := []float64{8, 7, 9, 6, 5, 10}
	evals := make([]types.Evaluation, len(scores))
	for i, sc := range scores {
		evals[i] = types.Evaluation{Score: sc, Feedback: "fb"}
	}

	next, err := Apply(s, ApplyEvaluation{SessionID: s.ID, Evaluations: evals, Text: "good"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, next.Status)
	assert.Equal(t, 45.0, next.Summary.TotalScore)
	assert.Equal(t, 60.0, next.MaxScore())
	for i, a := range next.Answers {
		assert.Equal(t, scores[i], a.Score)
	}
	// The input session is untouched.
	assert.Equal(t, 0.0, s.Answers[0].Score)
}

func TestApplyEvaluation_StaleSessionIsRejected(t *testing.T) {
	s := answerAll(t, loaded(t))
	_, err := Apply(s, ApplyEvaluation{SessionID: "other", Evaluations: make([]types.Evaluation, 6)})
	assert.ErrorIs(t, err, types.ErrStaleSession)

	reset, err := Apply(s, Reset{})
	require.NoError(t, err)
	_, err = Apply(reset, ApplyEvaluation{SessionID: s.ID, Evaluations: make([]types.Evaluation, 6)})
	assert.ErrorIs(t, err, types.ErrStaleSession)
}

func TestApplyEvaluation_LengthMismatch(t *testing.T) {
	s := answerAll(t, loaded(t))
	_, err := Apply(s, ApplyEvaluation{SessionID: s.ID, Evaluations: make([]types.Evaluation, 5)})
	var invalid *types.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestFail_KeepsAnswers(t *testing.T) {
	s := answerAll(t, loaded(t))
	next, err := Apply(s, Fail{SessionID: s.ID, Reason: "scorer unavailable"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, next.Status)
	assert.Equal(t, "scorer unavailable", next.Error)
	assert.Len(t, next.Answers, 6)

	// failed is a dead end.
	_, err = Apply(next, ApplyEvaluation{SessionID: s.ID, Evaluations: make([]types.Evaluation, 6)})
	var transition *types.TransitionError
	assert.True(t, errors.As(err, &transition))
}

func TestFail_OnlyFromEvaluating(t *testing.T) {
	s := loaded(t)
	_, err := Apply(s, Fail{SessionID: s.ID, Reason: "x"})
	var transition *types.TransitionError
	assert.True(t, errors.As(err, &transition))
}

func TestResumable(t *testing.T) {
	s := loaded(t)
	s.OwnerID = "alice"
	assert.True(t, s.Resumable("alice"))
	assert.False(t, s.Resumable("bob"))
	assert.False(t, s.Resumable(""))
	assert.False(t, Initial().Resumable("alice"))
}

func TestSetOwner(t *testing.T) {
	s, err := Apply(Initial(), SetOwner{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", s.OwnerID)
	assert.Equal(t, StatusIdle, s.Status)
}

func TestClone_NoAliasing(t *testing.T) {
	s := loaded(t)
	c := s.Clone()
	c.Questions[0].Options[0] = "mutated"
	assert.Equal(t, "a", s.Questions[0].Options[0])
}
