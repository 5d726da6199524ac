package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_GenerateQuestions(t *testing.T) {
	prompt, err := Get(GenerateQuestions)
	require.NoError(t, err)
	assert.Contains(t, prompt, "exactly 6 interview questions")
	assert.Contains(t, prompt, "{{.ResumeText}}")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestKeys(t *testing.T) {
	keys, err := Keys()
	require.NoError(t, err)
	assert.Equal(t, []Key{EvaluateAnswers, GenerateQuestions}, keys)
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		key  Key
		want []string
	}{
		{GenerateQuestions, []string{"ResumeText", "JobDescription"}},
		{EvaluateAnswers, []string{"ResumeText", "JobDescription", "Answers"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			tmpl, err := Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Placeholders(tmpl))
		})
	}
}

func TestRender(t *testing.T) {
	out, err := Render(GenerateQuestions, map[string]string{
		"ResumeText":     "Go developer",
		"JobDescription": "Backend role",
		"Unused":         "ignored",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Go developer")
	assert.Contains(t, out, "Backend role")
	assert.NotContains(t, out, "{{.")
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render(EvaluateAnswers, map[string]string{"ResumeText": "x"})

	var missing *MissingValueError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, EvaluateAnswers, missing.Key)
	assert.Equal(t, []string{"JobDescription", "Answers"}, missing.Names)
}

func TestRender_ValuesAreNotExpanded(t *testing.T) {
	out, err := Render(GenerateQuestions, map[string]string{
		"ResumeText":     "I wrote {{.JobDescription}} templates",
		"JobDescription": "Backend role",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "I wrote {{.JobDescription}} templates")
}
