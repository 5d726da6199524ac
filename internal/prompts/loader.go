// Package prompts holds the prompt templates of the two interview
// collaborators. Templates live in interview.json, embedded at compile time,
// and use {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// File is the embedded template file.
const File = "interview.json"

// Key names a template.
type Key string

const (
	GenerateQuestions Key = "generate-questions"
	EvaluateAnswers   Key = "evaluate-answers"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var (
	loadOnce  sync.Once
	templates map[Key]string
	loadErr   error
)

// MissingValueError is returned by Render when a placeholder has no value.
type MissingValueError struct {
	Key   Key
	Names []string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("prompt %s: no value for %s", e.Key, strings.Join(e.Names, ", "))
}

func load() (map[Key]string, error) {
	loadOnce.Do(func() {
		data, err := promptFiles.ReadFile(File)
		if err != nil {
			loadErr = fmt.Errorf("failed to read prompt file %s: %w", File, err)
			return
		}
		var parsed map[Key]string
		if err := json.Unmarshal(data, &parsed); err != nil {
			loadErr = fmt.Errorf("failed to parse prompt file %s: %w", File, err)
			return
		}
		templates = parsed
	})
	return templates, loadErr
}

// Get returns the raw template for key.
func Get(key Key) (string, error) {
	all, err := load()
	if err != nil {
		return "", err
	}
	tmpl, ok := all[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, File)
	}
	return tmpl, nil
}

// Placeholders returns the placeholder names of a template in order of first use.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render fills the template for key from data. Every placeholder needs a
// value; unused values are ignored. Values are inserted verbatim, so résumé
// text that happens to contain "{{.X}}" is never expanded.
func Render(key Key, data map[string]string) (string, error) {
	tmpl, err := Get(key)
	if err != nil {
		return "", err
	}

	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		value, ok := data[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return value
	})
	if len(missing) > 0 {
		return "", &MissingValueError{Key: key, Names: missing}
	}
	return out, nil
}

// Keys lists the embedded templates, sorted.
func Keys() ([]Key, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}
