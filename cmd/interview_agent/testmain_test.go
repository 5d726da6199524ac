package main

import (
	"os"
	"testing"
)

// TestMain pins the environment of in-process and binary tests: state stays
// in memory and no API key reaches the collaborators, so nothing is written
// to the working directory and no remote model is called.
func TestMain(m *testing.M) {
	for key, value := range map[string]string{
		"INTERVIEW_STORAGE_BACKEND": "memory",
		"INTERVIEW_OFFLINE":         "true",
		"INTERVIEW_LOG_LEVEL":       "error",
	} {
		_ = os.Setenv(key, value)
	}
	_ = os.Unsetenv("GEMINI_API_KEY")
	_ = os.Unsetenv("INTERVIEW_GEMINI_API_KEY")

	os.Exit(m.Run())
}
