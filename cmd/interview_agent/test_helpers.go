package main

import (
	"os"
	"path/filepath"
	"testing"
)

// binaryEnv overrides the location of the built binary.
const binaryEnv = "INTERVIEW_AGENT_BIN"

// getBinaryPath returns the interview_agent binary, skipping the test when it
// has not been built or when running in short mode.
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := os.Getenv(binaryEnv)
	if binaryPath == "" {
		binaryPath = filepath.Join("..", "..", "bin", "interview_agent")
	}
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("Binary not found at %s, build it with 'go build -o bin/interview_agent ./cmd/interview_agent' or set %s", binaryPath, binaryEnv)
	}
	return binaryPath
}
