// Package main provides the interview_agent CLI: the HTTP API server, a
// terminal practice interview and a few local utilities.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "Interview practice coach",
	Long:  "Interview coach turns an uploaded résumé into a timed six-question interview, scores the answers and keeps an archive of finished candidates for interviewers.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values override the environment)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
