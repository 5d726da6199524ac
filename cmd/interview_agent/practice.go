package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/profile"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/timer"
	"github.com/jonathan/interview-coach/internal/types"
)

// practiceIdentity owns sessions started from the terminal.
const practiceIdentity = "local"

// warnAt is the remaining time at which the terminal prints a reminder.
const warnAt = 5

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a timed interview in the terminal",
	Long: `Runs the full interview in the terminal: the résumé is read, missing contact
details are asked for, six questions are asked under their time limits and the
answers are scored. Type an answer and press Enter; an unanswered question is
submitted empty when its time runs out.`,
	RunE: runPractice,
}

var (
	practiceResume  string
	practiceJob     string
	practiceBank    string
	practiceOffline bool
)

func init() {
	practiceCmd.Flags().StringVarP(&practiceResume, "resume", "r", "", "Path to résumé file: PDF, DOCX, HTML or text (required)")
	practiceCmd.Flags().StringVarP(&practiceJob, "job", "j", "", "Path to job description file (optional)")
	practiceCmd.Flags().StringVar(&practiceBank, "bank", "", "YAML question bank for offline runs (defaults to the built-in bank)")
	practiceCmd.Flags().BoolVar(&practiceOffline, "offline", false, "Use the question bank and heuristic scorer even when an API key is set")

	practiceCmd.MarkFlagRequired("resume") //nolint:errcheck

	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if practiceBank != "" {
		cfg.QuestionBank = practiceBank
	}
	cfg.Offline = cfg.Offline || practiceOffline

	resume, err := readDocumentFile(practiceResume)
	if err != nil {
		return err
	}
	var job *interview.Document
	if practiceJob != "" {
		doc, err := readDocumentFile(practiceJob)
		if err != nil {
			return err
		}
		job = &doc
	}

	logger, err := commandLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	ctrl := interview.New(env.store, interview.Options{
		Generator: env.generator,
		Scorer:    env.scorer,
		Logger:    logging.Named(logger, "interview"),
		OnTick: func(_, remaining int) {
			if remaining == warnAt {
				fmt.Fprintf(out, "  %d seconds left\n", remaining)
			}
		},
	})
	defer ctrl.Close()

	// A terminal run always starts over; the archive is kept.
	if err := ctrl.Restart(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "Reading your résumé...")
	if err := ctrl.UploadResume(ctx, practiceIdentity, resume, job); err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}
	return practiceLoop(ctx, ctrl, readLines(cmd.InOrStdin()), out)
}

// readDocumentFile loads a local file as an upload.
func readDocumentFile(path string) (interview.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return interview.Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return interview.Document{Name: name, Type: ingestion.DetectMimeType(name, data), Data: data}, nil
}

// readLines delivers input lines until EOF, then closes the channel.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()
	return lines
}

var errInputClosed = errors.New("input closed before the interview finished")

// practiceLoop drives the controller from terminal input until the session
// completes or fails.
func practiceLoop(ctx context.Context, ctrl *interview.Controller, lines <-chan string, out io.Writer) error {
	printer := observability.NewPrinter(out)
	events, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	shown := -1
	for {
		snap := ctrl.State()
		switch snap.Session.Status {
		case session.StatusIdle:
			field, missing := snap.Profile.NextMissingField()
			if snap.Profile.Status != profile.StatusSucceeded || !missing {
				return fmt.Errorf("interview could not start: %s", lastSystemMessage(snap.Profile.ChatHistory))
			}
			fmt.Fprintln(out, profile.MissingFieldPrompt(field))
			line, err := nextLine(ctx, lines)
			if err != nil {
				return err
			}
			err = ctrl.ProvideField(ctx, line)
			var invalid *types.InvalidInputError
			if errors.As(err, &invalid) {
				fmt.Fprintf(out, "  %s\n", invalid.Message)
			} else if err != nil {
				return err
			}

		case session.StatusInProgress:
			index := snap.Session.CurrentQuestionIndex
			q, _ := snap.Session.CurrentQuestion()
			if index != shown {
				printer.PrintQuestion(q, index, len(snap.Session.Questions), timer.DurationFor(q.Difficulty))
				shown = index
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-events:
				// A timeout moved the interview on.
			case line, ok := <-lines:
				if !ok {
					return errInputClosed
				}
				if err := ctrl.SubmitAnswer(ctx, index, line); errors.Is(err, interview.ErrAnswerClosed) {
					fmt.Fprintln(out, "  Time ran out on that question.")
				} else if err != nil {
					fmt.Fprintf(out, "  %v\n", err)
				}
			}

		case session.StatusEvaluating:
			if shown != len(snap.Session.Questions) {
				fmt.Fprintln(out, "Scoring your answers...")
				shown = len(snap.Session.Questions)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-events:
			}

		case session.StatusCompleted:
			printer.PrintSession(snap.Session)
			printer.PrintSummary(snap.Session)
			return nil

		case session.StatusFailed:
			printer.PrintSession(snap.Session)
			return fmt.Errorf("evaluation failed: %s", snap.Session.Error)
		}
	}
}

func nextLine(ctx context.Context, lines <-chan string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lines:
		if !ok {
			return "", errInputClosed
		}
		return line, nil
	}
}

func lastSystemMessage(history []types.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == types.SenderSystem {
			return history[i].Text
		}
	}
	return "no questions were generated"
}
