package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/store"
)

// environment is the wiring shared by the commands: a rehydrated store over
// the configured backend and the two collaborators.
type environment struct {
	store     *store.Store
	storage   store.Storage
	generator llm.QuestionGenerator
	scorer    llm.AnswerScorer
	client    llm.Client
}

// openStore connects the configured storage backend and rehydrates the store from it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, store.Storage, error) {
	storage, err := store.OpenStorage(ctx, store.Options{
		Backend:       store.Backend(cfg.StorageBackend),
		Dir:           cfg.StorageDir,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DatabaseURL:   cfg.DatabaseURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	st := store.New(storage, logger.Named("store"))
	snap := st.Rehydrate(ctx)
	logger.Info("state rehydrated",
		zap.String("backend", cfg.StorageBackend),
		zap.String("session_status", string(snap.Session.Status)),
		zap.Int("candidates", len(snap.Archive.Candidates)))
	return st, storage, nil
}

// openEnvironment builds the store and the collaborators. Without an API key,
// or with offline set, questions come from the YAML bank and answers are
// scored heuristically.
func openEnvironment(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*environment, error) {
	st, storage, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	env := &environment{store: st, storage: storage}

	if cfg.UseOffline() {
		bank, err := loadBank(cfg.QuestionBank)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.generator = llm.NewBankGenerator(bank, uint64(time.Now().UnixNano()))
		env.scorer = llm.NewHeuristicScorer(bank)
		logger.Info("using offline collaborators", zap.Int("bank_questions", len(bank.Questions)))
		return env, nil
	}

	client, err := llm.NewGeminiClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		env.Close()
		return nil, err
	}
	interviewer := llm.NewInterviewer(client)
	env.client = client
	env.generator = interviewer
	env.scorer = interviewer
	return env, nil
}

func loadBank(path string) (*llm.QuestionBank, error) {
	if path == "" {
		return llm.DefaultQuestionBank()
	}
	return llm.LoadQuestionBank(path)
}

// Close releases the model client and the storage connection.
func (e *environment) Close() {
	if e.client != nil {
		_ = e.client.Close()
	}
	if e.storage != nil {
		_ = e.storage.Close()
	}
}

// commandLogger builds the logger for a command. Terminal commands pass
// quiet so log lines do not interleave with their output.
func commandLogger(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	level := cfg.LogLevel
	if quiet {
		level = "error"
	}
	return logging.New(cfg.Env, level)
}
