package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/server"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the interview over REST endpoints and
streams state changes and countdown ticks over server-sent events.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to the configured port, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	rlCfg, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := commandLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	env, err := openEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	ticks := server.NewTickHub()
	ctrl := interview.New(env.store, interview.Options{
		Generator: env.generator,
		Scorer:    env.scorer,
		Logger:    logging.Named(logger, "interview"),
		OnTick:    ticks.Publish,
	})

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Controller: ctrl,
		Store:      env.store,
		Ticks:      ticks,
		JWT:        jwtCfg,
		RateLimit:  rlCfg,
		Logger:     logging.Named(logger, "server"),
	})
	if err != nil {
		ctrl.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		// Timers and evaluations stop once the server is done with them.
		<-gctx.Done()
		ctrl.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("interview coach stopped", zap.String("addr", cfg.ServerAddr()))
	return nil
}
