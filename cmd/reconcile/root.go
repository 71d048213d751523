package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/mkm418/padel-intelligence/internal/app"
	"github.com/mkm418/padel-intelligence/internal/config"
	"github.com/mkm418/padel-intelligence/internal/observability"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// session is the per-invocation state shared by subcommands.
type session struct {
	cfg     config.Config
	logger  *logging.Logger
	runtime *app.Runtime
	stop    []func(context.Context) error

	jsonOutput bool
	out        io.Writer
}

func newRootCmd() *cobra.Command {
	s := &session{out: os.Stdout}

	root := &cobra.Command{
		Use:           "reconcile",
		Short:         "Padel match ingestion and player graph reconciliation",
		Long:          "Rebuild player and relationship aggregates from venue checkpoints, or keep them current from the live match API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&s.jsonOutput, "json", false, "print the run summary as JSON instead of a table")

	root.AddCommand(newFullCmd(s))
	root.AddCommand(newIncrementalCmd(s))
	root.AddCommand(newWatchCmd(s))
	return root
}

// run wires a session for one subcommand and tears it down afterwards.
// SIGINT and SIGTERM cancel the context passed to fn.
func (s *session) run(cmd *cobra.Command, opts app.Options, fn func(ctx context.Context) error) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := s.open(ctx, opts); err != nil {
		return err
	}

	ctx, span := otel.Tracer("padel-intelligence/cmd/reconcile").Start(ctx, "reconcile."+cmd.Name())
	defer span.End()
	return fn(ctx)
}

// open loads .env and configuration, starts telemetry and builds the runtime.
func (s *session) open(ctx context.Context, opts app.Options) error {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s.cfg = cfg
	s.logger = logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr).With("service", cfg.ServiceName)
	logging.SetDefault(s.logger)

	shutdownUptrace, err := observability.InitUptrace(cfg, s.logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	s.stop = append(s.stop, shutdownUptrace)

	stopPyroscope, err := observability.InitPyroscope(cfg, s.logger)
	if err != nil {
		s.logger.Warn("pyroscope start failed", "error", err)
	} else {
		s.stop = append(s.stop, func(context.Context) error { return stopPyroscope() })
	}

	runtime, err := app.New(ctx, cfg, s.logger, opts)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	s.runtime = runtime
	return nil
}

func (s *session) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := s.runtime.Close(); err != nil {
		firstErr = err
	}
	for i := len(s.stop) - 1; i >= 0; i-- {
		if err := s.stop[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.stop = nil
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return firstErr
}

func (s *session) report(summary usecase.RunSummary) error {
	if s.jsonOutput {
		return writeSummaryJSON(s.out, summary)
	}
	return writeSummaryTable(s.out, summary)
}

// validateSince accepts an empty override or one in the from-date layout.
func validateSince(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(usecase.SinceLayout, value); err != nil {
		return "", fmt.Errorf("%w: --since must look like %s", usecase.ErrInvalidInput, usecase.SinceLayout)
	}
	return value, nil
}
