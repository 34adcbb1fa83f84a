package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sublate/internal/config"
	"sublate/internal/daemonrun"
	"sublate/internal/logging"
	"sublate/internal/queue"
	"sublate/internal/scheduler"
)

func newRunOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Process all pending jobs and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := commandLogger(cfg)
				if err != nil {
					return err
				}

				orchestrator, cleanup, err := daemonrun.NewOrchestrator(cfg, logger)
				if err != nil {
					return err
				}
				defer cleanup()

				sched, err := scheduler.New(cfg, store, orchestrator, logger)
				if err != nil {
					return err
				}

				pending, err := store.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending jobs")
					return nil
				}

				sched.SweepOnce(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %d jobs; run `sublate queue list` for results\n", len(pending))
				return nil
			})
		},
	}
}

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the processing daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := commandLogger(cfg)
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return daemonrun.Run(runCtx, cfg, logger)
		},
	}
}

func commandLogger(cfg *config.Config) (*slog.Logger, error) {
	format := cfg.Logging.Format
	if format == "" || format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			format = "console"
		}
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      format,
		OutputPaths: []string{"stderr"},
	})
}
