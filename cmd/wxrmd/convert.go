package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/spf13/cobra"

	"github.com/aretw0/wxrmd/internal/platform"
	"github.com/aretw0/wxrmd/pkg/core"
)

var watch bool

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an export file to Markdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := appConfig
		logger := slog.Default()

		runner := platform.NewRunner(cfg, platform.WithLogger(logger))
		report, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		logger.Debug("writer state", "component", runner.ComponentType(), "state", runner.State())

		if !watch {
			if report.Failed > 0 {
				return fmt.Errorf("%d file(s) could not be saved", report.Failed)
			}
			return nil
		}
		return watchExport(ctx, cfg, logger)
	},
}

// watchExport supervises a watcher on the input file until ctx is done.
func watchExport(ctx context.Context, cfg core.Config, logger *slog.Logger) error {
	spec := supervisor.Spec{
		Name: "export-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return platform.NewWatcher(cfg, platform.WithLogger(logger)), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     10 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("wxrmd", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	logger.Info("stopping watcher")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sup.Stop(stopCtx)
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addConfigFlags(convertCmd)
	convertCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Convert again whenever the input file changes")
}
