package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ronitphilip/zoom-backend/internal/scheduler"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Run one full resync of the trailing window and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, _, engine, cleanup, err := bootstrap()
		if err != nil {
			slog.Error("Startup failed", slog.String("error", err.Error()))
			return err
		}
		defer cleanup()

		sched := scheduler.New(engine, scheduler.Config{
			Interval: cfg.Resync.Interval,
			Lookback: cfg.Resync.Lookback,
		}, slog.Default())
		sched.RunOnce(context.Background())
		return nil
	},
}
