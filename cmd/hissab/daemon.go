package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hissab/internal/cli"
	"hissab/internal/connectivity"
	"hissab/internal/log"
	"hissab/internal/services"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Watch backend connectivity and keep the pending queue drained",
	Long: `Probes the backend every PROBE_INTERVAL. When it becomes reachable the
pending queue is drained immediately, and retried on every interval while
online. Stops on SIGINT or SIGTERM.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationProbe: "skip"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rt.app
		logger := log.ForComponent(log.ComponentConnectivity)

		monitor := connectivity.NewMonitor(rt.backend.Backend, connectivity.MonitorConfig{
			Interval:     rt.cfg.ProbeInterval,
			ProbeTimeout: rt.cfg.RemoteTimeout,
			OnReachable: func(ctx context.Context) {
				if _, err := a.GoOnline(ctx); err != nil {
					logger.WarnContext(ctx, "Sync after reconnect failed", log.FieldError, err)
				}
			},
			OnUnreachable: func(ctx context.Context) {
				a.GoOffline()
			},
		})

		ctx, done := cli.GracefulShutdown(log.WithContext(cmd.Context(), logger), rt.log, shutdownTimeout, func(ctx context.Context) {
			if err := monitor.Stop(ctx); err != nil {
				logger.WarnContext(ctx, "Failed to stop connectivity monitor", log.FieldError, err)
			}
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return monitor.Start(gctx)
		})
		g.Go(func() error {
			drainLoop(gctx, rt.cfg.ProbeInterval)
			return nil
		})

		logger.InfoContext(ctx, "Daemon started",
			"backend", rt.cfg.RemoteBackend,
			"interval", rt.cfg.ProbeInterval)

		err := g.Wait()
		if err != nil {
			return err
		}
		cli.WaitForShutdown(ctx, done)
		return nil
	},
}

// drainLoop retries the pending queue on every tick while online. Ticks
// while offline or during a running pass are skipped.
func drainLoop(ctx context.Context, interval time.Duration) {
	logger := log.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if len(rt.app.Pending()) == 0 {
				continue
			}
			_, err := rt.app.Sync(ctx)
			if err != nil && !errors.Is(err, services.ErrOffline) && !errors.Is(err, services.ErrSyncInProgress) {
				logger.WarnContext(ctx, "Periodic sync failed", log.FieldError, err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
