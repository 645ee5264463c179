package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hissab/internal/amqp"
	"hissab/internal/cli"
	"hissab/internal/core"
)

var eventsCmd = &cobra.Command{
	Use:         "events",
	Short:       "Print ledger and sync events published on AMQP",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationProbe: "skip"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client := rt.backend.Publisher
		if client == nil {
			return fmt.Errorf("AMQP is not configured or unreachable: set AMQP_URL")
		}

		ctx, done := cli.GracefulShutdown(cmd.Context(), rt.log, shutdownTimeout, nil)
		out := cmd.OutOrStdout()
		err := client.Consume(ctx, func(ev *amqp.Event) error {
			_, err := fmt.Fprintln(out, formatEvent(ev))
			return err
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		cli.WaitForShutdown(ctx, done)
		return nil
	},
}

func formatEvent(ev *amqp.Event) string {
	ts := ev.Timestamp.Local().Format("2006-01-02 15:04:05")
	switch ev.Type {
	case amqp.EventSyncCompleted:
		return fmt.Sprintf("%s %s synced=%d pending=%d", ts, ev.Type, ev.Synced, ev.Pending)
	case amqp.EventSyncFailed:
		return fmt.Sprintf("%s %s synced=%d pending=%d error=%q", ts, ev.Type, ev.Synced, ev.Pending, ev.Error)
	default:
		total := core.Money{Cents: ev.TotalCents}
		return fmt.Sprintf("%s %s %s %d x %s = %s on %s", ts, ev.Type, ev.PurchaseID, ev.Quantity, ev.ItemName, total, ev.Date)
	}
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
