package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hissab/internal/services"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push pending purchases to the remote backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The startup probe already ran one pass when the backend answered
		n, err := rt.app.Sync(cmd.Context())
		out := cmd.OutOrStdout()
		switch {
		case errors.Is(err, services.ErrOffline):
			fmt.Fprintf(out, "Offline, %d pending\n", rt.app.SyncStatus().Pending)
			return nil
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "Synced %d, %d pending\n", n, rt.app.SyncStatus().Pending)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and sync state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := rt.app.SyncStatus()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Backend:   %s (%s)\n", rt.cfg.RemoteBackend, rt.app.SyncState())
		fmt.Fprintf(out, "Pending:   %d\n", st.Pending)
		if st.LastSyncAt.IsZero() {
			fmt.Fprintln(out, "Last sync: never")
		} else {
			fmt.Fprintf(out, "Last sync: %s\n", humanize.Time(st.LastSyncAt))
		}
		if st.Error != "" {
			fmt.Fprintf(out, "Error:     %s\n", st.Error)
		}
		fmt.Fprintf(out, "Items:     %d\n", len(rt.app.Items()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, statusCmd)
}
