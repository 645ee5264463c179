package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hissab/internal/core"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show or change the remembered view selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printView(cmd)
		return nil
	},
}

var viewPeriodCmd = &cobra.Command{
	Use:       "period <day|week|month>",
	Short:     "Select the reporting period",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"day", "week", "month"},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := core.ParsePeriod(args[0])
		if err != nil {
			return err
		}
		if err := rt.app.SetPeriod(cmd.Context(), p); err != nil {
			return err
		}
		printView(cmd)
		return nil
	},
}

var viewDateCmd = &cobra.Command{
	Use:   "date <YYYY-MM-DD|today|yesterday>",
	Short: "Select the reference day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseDay(args[0], core.DateOf(time.Now()))
		if err != nil {
			return err
		}
		if err := rt.app.SetDate(cmd.Context(), d); err != nil {
			return err
		}
		printView(cmd)
		return nil
	},
}

var viewDarkCmd = &cobra.Command{
	Use:       "dark [on|off]",
	Short:     "Toggle dark mode, or set it explicitly",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 0 {
			if _, err := rt.app.ToggleDarkMode(ctx); err != nil {
				return err
			}
			printView(cmd)
			return nil
		}
		switch args[0] {
		case "on":
			if err := rt.app.SetDarkMode(ctx, true); err != nil {
				return err
			}
		case "off":
			if err := rt.app.SetDarkMode(ctx, false); err != nil {
				return err
			}
		default:
			return fmt.Errorf("invalid argument %q: want on or off", args[0])
		}
		printView(cmd)
		return nil
	},
}

func printView(cmd *cobra.Command) {
	vs := rt.app.View()
	r := rt.app.SelectedRange()
	dark := "off"
	if vs.DarkMode {
		dark = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "period %s, date %s (%s .. %s), dark mode %s\n",
		vs.Period, vs.Date, r.From, r.To, dark)
}

func init() {
	viewCmd.AddCommand(viewPeriodCmd, viewDateCmd, viewDarkCmd)
	rootCmd.AddCommand(viewCmd)
}
