package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hissab/internal/core"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize spending for the selected period",
	Long: `Prints the total, the purchase count, the daily average and the per-item and
per-day breakdown of the selected period. --period, --date, --prev and --next
change the selection, which is remembered for the next run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()

		if flags.Changed("period") {
			raw, _ := flags.GetString("period")
			p, err := core.ParsePeriod(raw)
			if err != nil {
				return err
			}
			if err := rt.app.SetPeriod(ctx, p); err != nil {
				return err
			}
		}
		if flags.Changed("date") {
			raw, _ := flags.GetString("date")
			d, err := parseDay(raw, core.DateOf(time.Now()))
			if err != nil {
				return err
			}
			if err := rt.app.SetDate(ctx, d); err != nil {
				return err
			}
		}
		prev, _ := flags.GetInt("prev")
		next, _ := flags.GetInt("next")
		if steps := next - prev; steps != 0 {
			if _, err := rt.app.ShiftDate(ctx, steps); err != nil {
				return err
			}
		}

		s := rt.app.Summary()
		if asJSON, _ := flags.GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		printSummary(cmd, s)
		return nil
	},
}

func printSummary(cmd *cobra.Command, s core.PeriodSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s .. %s\n", s.Period, s.Range.From, s.Range.To)
	fmt.Fprintf(out, "Total %s in %s purchases, %s per day\n",
		s.Total, humanize.Comma(int64(s.Count)), s.AverageDaily)
	if s.Count == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nITEM\tQTY\tAMOUNT")
	for _, it := range s.ByItem {
		fmt.Fprintf(w, "%s\t%d\t%s\n", it.Name, it.Quantity, it.Amount)
	}
	if len(s.Daily) > 1 {
		fmt.Fprintln(w, "\nDAY\t\tAMOUNT")
		for _, d := range s.Daily {
			fmt.Fprintf(w, "%s\t\t%s\n", d.Date, d.Amount)
		}
	}
	w.Flush()
}

func init() {
	reportCmd.Flags().String("period", "", "select day, week or month")
	reportCmd.Flags().String("date", "", "select the period containing this day")
	reportCmd.Flags().Int("prev", 0, "move the selection back by N periods")
	reportCmd.Flags().Int("next", 0, "move the selection forward by N periods")
	reportCmd.Flags().Bool("json", false, "print the summary as JSON")
	reportCmd.Flags().Lookup("prev").NoOptDefVal = "1"
	reportCmd.Flags().Lookup("next").NoOptDefVal = "1"
	rootCmd.AddCommand(reportCmd)
}
