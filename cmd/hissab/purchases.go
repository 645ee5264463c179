package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hissab/internal/app"
	"hissab/internal/core"
	"hissab/internal/remote"
)

var purchasesCmd = &cobra.Command{
	Use:     "purchases",
	Aliases: []string{"p"},
	Short:   "Inspect and edit recorded purchases",
}

var purchasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchases of the selected period, or of --period/--date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rangeFromFlags(cmd)
		if err != nil {
			return err
		}
		if fromRemote, _ := cmd.Flags().GetBool("remote"); fromRemote {
			return listRemotePurchases(cmd, r)
		}

		ps := rt.app.Purchases(r)
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tITEM\tQTY\tUNIT\tTOTAL\tSYNC")
		for _, p := range ps {
			state := "ok"
			if rt.app.IsPending(p.ID) {
				state = "pending"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				p.ID, p.Date, p.ItemName, p.Quantity, p.UnitPrice, p.Total, state)
		}
		w.Flush()
		fmt.Fprintf(out, "%d purchases from %s to %s, total %s\n", len(ps), r.From, r.To, rt.app.Total(r))
		return nil
	},
}

var purchasesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change quantity, unit price or date of a purchase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd app.PurchaseUpdate
		if cmd.Flags().Changed("qty") {
			raw, _ := cmd.Flags().GetString("qty")
			q, err := parseQuantity(raw)
			if err != nil {
				return err
			}
			upd.Quantity = &q
		}
		if cmd.Flags().Changed("price") {
			raw, _ := cmd.Flags().GetString("price")
			price, err := core.ParsePrice(raw)
			if err != nil {
				return fmt.Errorf("price %q: %w", raw, err)
			}
			upd.UnitPrice = &price
		}
		if cmd.Flags().Changed("date") {
			raw, _ := cmd.Flags().GetString("date")
			d, err := parseDay(raw, core.DateOf(time.Now()))
			if err != nil {
				return err
			}
			upd.Date = &d
		}
		if upd.Quantity == nil && upd.UnitPrice == nil && upd.Date == nil {
			return fmt.Errorf("nothing to update: pass --qty, --price or --date")
		}

		p, err := rt.app.UpdatePurchase(cmd.Context(), args[0], upd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %d x %s @ %s = %s on %s\n",
			p.ID, p.Quantity, p.ItemName, p.UnitPrice, p.Total, p.Date)
		return nil
	},
}

var purchasesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a purchase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := rt.app.DeletePurchase(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

// listRemotePurchases prints what the backend holds for r. LOCAL tells
// whether the purchase is also in the local ledger.
func listRemotePurchases(cmd *cobra.Command, r core.DateRange) error {
	ps, err := rt.app.RemotePurchases(cmd.Context(), r)
	if remote.IsUnavailable(err) {
		return fmt.Errorf("backend not reachable, drop --remote to list local purchases: %w", err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tITEM\tQTY\tUNIT\tTOTAL\tLOCAL")
	var total core.Money
	for _, p := range ps {
		local := "yes"
		if _, ok := rt.app.Purchase(p.ID); !ok {
			local = "no"
		}
		total = total.Add(p.Total)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			p.ID, p.Date, p.ItemName, p.Quantity, p.UnitPrice, p.Total, local)
	}
	w.Flush()
	fmt.Fprintf(out, "%d remote purchases from %s to %s, total %s\n", len(ps), r.From, r.To, total)
	return nil
}

// rangeFromFlags resolves --period and --date against the current view
// selection without changing it.
func rangeFromFlags(cmd *cobra.Command) (core.DateRange, error) {
	vs := rt.app.View()
	period, date := vs.Period, vs.Date

	if cmd.Flags().Changed("period") {
		raw, _ := cmd.Flags().GetString("period")
		p, err := core.ParsePeriod(raw)
		if err != nil {
			return core.DateRange{}, err
		}
		period = p
	}
	if cmd.Flags().Changed("date") {
		raw, _ := cmd.Flags().GetString("date")
		d, err := parseDay(raw, core.DateOf(time.Now()))
		if err != nil {
			return core.DateRange{}, err
		}
		date = d
	}
	return core.RangeFor(period, date), nil
}

func init() {
	purchasesListCmd.Flags().String("period", "", "day, week or month")
	purchasesListCmd.Flags().String("date", "", "any day inside the period")
	purchasesListCmd.Flags().Bool("remote", false, "list what the backend holds instead of the local ledger")

	purchasesUpdateCmd.Flags().String("qty", "", "new quantity")
	purchasesUpdateCmd.Flags().String("price", "", "new unit price")
	purchasesUpdateCmd.Flags().String("date", "", "new purchase date")

	purchasesCmd.AddCommand(purchasesListCmd, purchasesUpdateCmd, purchasesDeleteCmd)
	rootCmd.AddCommand(purchasesCmd)
}
