package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hissab/internal/app"
	"hissab/internal/core"
)

// basketLine is a purchase line as typed, before the item is resolved.
type basketLine struct {
	ref      string
	quantity int
}

var buyCmd = &cobra.Command{
	Use:   "buy <item> [quantity] | buy <item>=<quantity>...",
	Short: "Record a purchase",
	Long: `Records purchases at the current catalog price. Items are referenced by id
or by name. Either a single item with an optional quantity (default 1) or a
whole basket of item=quantity pairs can be given.`,
	Example: `  hissab buy Chai
  hissab buy Chai 2 --date 2024-03-01
  hissab buy Chai=2 Pratha=1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		basket, err := parseBasket(args)
		if err != nil {
			return err
		}
		date, err := parseDay(cmd.Flag("date").Value.String(), core.DateOf(time.Now()))
		if err != nil {
			return err
		}

		lines := make([]app.PurchaseLine, 0, len(basket))
		for _, b := range basket {
			it, ok := rt.app.FindItem(b.ref)
			if !ok {
				return fmt.Errorf("no item %q", b.ref)
			}
			lines = append(lines, app.PurchaseLine{ItemID: it.ID, Quantity: b.quantity})
		}

		ps, err := rt.app.RecordPurchases(cmd.Context(), lines, date)
		if err != nil {
			return err
		}
		total := core.Money{}
		for _, p := range ps {
			total = total.Add(p.Total)
			fmt.Fprintf(cmd.OutOrStdout(), "%d x %s @ %s = %s\n", p.Quantity, p.ItemName, p.UnitPrice, p.Total)
		}
		if len(ps) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "Total %s\n", total)
		}
		return nil
	},
}

// parseBasket accepts either "item [qty]" or a list of "item=qty" pairs.
func parseBasket(args []string) ([]basketLine, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no item given")
	}

	if !strings.Contains(args[0], "=") {
		if len(args) > 2 {
			return nil, fmt.Errorf("use item=quantity pairs to buy several items")
		}
		line := basketLine{ref: args[0], quantity: 1}
		if len(args) == 2 {
			q, err := parseQuantity(args[1])
			if err != nil {
				return nil, err
			}
			line.quantity = q
		}
		return []basketLine{line}, nil
	}

	lines := make([]basketLine, 0, len(args))
	for _, arg := range args {
		ref, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(ref) == "" {
			return nil, fmt.Errorf("invalid basket entry %q: want item=quantity", arg)
		}
		q, err := parseQuantity(raw)
		if err != nil {
			return nil, err
		}
		lines = append(lines, basketLine{ref: strings.TrimSpace(ref), quantity: q})
	}
	return lines, nil
}

func parseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if q < 1 {
		return 0, core.ErrInvalidQuantity
	}
	return q, nil
}

// parseDay accepts YYYY-MM-DD, "today" and "yesterday". Empty means today.
func parseDay(s string, today core.Date) (core.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	default:
		return core.ParseDate(s)
	}
}

func init() {
	buyCmd.Flags().String("date", "", "purchase date (YYYY-MM-DD, today, yesterday)")
	rootCmd.AddCommand(buyCmd)
}
