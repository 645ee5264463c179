package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hissab/internal/core"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage the item catalog",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printItems(cmd, rt.app.Items())
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add <name> <price>",
	Short: "Add an item to the catalog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, err := core.ParsePrice(args[1])
		if err != nil {
			return fmt.Errorf("price %q: %w", args[1], err)
		}
		it, err := rt.app.AddItem(cmd.Context(), args[0], price)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) at %s\n", it.Name, it.ID, it.CurrentPrice)
		return nil
	},
}

var itemsUpdateCmd = &cobra.Command{
	Use:   "update <item>",
	Short: "Rename an item or change its price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, ok := rt.app.FindItem(args[0])
		if !ok {
			return fmt.Errorf("no item %q", args[0])
		}

		var patch core.ItemPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("price") {
			raw, _ := cmd.Flags().GetString("price")
			price, err := core.ParsePrice(raw)
			if err != nil {
				return fmt.Errorf("price %q: %w", raw, err)
			}
			patch.CurrentPrice = &price
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name and/or --price")
		}

		updated, err := rt.app.UpdateItem(cmd.Context(), it.ID, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s at %s\n", updated.ID, updated.Name, updated.CurrentPrice)
		return nil
	},
}

var itemsDeleteCmd = &cobra.Command{
	Use:   "delete <item>",
	Short: "Remove an item from the catalog. Its purchases are kept.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		it, ok := rt.app.FindItem(args[0])
		if !ok {
			return fmt.Errorf("no item %q", args[0])
		}
		if err := rt.app.DeleteItem(cmd.Context(), it.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", it.Name)
		return nil
	},
}

var itemsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Replace the local catalog with the remote one",
	Long: `Fetches every item from the remote backend. When the backend cannot be
reached the catalog is reset to the four default items.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, seeded, err := rt.app.LoadItems(cmd.Context())
		if err != nil {
			return err
		}
		if seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "Backend unreachable, catalog reset to defaults")
		}
		printItems(cmd, items)
		return nil
	},
}

func printItems(cmd *cobra.Command, items []core.Item) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.ID, it.Name, it.CurrentPrice)
	}
	w.Flush()
}

func init() {
	itemsUpdateCmd.Flags().String("name", "", "new item name")
	itemsUpdateCmd.Flags().String("price", "", "new current price")

	itemsCmd.AddCommand(itemsListCmd, itemsAddCmd, itemsUpdateCmd, itemsDeleteCmd, itemsReloadCmd)
	rootCmd.AddCommand(itemsCmd)
}
