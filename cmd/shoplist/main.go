package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"shoplist/internal/app"
	"shoplist/internal/config"
	"shoplist/internal/model"
	"shoplist/internal/shop"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "OpenSession", "FinalizeSession").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase returns the --passphrase flag if set, otherwise prompts on
// the terminal. With confirm set the passphrase must be entered twice.
func readPassphrase(cmd *cobra.Command, confirm bool) (string, error) {
	if flag, _ := cmd.Flags().GetString("passphrase"); flag != "" {
		return flag, nil
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(first) == 0 {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}

func itemKeyArg(cmd *cobra.Command, itemID string) string {
	variant, _ := cmd.Flags().GetInt("variant")
	return model.ItemKey(itemID, variant)
}

var rootCmd = &cobra.Command{
	Use:   "shoplist",
	Short: "Personal shopping list manager",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s\n", cfg.Storage.Type)
		fmt.Printf("Stats:      %s\n", cfg.Stats.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

// item command
var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage the item catalog",
}

var itemLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List catalog items",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListMasterItems")
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.ListMasterItems(cmd.Context())
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("No items in catalog.")
			return nil
		}

		for _, item := range items {
			def := item.Variant(item.DefaultVariantIndex)
			fmt.Printf("%s  %-30s  %-20s  %s  (%d variant(s))\n",
				item.ID,
				item.Name,
				def.Brand,
				def.DefaultPrice.StringFixed(2),
				len(item.Variants),
			)
		}
		return nil
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show ITEM_ID",
	Short: "View an item with its variants and price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "GetMasterItem")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.GetMasterItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", item.Name, item.ID)
		for i, v := range item.Variants {
			def := " "
			if i == item.DefaultVariantIndex {
				def = "*"
			}
			fmt.Printf("%s [%d] %-20s  price:%s  avg:%s\n",
				def, i, v.Brand, v.DefaultPrice.StringFixed(2), v.AveragePrice.StringFixed(2))
			for _, rec := range v.PriceHistory {
				where := rec.ListName
				if rec.SessionID != "" {
					where += "  session:" + rec.SessionID
				}
				fmt.Printf("      %s  %s  %s\n",
					rec.Date.Format("2006-01-02"), rec.Price.StringFixed(2), where)
			}
		}
		return nil
	},
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog item",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		brand, _ := cmd.Flags().GetString("brand")
		price, _ := cmd.Flags().GetString("price")
		image, _ := cmd.Flags().GetString("image")

		a, err := newApp(cmd, "CreateMasterItem")
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.CreateMasterItem(cmd.Context(), name, brand, price, image)
		if err != nil {
			return err
		}

		fmt.Printf("Created item %s (%s)\n", item.Name, item.ID)
		return nil
	},
}

var itemRmCmd = &cobra.Command{
	Use:   "rm ITEM_ID",
	Short: "Delete a catalog item and all its variants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DeleteMasterItem")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteMasterItem(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted item %s\n", args[0])
		return nil
	},
}

// variant command
var variantCmd = &cobra.Command{
	Use:   "variant",
	Short: "Manage brand variants",
}

var variantAddCmd = &cobra.Command{
	Use:   "add ITEM_ID",
	Short: "Add a brand variant to an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		brand, _ := cmd.Flags().GetString("brand")
		price, _ := cmd.Flags().GetString("price")
		image, _ := cmd.Flags().GetString("image")

		a, err := newApp(cmd, "AddVariant")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddVariant(cmd.Context(), args[0], brand, price, image); err != nil {
			return err
		}

		fmt.Printf("Added variant %s to item %s\n", brand, args[0])
		return nil
	},
}

var variantUpdateCmd = &cobra.Command{
	Use:   "update ITEM_ID INDEX",
	Short: "Update a brand variant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid variant index %q", args[1])
		}
		brand, _ := cmd.Flags().GetString("brand")
		price, _ := cmd.Flags().GetString("price")
		image, _ := cmd.Flags().GetString("image")

		a, err := newApp(cmd, "UpdateVariant")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UpdateVariant(cmd.Context(), args[0], index, brand, price, image); err != nil {
			return err
		}

		fmt.Printf("Updated variant %d of item %s\n", index, args[0])
		return nil
	},
}

var variantRmCmd = &cobra.Command{
	Use:   "rm ITEM_ID INDEX",
	Short: "Delete a brand variant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid variant index %q", args[1])
		}

		a, err := newApp(cmd, "DeleteVariant")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteVariant(cmd.Context(), args[0], index); err != nil {
			return err
		}

		fmt.Printf("Deleted variant %d of item %s\n", index, args[0])
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage shopping lists",
}

var listCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "CreateList")
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.CreateList(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created list %s (%s)\n", list.Name, list.ID)
		return nil
	},
}

var listLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List shopping lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListLists")
		if err != nil {
			return err
		}
		defer a.Close()

		lists, err := a.ListLists(cmd.Context())
		if err != nil {
			return err
		}

		if len(lists) == 0 {
			fmt.Println("No shopping lists.")
			return nil
		}

		for _, l := range lists {
			fmt.Printf("%s  %-30s  %d item(s)\n", l.ID, l.Name, len(l.Items))
		}
		return nil
	},
}

var listShowCmd = &cobra.Command{
	Use:   "show LIST_ID",
	Short: "View a shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "GetList")
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.GetList(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", list.Name, list.ID)
		for _, item := range list.Items {
			fmt.Printf("  %-30s  %-20s  last:%s  avg:%s\n",
				item.Name, item.Brand,
				item.LastPrice.StringFixed(2), item.AveragePrice.StringFixed(2))
		}
		return nil
	},
}

var listRmCmd = &cobra.Command{
	Use:   "rm LIST_ID",
	Short: "Delete a shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DeleteList")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteList(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted list %s\n", args[0])
		return nil
	},
}

var listAddCmd = &cobra.Command{
	Use:   "add LIST_ID ITEM_ID",
	Short: "Add a catalog item to a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, _ := cmd.Flags().GetInt("variant")

		a, err := newApp(cmd, "AddCatalogItem")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddCatalogItem(cmd.Context(), args[0], args[1], variant); err != nil {
			return err
		}

		fmt.Printf("Added item %s to list %s\n", args[1], args[0])
		return nil
	},
}

var listRmItemCmd = &cobra.Command{
	Use:   "rm-item LIST_ID ITEM_ID",
	Short: "Remove an item from a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, _ := cmd.Flags().GetInt("variant")

		a, err := newApp(cmd, "RemoveItem")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveItem(cmd.Context(), args[0], args[1], variant); err != nil {
			return err
		}

		fmt.Printf("Removed item %s from list %s\n", args[1], args[0])
		return nil
	},
}

var listExportCmd = &cobra.Command{
	Use:   "export LIST_ID FILE",
	Short: "Export a list to a .shoplist file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ExportList")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ExportListToFile(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Exported list to %s\n", args[1])
		return nil
	},
}

var listImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a list from a .shoplist file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ImportList")
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.ImportListFromFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Imported list %s (%s) with %d item(s)\n", list.Name, list.ID, len(list.Items))
		return nil
	},
}

// shop command
var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Manage the active shopping trip",
}

var shopStartCmd = &cobra.Command{
	Use:   "start LIST_ID",
	Short: "Start or resume a shopping trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")

		a, err := newApp(cmd, "OpenSession")
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.OpenSession(cmd.Context(), args[0], replace)
		if errors.Is(err, shop.ErrSessionActive) {
			return fmt.Errorf("another trip is already in progress; finish it, cancel it, or pass --replace")
		}
		if err != nil {
			return err
		}

		fmt.Printf("Shopping %s (%d item(s), estimated %s)\n",
			sess.ListName, len(sess.Items), sess.EstimatedTotal().StringFixed(2))
		return nil
	},
}

var shopStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "View the active shopping trip",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ActiveSession")
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.ActiveSession(cmd.Context())
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Println("No active shopping trip.")
			return nil
		}

		fmt.Printf("Shopping %s (started %s)\n\n", sess.ListName, sess.StartTime.Format("2006-01-02 15:04"))
		for _, item := range sess.Items {
			key := item.Key()
			mark := " "
			if sess.Checked[key].Checked {
				mark = "x"
			}
			fmt.Printf("[%s] %-30s  %-20s  %s  (%s)\n",
				mark, item.Name, item.Brand,
				sess.EffectivePrice(&item).StringFixed(2), key)
		}
		fmt.Printf("\nEstimated: %s  In cart: %s\n",
			sess.EstimatedTotal().StringFixed(2), sess.ActualTotal().StringFixed(2))
		if sess.Receipt != "" {
			fmt.Printf("Receipt:   %s\n", sess.Receipt)
		}
		return nil
	},
}

var shopCheckCmd = &cobra.Command{
	Use:   "check ITEM_ID",
	Short: "Toggle an item's checked state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ToggleCheck")
		if err != nil {
			return err
		}
		defer a.Close()

		checked, err := a.ToggleCheck(cmd.Context(), itemKeyArg(cmd, args[0]))
		if err != nil {
			return err
		}

		if checked {
			fmt.Println("Checked.")
		} else {
			fmt.Println("Unchecked.")
		}
		return nil
	},
}

var shopPriceCmd = &cobra.Command{
	Use:   "price ITEM_ID PRICE",
	Short: "Set an item's price for this trip",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "EditPrice")
		if err != nil {
			return err
		}
		defer a.Close()

		price, err := a.EditPrice(cmd.Context(), itemKeyArg(cmd, args[0]), args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Price set to %s\n", price.StringFixed(2))
		return nil
	},
}

var shopReceiptCmd = &cobra.Command{
	Use:   "receipt IMAGE_PATH",
	Short: "Attach a receipt photo to the trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "AttachReceipt")
		if err != nil {
			return err
		}
		defer a.Close()

		ref, err := a.AttachReceipt(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Receipt attached: %s\n", ref)
		return nil
	},
}

var shopFinishCmd = &cobra.Command{
	Use:   "finish AMOUNT_PAID",
	Short: "Finish the trip and archive it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "FinalizeSession")
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.CompleteSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Trip archived as %s\n", sess.ID)
		fmt.Printf("Calculated: %s  Paid: %s\n",
			sess.CalculatedTotal.StringFixed(2), sess.Total.StringFixed(2))
		return nil
	},
}

var shopCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the trip without archiving",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "CancelSession")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CancelSession(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("Trip cancelled.")
		return nil
	},
}

// sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse archived shopping trips",
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List archived trips",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListSessions")
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.ListSessions(cmd.Context())
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No archived trips.")
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("%s  %s  %-30s  paid:%s\n",
				s.ID, s.Date.Format("2006-01-02"), s.ListName, s.Total.StringFixed(2))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show SESSION_ID",
	Short: "View an archived trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "GetSession")
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.GetSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s (%s)\n", sess.Date.Format("2006-01-02 15:04"), sess.ListName, sess.ID)
		for _, item := range sess.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			fmt.Printf("[%s] %-30s  %-20s  %s\n",
				mark, item.Name, item.Brand, item.Price.StringFixed(2))
		}
		fmt.Printf("\nCalculated: %s  Paid: %s\n",
			sess.CalculatedTotal.StringFixed(2), sess.Total.StringFixed(2))
		if sess.Receipt != "" {
			fmt.Printf("Receipt:    %s\n", sess.Receipt)
		}
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm SESSION_ID",
	Short: "Delete an archived trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DeleteSession")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSession(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted trip %s\n", args[0])
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View spending statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")

		a, err := newApp(cmd, "Stats")
		if err != nil {
			return err
		}
		defer a.Close()

		months, err := a.SpendingByMonth(cmd.Context())
		if err != nil {
			return err
		}
		items, err := a.TopItems(cmd.Context(), top)
		if err != nil {
			return err
		}

		if len(months) == 0 {
			fmt.Println("No spending recorded yet.")
			return nil
		}

		fmt.Println("Spending by month:")
		for _, m := range months {
			fmt.Printf("  %s  %8s  (%d trip(s))\n", m.Month, m.Total.StringFixed(2), m.Sessions)
		}
		if len(items) > 0 {
			fmt.Println("\nMost purchased:")
			for _, it := range items {
				fmt.Printf("  %-30s  %-20s  %d time(s)  %s total\n",
					it.Name, it.Brand, it.Purchases, it.TotalSpent.StringFixed(2))
			}
		}
		return nil
	},
}

var statsRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild statistics from the session archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "RebuildStats")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.RebuildStats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Rebuilt statistics from %d trip(s)\n", count)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Export all data to an encrypted backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase(cmd, true)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "ExportBackup")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backup(cmd.Context(), args[0], passphrase); err != nil {
			return err
		}

		fmt.Printf("Backup written to %s\n", args[0])
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Restore data from an encrypted backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase(cmd, false)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "ImportBackup")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.Restore(cmd.Context(), args[0], passphrase)
		if err != nil {
			return err
		}

		fmt.Printf("Restored %d item(s), %d list(s), %d trip(s)\n",
			counts.MasterItems, counts.Lists, counts.Sessions)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// item subcommands
	itemCmd.AddCommand(itemLsCmd)
	itemCmd.AddCommand(itemShowCmd)
	itemCmd.AddCommand(itemAddCmd)
	itemAddCmd.Flags().String("name", "", "Item name")
	itemAddCmd.Flags().String("brand", "", "Brand of the first variant")
	itemAddCmd.Flags().String("price", "", "Default price of the first variant")
	itemAddCmd.Flags().String("image", "", "Path to a product photo")
	itemAddCmd.MarkFlagRequired("name")
	itemAddCmd.MarkFlagRequired("brand")
	itemAddCmd.MarkFlagRequired("price")
	itemCmd.AddCommand(itemRmCmd)

	// variant subcommands
	variantCmd.AddCommand(variantAddCmd)
	variantAddCmd.Flags().String("brand", "", "Brand name")
	variantAddCmd.Flags().String("price", "", "Default price")
	variantAddCmd.Flags().String("image", "", "Path to a product photo")
	variantAddCmd.MarkFlagRequired("brand")
	variantAddCmd.MarkFlagRequired("price")
	variantCmd.AddCommand(variantUpdateCmd)
	variantUpdateCmd.Flags().String("brand", "", "Brand name")
	variantUpdateCmd.Flags().String("price", "", "Default price")
	variantUpdateCmd.Flags().String("image", "", "Path to a product photo")
	variantUpdateCmd.MarkFlagRequired("brand")
	variantUpdateCmd.MarkFlagRequired("price")
	variantCmd.AddCommand(variantRmCmd)

	// list subcommands
	listCmd.AddCommand(listCreateCmd)
	listCmd.AddCommand(listLsCmd)
	listCmd.AddCommand(listShowCmd)
	listCmd.AddCommand(listRmCmd)
	listCmd.AddCommand(listAddCmd)
	listAddCmd.Flags().IntP("variant", "v", 0, "Variant index")
	listCmd.AddCommand(listRmItemCmd)
	listRmItemCmd.Flags().IntP("variant", "v", 0, "Variant index")
	listCmd.AddCommand(listExportCmd)
	listCmd.AddCommand(listImportCmd)

	// shop subcommands
	shopCmd.AddCommand(shopStartCmd)
	shopStartCmd.Flags().Bool("replace", false, "Cancel any open trip first")
	shopCmd.AddCommand(shopStatusCmd)
	shopCmd.AddCommand(shopCheckCmd)
	shopCheckCmd.Flags().IntP("variant", "v", 0, "Variant index")
	shopCmd.AddCommand(shopPriceCmd)
	shopPriceCmd.Flags().IntP("variant", "v", 0, "Variant index")
	shopCmd.AddCommand(shopReceiptCmd)
	shopCmd.AddCommand(shopFinishCmd)
	shopCmd.AddCommand(shopCancelCmd)

	// sessions subcommands
	sessionsCmd.AddCommand(sessionsLsCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)

	// stats subcommands
	statsCmd.AddCommand(statsRebuildCmd)
	statsCmd.Flags().IntP("top", "n", 10, "Number of top items to show")

	// backup / restore flags
	backupCmd.Flags().String("passphrase", "", "Passphrase (prompts when omitted)")
	restoreCmd.Flags().String("passphrase", "", "Passphrase (prompts when omitted)")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(variantCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
