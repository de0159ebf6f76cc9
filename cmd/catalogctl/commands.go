package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalog/internal/core"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv|->",
	Short: "Import products from a CSV file",
	Long: `Import products from a CSV file into the vendor's catalog.

Rows whose name already exists for the vendor are skipped unless
--update-existing is set. Row errors never stop the import; they are listed
after the summary. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, _ := cmd.Flags().GetBool("update-existing")

		in, closeIn, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		svc, _, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		spinner := startSpinner("Importing products...")
		res, err := svc.ImportProducts(cmd.Context(), vendorID, in, update)
		stopSpinner(spinner, err)
		if err != nil {
			return err
		}
		return printImportResult(res)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <file.csv|->",
	Short: "Show what an import would do without writing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, _ := cmd.Flags().GetBool("update-existing")

		in, closeIn, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer closeIn()

		svc, _, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		preview, err := svc.PreviewImport(cmd.Context(), vendorID, in, update)
		if err != nil {
			return err
		}
		return printPreview(preview)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vendor's catalog as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("output")

		svc, _, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := svc.ExportProducts(cmd.Context(), vendorID)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(res)
		}
		if outPath == "" || outPath == "-" {
			_, err = io.WriteString(os.Stdout, res.CSV)
			return err
		}
		if err := os.WriteFile(outPath, []byte(res.CSV), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", outPath)
		}
		pterm.Success.Printfln("Exported %d products to %s", res.RowCount, outPath)
		return nil
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the CSV import template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := io.WriteString(os.Stdout, core.GenerateTemplate())
		return err
	},
}

var adjustPricesCmd = &cobra.Command{
	Use:   "adjust-prices <percent>",
	Short: "Change prices by a percentage (10 = +10%, -5 = -5%)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		percent, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return errors.Wrapf(err, "invalid percent %q", args[0])
		}

		svc, _, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := svc.BulkAdjustPrices(cmd.Context(), vendorID, percent, category)
		if err != nil {
			return err
		}
		return printBatchSummary("Price adjustment", summary)
	},
}

var restockCmd = &cobra.Command{
	Use:   "restock",
	Short: "Add stock to products by id",
	Long: `Add stock to products by id. Each --item is <product-id>=<quantity>;
negative quantities remove stock, never below zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("item")
		items, err := parseRestockItems(raw)
		if err != nil {
			return err
		}

		svc, _, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := svc.BulkRestock(cmd.Context(), vendorID, items)
		if err != nil {
			return err
		}
		return printBatchSummary("Restock", summary)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, backend, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := backend.Migrate(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("Schema is up to date")
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("update-existing", false, "overwrite products whose name already exists")
	previewCmd.Flags().Bool("update-existing", false, "plan updates instead of skips for existing names")
	exportCmd.Flags().StringP("output", "o", "", "write the CSV to this file instead of stdout")
	adjustPricesCmd.Flags().String("category", "", "only adjust products in this category")
	restockCmd.Flags().StringArray("item", nil, "product to restock as <product-id>=<quantity> (repeatable)")
}

// openInput opens path for reading, or stdin for "-".
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	return f, func() { f.Close() }, nil
}

func parseRestockItems(raw []string) ([]core.RestockItem, error) {
	items := make([]core.RestockItem, 0, len(raw))
	for _, r := range raw {
		id, qty, ok := strings.Cut(r, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, errors.Newf("invalid item %q, want <product-id>=<quantity>", r)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid quantity in %q", r)
		}
		items = append(items, core.RestockItem{ProductID: id, Quantity: n})
	}
	return items, nil
}
