// Command catalogctl runs catalog bulk operations from the shell against the
// configured store, without going through the HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/store"
)

var (
	envFile    string
	vendorID   string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Bulk operations on vendor product catalogs",
	Long: `catalogctl imports, exports and batch-edits vendor product catalogs.

It reads the same environment configuration as the server (STORE_DRIVER,
DATABASE_URL, SQLITE_PATH, ...), loading a .env file first when present.

Examples:
  catalogctl template > products.csv
  catalogctl import products.csv --vendor v42 --update-existing
  catalogctl preview products.csv --vendor v42
  catalogctl export --vendor v42 -o catalog.csv
  catalogctl adjust-prices 7.5 --vendor v42 --category grains
  catalogctl restock --vendor v42 --item <product-id>=12
  catalogctl migrate`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		slog.SetDefault(logging.New(os.Stderr, level, "text"))
		if jsonOutput {
			pterm.DisableStyling()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&vendorID, "vendor", "", "vendor id the operation applies to")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(importCmd, previewCmd, exportCmd, templateCmd, adjustPricesCmd, restockCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if core.IsUserFacing(err) {
			pterm.Error.Println(core.FormatUserError(err))
		} else {
			pterm.Error.Println(err.Error())
		}
		slog.Debug("command failed", "error", err)
		os.Exit(1)
	}
}

// openService loads configuration and connects to the store. Callers must
// invoke the returned func when done.
func openService(ctx context.Context) (*core.Service, store.Backend, func(), error) {
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file loaded", "path", envFile, "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	backend, closeFn, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	svc := core.NewService(backend, core.WithAuditSink(backend))
	return svc, backend, closeFn, nil
}
