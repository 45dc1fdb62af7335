// Package cmd implements catalogctl, the offline companion to the catalog
// server: bulk imports, inspection and credential helpers.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/bootstrap"
)

var (
	backendFlag     string
	catalogFileFlag string
	databaseURLFlag string
	verboseFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Catalog operations terminal",
	Long: color.New(color.FgCyan, color.Bold).Sprint("catalogctl") + `

Inspect and bulk-load the product catalog without going through the admin
console. Backend settings come from the same environment as the server
(CATALOG_BACKEND, CATALOG_FILE, DATABASE_URL) and can be overridden with flags.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&backendFlag, "backend", "", "catalog backend: file or postgres (default from CATALOG_BACKEND)")
	pf.StringVar(&catalogFileFlag, "file", "", "catalog snapshot for the file backend (default from CATALOG_FILE)")
	pf.StringVar(&databaseURLFlag, "database-url", "", "postgres connection string (default from DATABASE_URL)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "log backend activity")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(genKeyCmd)
}

// loadConfig reads the server configuration and applies flag overrides. A
// memory backend would lose every change on exit, so it is promoted to file.
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.NewConfig()
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.Catalog.Backend = backendFlag
	}
	if cfg.Catalog.Backend == internal.BackendMemory {
		cfg.Catalog.Backend = internal.BackendFile
	}
	if catalogFileFlag != "" {
		cfg.Catalog.File = catalogFileFlag
	}
	if databaseURLFlag != "" {
		cfg.Catalog.DatabaseURL = databaseURLFlag
	}
	return cfg, nil
}

// openCatalog opens the configured backend. The seed CSV is ignored so
// commands always see what the catalog actually holds.
func openCatalog(ctx context.Context) (*bootstrap.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := "error"
	if verboseFlag {
		level = "debug"
	}
	logger := internal.NewLogger(os.Stderr, "dev", level)

	settingsStore, err := bootstrap.Settings(cfg)
	if err != nil {
		return nil, err
	}

	catalogCfg := cfg.Catalog
	catalogCfg.SeedCSV = ""
	c, err := bootstrap.OpenCatalog(ctx, catalogCfg, bootstrap.DefaultOrder(settingsStore), logger)
	if err != nil {
		return nil, fmt.Errorf("open %s catalog: %w", catalogCfg.Backend, err)
	}
	return c, nil
}

func sectionHeader(title string) {
	color.New(color.FgCyan, color.Bold).Printf("\n  %s\n", title)
	fmt.Println("  " + strings.Repeat("─", 40))
	fmt.Println()
}
