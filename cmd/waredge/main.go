// Package main implements the waredge CLI: a thin command-line surface
// over the warehouse inventory anomaly rule engine, for running one-off
// evaluations and inspecting the rule and location catalogs from a
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wareedge/rule-engine/internal/config"
	"github.com/wareedge/rule-engine/internal/logging"
)

var (
	configPath string
	verbose    bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "waredge",
	Short: "Warehouse inventory anomaly rule engine",
	Long: `waredge evaluates warehouse inventory snapshots against a
tenant's configured rules and reports ranked anomalies: stagnant
pallets, incomplete lot migrations, overcapacity, invalid locations,
data-integrity defects, and product/zone incompatibilities.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if verbose {
			cfg.Logging.Level = "debug"
		}
		return logging.Initialize(logging.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to waredge config YAML (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
