package main

import (
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var catalogTenant string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect a tenant's location catalog",
	Long: `Read-only inspection of the Location Catalog SQLite database.
Uses the pure-Go sqlite driver so this subcommand can be built into a
static binary independent of the cgo-backed catalog store the rest of
waredge uses.`,
	RunE: runCatalogInspect,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogTenant, "tenant", "", "warehouse id to list locations for (required)")
	catalogCmd.MarkFlagRequired("tenant")
}

func runCatalogInspect(cmd *cobra.Command, args []string) error {
	db, err := sql.Open("sqlite", cfg.Storage.CatalogDSN)
	if err != nil {
		return fmt.Errorf("open catalog db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT code, location_type, capacity, zone, is_active FROM locations WHERE warehouse_id = ? ORDER BY code`,
		catalogTenant)
	if err != nil {
		return fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tTYPE\tCAPACITY\tZONE\tACTIVE")
	for rows.Next() {
		var code, locType, zone string
		var capacity, active int
		if err := rows.Scan(&code, &locType, &capacity, &zone, &active); err != nil {
			return fmt.Errorf("scan location: %w", err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%t\n", code, locType, capacity, zone, active != 0)
	}
	return w.Flush()
}
