package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/engine"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

var (
	evalUserID   string
	evalTenants  []string
	evalDefault  string
	evalSnapshot string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a snapshot file against a user's accessible tenants",
	Long: `Reads a JSON array of inventory rows from --snapshot and runs one
evaluation, printing the resulting Report as JSON.

Each row is {pallet_id, location_code, description, receipt_number,
creation_date}. Mapping from a source spreadsheet or file format to this
shape happens outside waredge.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalUserID, "user", "", "acting user id (required)")
	evaluateCmd.Flags().StringSliceVar(&evalTenants, "tenants", nil, "accessible warehouse ids for this user (required)")
	evaluateCmd.Flags().StringVar(&evalDefault, "default-tenant", "", "user's default warehouse id, for resolver tie-breaks")
	evaluateCmd.Flags().StringVar(&evalSnapshot, "snapshot", "", "path to a JSON snapshot file (required)")
	evaluateCmd.MarkFlagRequired("user")
	evaluateCmd.MarkFlagRequired("tenants")
	evaluateCmd.MarkFlagRequired("snapshot")
}

type snapshotRowJSON struct {
	PalletID      string `json:"pallet_id"`
	LocationCode  string `json:"location_code"`
	Description   string `json:"description"`
	ReceiptNumber string `json:"receipt_number"`
	CreationDate  string `json:"creation_date"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(evalSnapshot)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var jsonRows []snapshotRowJSON
	if err := json.Unmarshal(raw, &jsonRows); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	rows := make([]snapshot.Row, 0, len(jsonRows))
	for _, jr := range jsonRows {
		created, _ := time.Parse(time.RFC3339, jr.CreationDate)
		rows = append(rows, snapshot.Row{
			PalletID:      jr.PalletID,
			LocationCode:  jr.LocationCode,
			Description:   jr.Description,
			ReceiptNumber: jr.ReceiptNumber,
			CreationDate:  created,
		})
	}

	catalogStore, err := catalog.NewSQLiteStore(cfg.Storage.CatalogDSN)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer catalogStore.Close()

	ruleStore, err := loadRuleStore(cfg.Storage.RulesDir)
	if err != nil {
		return fmt.Errorf("load rule store: %w", err)
	}

	orch := engine.New(catalogStore, catalog.NewMemoryConfigStore(), ruleStore, cfg, nil)

	report, err := orch.Evaluate(context.Background(), snapshot.UserContext{
		UserID:            evalUserID,
		AccessibleTenants: evalTenants,
		DefaultTenant:     evalDefault,
	}, snapshot.Snapshot{Rows: rows})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// loadRuleStore reads every *.yaml/*.yml rule file in dir into a fresh
// MemoryStore. Used for one-off CLI evaluations; a long-running service
// would use rules.NewWatcher to keep the store current instead.
func loadRuleStore(dir string) (*rules.MemoryStore, error) {
	store := rules.NewMemoryStore()
	if dir == "" {
		return store, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		tenant, loaded, warnings, err := rules.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", entry.Name(), w)
		}
		store.LoadAll(tenant, loaded)
	}
	return store, nil
}
