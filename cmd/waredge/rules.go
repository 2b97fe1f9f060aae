package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesTenant string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List active rules for a tenant, as loaded from the configured storage.rules_dir",
	RunE:  runRulesList,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesTenant, "tenant", "", "warehouse id to list rules for (required)")
	rulesCmd.MarkFlagRequired("tenant")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	store, err := loadRuleStore(cfg.Storage.RulesDir)
	if err != nil {
		return fmt.Errorf("load rule store: %w", err)
	}

	active := store.ActiveRules(rulesTenant)

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tRULE_TYPE\tPRIORITY\tPRECEDENCE")
	for _, r := range active {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Name, r.RuleType, r.Priority, r.PrecedenceLevel)
	}
	return w.Flush()
}
