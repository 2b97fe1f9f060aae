// Package anomaly defines the canonical anomaly record (spec §3) and its
// deterministic presentation ordering (spec §4.G.7).
package anomaly

import "github.com/wareedge/rule-engine/internal/rules"

// Anomaly is one detected irregularity, emitted by an Evaluator (spec
// §4.F) and finished by the Orchestrator's correlation and ordering
// passes (spec §4.G.5–§4.G.7).
type Anomaly struct {
	PalletID     string
	LocationCode string
	RuleID       string
	RuleName     string
	RuleType     rules.Type
	Priority     rules.Priority
	Category     rules.Category

	// PrecedenceLevel is copied from the originating Rule so the sort
	// key (order.go) doesn't need to look the rule back up.
	PrecedenceLevel int

	// Details carries the kind-specific payload each evaluator
	// documents for its rule_type (e.g. age_hours, straggler_count,
	// matched_pattern).
	Details map[string]interface{}

	// CorrelatedAnomalyIDs links this anomaly to others sharing the
	// same pallet across STAGNANT_PALLETS and OVERCAPACITY (spec
	// §4.G.5). Populated only by the correlation pass, never by an
	// evaluator.
	CorrelatedAnomalyIDs []string
}

// DedupeKey is the identity spec §4.G.6 uses to drop duplicate
// anomalies: (rule_id, pallet_id, location_code).
func (a Anomaly) DedupeKey() [3]string {
	return [3]string{a.RuleID, a.PalletID, a.LocationCode}
}

// ID is a stable identifier for one anomaly, derived from its
// DedupeKey. The correlation pass (spec §4.G.5) uses it to populate
// CorrelatedAnomalyIDs on the anomalies it links; it is not stored as a
// field of the Anomaly or the Report.
func (a Anomaly) ID() string {
	k := a.DedupeKey()
	return k[0] + "/" + k[1] + "/" + k[2]
}
