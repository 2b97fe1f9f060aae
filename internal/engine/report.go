package engine

import "github.com/wareedge/rule-engine/internal/anomaly"

// RuleStat is one rule's contribution to an evaluation (spec §6's
// per_rule_stats entry).
type RuleStat struct {
	Count      int
	DurationMS int64
	Errored    bool
	ErrorKind  string // empty unless Errored
}

// Report is the Orchestrator's output (spec §6).
type Report struct {
	Tenant        string
	Anomalies     []anomaly.Anomaly
	RulesUsed     []string
	PerRuleStats  map[string]RuleStat
	Warnings      []string
}
