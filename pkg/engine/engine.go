// Package engine is the public entry point for embedding the warehouse
// inventory anomaly rule engine in another Go program: a thin re-export
// of internal/engine's stable surface, so callers depend on a package
// path that isn't subject to the internal/ churn of the rest of this
// module.
package engine

import (
	"context"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/config"
	"github.com/wareedge/rule-engine/internal/engine"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

type (
	Orchestrator = engine.Orchestrator
	Report       = engine.Report
	RuleStat     = engine.RuleStat
	State        = engine.State

	Snapshot    = snapshot.Snapshot
	Row         = snapshot.Row
	UserContext = snapshot.UserContext
	Clock       = snapshot.Clock

	CatalogStore = catalog.Store
	ConfigStore  = catalog.ConfigStore
	RuleStore    = rules.Store
	Config       = config.Config
)

// New builds an Orchestrator over the given stores and configuration.
func New(catalogStore CatalogStore, configStore ConfigStore, ruleStore RuleStore, cfg *Config, clock Clock) *Orchestrator {
	return engine.New(catalogStore, configStore, ruleStore, cfg, clock)
}

// Evaluate runs one evaluation. It is a free function mirroring
// (*Orchestrator).Evaluate, for callers that prefer a functional-style
// entry point.
func Evaluate(ctx context.Context, orch *Orchestrator, user UserContext, snap Snapshot) (*Report, error) {
	return orch.Evaluate(ctx, user, snap)
}
