// Package engine implements the Engine Orchestrator (spec §4.G): the
// single entry point that turns one uploaded snapshot into a Report,
// wiring together the code normalizer, the warehouse context resolver,
// the location catalog, the rule store, the evaluator registry, and the
// correlation pass.
package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/config"
	"github.com/wareedge/rule-engine/internal/correlate"
	"github.com/wareedge/rule-engine/internal/engineerr"
	"github.com/wareedge/rule-engine/internal/evaluators"
	"github.com/wareedge/rule-engine/internal/logging"
	"github.com/wareedge/rule-engine/internal/normalize"
	"github.com/wareedge/rule-engine/internal/resolver"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

// Orchestrator runs evaluations against a fixed set of backing stores.
// One Orchestrator is shared by every concurrent evaluation; its sem
// bounds how many run at once (spec §5's "backpressure / limits").
type Orchestrator struct {
	catalogStore catalog.Store
	configStore  catalog.ConfigStore
	ruleStore    rules.Store
	registry     *evaluators.Registry
	clock        snapshot.Clock
	cfg          *config.Config

	sem *semaphore.Weighted
}

// New builds an Orchestrator. clock may be nil, in which case
// snapshot.SystemClock is used.
func New(catalogStore catalog.Store, configStore catalog.ConfigStore, ruleStore rules.Store, cfg *config.Config, clock snapshot.Clock) *Orchestrator {
	if clock == nil {
		clock = snapshot.SystemClock{}
	}
	return &Orchestrator{
		catalogStore: catalogStore,
		configStore:  configStore,
		ruleStore:    ruleStore,
		registry:     evaluators.NewRegistry(),
		clock:        clock,
		cfg:          cfg,
		sem:          semaphore.NewWeighted(int64(cfg.Concurrency.MaxConcurrentEvaluations)),
	}
}

// Evaluate implements spec §4.G's eight-step algorithm.
func (o *Orchestrator) Evaluate(ctx context.Context, user snapshot.UserContext, snap snapshot.Snapshot) (*Report, error) {
	log := logging.Get(logging.CategoryEngine)
	timer := logging.StartTimer(logging.CategoryEngine, "Evaluate")
	defer timer.Stop()

	if len(snap.Rows) > o.cfg.Concurrency.MaxSnapshotRows {
		return nil, fmt.Errorf("engine: snapshot has %d rows, exceeds limit of %d: %w",
			len(snap.Rows), o.cfg.Concurrency.MaxSnapshotRows, engineerr.New(engineerr.InputMalformed, nil))
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, engineerr.New(engineerr.Cancelled, err)
	}
	defer o.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Concurrency.TotalTimeout)
	defer cancel()

	transition := func(s State) { log.Debug("state -> %s", s) }

	// Step 1: canonicalize every location code once (spec §4.G.1).
	for i := range snap.Rows {
		snap.Rows[i].CanonicalLocationCode = normalize.Canonical(snap.Rows[i].LocationCode)
	}

	// Step 2: resolve tenant (spec §4.G.2 / §4.C).
	transition(StateResolvingContext)
	tenant, warnings, err := o.resolveTenant(user, snap)
	if err != nil {
		return nil, err
	}
	if tenant == resolver.NoMatch {
		log.Warn("no tenant matched this snapshot for user %s", user.UserID)
		return &Report{
			Tenant:       resolver.NoMatch,
			PerRuleStats: map[string]RuleStat{},
			Warnings:     warnings,
		}, nil
	}

	// Step 3: load active rules and snapshot the catalog (spec §4.G.3).
	transition(StateLoading)
	activeRules, catalogSnap, activeConfig, err := o.loadContext(tenant, user.UserID)
	if err != nil {
		transition(StateFailedFatal)
		return nil, err
	}

	// Step 4: run each rule in order, isolating per-rule errors (spec
	// §4.G.4).
	transition(StateRunningRules)
	var allAnomalies []anomaly.Anomaly
	rulesUsed := make([]string, 0, len(activeRules))
	perRuleStats := make(map[string]RuleStat, len(activeRules))

	resolverFor := evaluators.NewResolver(catalogSnap, tenant, activeConfigID(activeConfig))
	unknownTypes := make(map[rules.Type]bool)

	for _, rule := range activeRules {
		if err := checkCancelled(ctx); err != nil {
			transition(StateCancelled)
			return nil, err
		}

		rulesUsed = append(rulesUsed, rule.ID)
		found, stat, ruleAnomalies := o.runRule(ctx, rule, snap.Rows, resolverFor, activeConfig, o.clock.Now())
		if !found {
			if !unknownTypes[rule.RuleType] {
				unknownTypes[rule.RuleType] = true
				log.Warn("rule %s has unrecognized rule_type %s, skipping", rule.ID, rule.RuleType)
			}
			warnings = append(warnings, fmt.Sprintf("unrecognized rule_type %s for rule %s", rule.RuleType, rule.ID))
		}
		perRuleStats[rule.ID] = stat
		allAnomalies = append(allAnomalies, ruleAnomalies...)
	}

	// Step 5: correlation pass (spec §4.G.5).
	transition(StateCorrelating)
	allAnomalies, err = o.correlate(allAnomalies)
	if err != nil {
		// Correlation failure is local-recoverable: the report still
		// carries every anomaly, just without cross-links.
		log.Error("correlation pass failed: %v", err)
		warnings = append(warnings, fmt.Sprintf("correlation pass failed: %v", err))
	}

	// Step 6: dedupe.
	allAnomalies = anomaly.Dedupe(allAnomalies)

	// Step 7: sort.
	anomaly.Sort(allAnomalies)

	transition(StateDone)
	return &Report{
		Tenant:       tenant,
		Anomalies:    allAnomalies,
		RulesUsed:    rulesUsed,
		PerRuleStats: perRuleStats,
		Warnings:     warnings,
	}, nil
}

func activeConfigID(cfg *catalog.WarehouseConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.ID
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return engineerr.New(engineerr.Cancelled, ctx.Err())
	default:
		return nil
	}
}

func (o *Orchestrator) resolveTenant(user snapshot.UserContext, snap snapshot.Snapshot) (string, []string, error) {
	res := resolver.New(o.catalogStore, resolver.Thresholds{
		MinScore:       o.cfg.Resolver.MinScore,
		MinMatchedRows: o.cfg.Resolver.MinMatchedRows,
	})

	codes := make([]string, 0, len(snap.Rows))
	seen := make(map[string]bool, len(snap.Rows))
	for _, r := range snap.Rows {
		c := r.CanonicalLocationCode
		if seen[c] {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}

	tenant := res.Resolve("", codes, user.AccessibleTenants, resolver.TenantActivity{
		DefaultTenant: user.DefaultTenant,
	})
	if tenant == resolver.NoMatch {
		return resolver.NoMatch, []string{"context not identified: no accessible tenant's catalog matched this snapshot"}, nil
	}
	return tenant, nil, nil
}

// loadContext implements spec §4.G.3: load active rules and take an
// immutable catalog snapshot so later catalog edits can't race with this
// evaluation. Store-level failures here are fatal (spec §7).
func (o *Orchestrator) loadContext(tenant, userID string) (rs []rules.Rule, catalogSnap catalog.Store, activeConfig *catalog.WarehouseConfig, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = engineerr.New(engineerr.CatalogUnavailable, fmt.Errorf("panic loading context: %v", r))
		}
	}()

	rs = o.ruleStore.ActiveRules(tenant)
	catalogSnap = catalog.Snapshot(o.catalogStore, tenant)

	if o.configStore != nil {
		if cfg, ok := o.configStore.ActiveConfig(tenant, userID); ok {
			activeConfig = &cfg
		}
	}
	return rs, catalogSnap, activeConfig, nil
}

// runRule runs one rule's evaluator under T_rule, isolating panics and
// errors per spec §4.G.4 / §7: a failing or timed-out evaluator
// contributes zero anomalies and a recorded diagnostic, never aborts the
// evaluation.
func (o *Orchestrator) runRule(ctx context.Context, rule rules.Rule, rows []snapshot.Row, resolverFor *evaluators.Resolver, activeConfig *catalog.WarehouseConfig, now time.Time) (found bool, stat RuleStat, out []anomaly.Anomaly) {
	eval, found := o.registry.Lookup(rule.RuleType)

	ruleCtx, cancel := context.WithTimeout(ctx, o.cfg.Concurrency.RuleTimeout)
	defer cancel()

	start := time.Now()
	resultCh := make(chan ruleResult, 1)

	go func() {
		anomalies, err := runEvaluatorSafely(eval, evaluators.Context{
			Rule:     rule,
			Rows:     rows,
			Resolver: resolverFor,
			Now:      now,
			Config:   activeConfig,
		})
		resultCh <- ruleResult{anomalies: anomalies, err: err}
	}()

	select {
	case <-ruleCtx.Done():
		stat = RuleStat{Errored: true, ErrorKind: string(engineerr.EvaluatorTimeout), DurationMS: time.Since(start).Milliseconds()}
		logging.Get(logging.CategoryEngine).Error("rule %s timed out after %s", rule.ID, o.cfg.Concurrency.RuleTimeout)
		return found, stat, nil
	case result := <-resultCh:
		duration := time.Since(start).Milliseconds()
		if result.err != nil {
			logging.Get(logging.CategoryEngine).Error("rule %s errored: %v", rule.ID, result.err)
			return found, RuleStat{Errored: true, ErrorKind: string(engineerr.EvaluatorRuntime), DurationMS: duration}, nil
		}
		return found, RuleStat{Count: len(result.anomalies), DurationMS: duration}, result.anomalies
	}
}

type ruleResult struct {
	anomalies []anomaly.Anomaly
	err       error
}

// runEvaluatorSafely converts an evaluator panic into an error so one
// misbehaving rule can never take the whole evaluation down with it.
func runEvaluatorSafely(eval evaluators.Evaluator, ctx evaluators.Context) (anomalies []anomaly.Anomaly, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()
	return eval.Evaluate(ctx)
}

// correlate implements spec §4.G.5: link anomalies sharing a pallet ID
// between STAGNANT_PALLETS and OVERCAPACITY, synthesizing no new
// anomalies.
func (o *Orchestrator) correlate(anomalies []anomaly.Anomaly) ([]anomaly.Anomaly, error) {
	var stagnant, overcapacity []string
	for _, a := range anomalies {
		switch a.RuleType {
		case rules.TypeStagnantPallets:
			stagnant = append(stagnant, a.PalletID)
		case rules.TypeOvercapacity:
			overcapacity = append(overcapacity, a.PalletID)
		}
	}

	correlated, err := correlate.Correlate(stagnant, overcapacity)
	if err != nil {
		return anomalies, err
	}
	if len(correlated) == 0 {
		return anomalies, nil
	}

	correlatedSet := make(map[string]bool, len(correlated))
	for _, id := range correlated {
		correlatedSet[id] = true
	}

	// Build the per-pallet set of anomaly IDs drawn from the two
	// correlated rule types, then attach it to every anomaly for a
	// correlated pallet (including anomalies from other rule types
	// touching the same pallet, per spec §4.G.5's pallet-scoped link).
	linkedIDs := make(map[string][]string, len(correlated))
	for _, a := range anomalies {
		if !correlatedSet[a.PalletID] {
			continue
		}
		if a.RuleType == rules.TypeStagnantPallets || a.RuleType == rules.TypeOvercapacity {
			linkedIDs[a.PalletID] = append(linkedIDs[a.PalletID], a.ID())
		}
	}

	for i := range anomalies {
		if !correlatedSet[anomalies[i].PalletID] {
			continue
		}
		anomalies[i].CorrelatedAnomalyIDs = otherIDs(linkedIDs[anomalies[i].PalletID], anomalies[i].ID())
	}
	return anomalies, nil
}

// otherIDs returns ids minus self, so an anomaly never lists itself as
// its own correlation.
func otherIDs(ids []string, self string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}
