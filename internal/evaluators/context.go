// Package evaluators implements the eight rule evaluators of spec
// §4.F and the registry (spec §4.E) that dispatches a Rule's rule_type
// to its evaluator.
package evaluators

import (
	"time"

	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/rules"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

// Resolver memoizes catalog.Store.Resolve lookups for one evaluation:
// every evaluator resolves the same rows against the same immutable
// catalog snapshot, so caching here saves every evaluator after the
// first from re-walking glob patterns. GetByCode is passed through
// uncached.
type Resolver struct {
	store          catalog.Store
	tenant         string
	activeConfigID string

	cache map[string]cacheEntry
}

type cacheEntry struct {
	loc catalog.Location
	ok  bool
}

// NewResolver builds a Resolver bound to one tenant's catalog snapshot
// and active config selection for the duration of one evaluation.
func NewResolver(store catalog.Store, tenant, activeConfigID string) *Resolver {
	return &Resolver{store: store, tenant: tenant, activeConfigID: activeConfigID, cache: make(map[string]cacheEntry)}
}

// Resolve returns the Location a canonical code resolves to, per spec
// §4.B (exact match, else most-specific pattern match).
func (r *Resolver) Resolve(canonicalCode string) (catalog.Location, bool) {
	if e, ok := r.cache[canonicalCode]; ok {
		return e.loc, e.ok
	}
	loc, ok := r.store.Resolve(r.tenant, canonicalCode, r.activeConfigID)
	r.cache[canonicalCode] = cacheEntry{loc, ok}
	return loc, ok
}

// GetByCode does the exact-match-only lookup spec §4.B requires for
// invalid-location detection (never falls back to pattern scanning).
func (r *Resolver) GetByCode(canonicalCode string) (catalog.Location, bool) {
	return r.store.GetByCode(r.tenant, canonicalCode, r.activeConfigID)
}

// Context is what the Orchestrator hands every evaluator (spec §4.F):
// the rule being evaluated, the canonicalized snapshot rows, a resolver
// over the frozen per-evaluation catalog, and a fixed "now".
type Context struct {
	Rule     rules.Rule
	Rows     []snapshot.Row
	Resolver *Resolver
	Now      time.Time

	// Config is the tenant's active WarehouseConfig, when one is
	// selected for the acting user. nil when no config is active; the
	// only evaluator that reads it, INVALID_LOCATION, then skips its
	// structural-bounds ("impossible") check rather than guessing bounds.
	Config *catalog.WarehouseConfig
}

// Evaluator evaluates one Rule over a Context and returns the anomalies
// it finds. Implementations are deterministic given identical inputs
// (spec §4.F: "All evaluators are deterministic given the same inputs").
type Evaluator interface {
	Evaluate(ctx Context) ([]anomaly.Anomaly, error)
}

func newAnomaly(ctx Context, row snapshot.Row, details map[string]interface{}) anomaly.Anomaly {
	return anomaly.Anomaly{
		PalletID:        row.PalletID,
		LocationCode:    row.CanonicalLocationCode,
		RuleID:          ctx.Rule.ID,
		RuleName:        ctx.Rule.Name,
		RuleType:        ctx.Rule.RuleType,
		Priority:        ctx.Rule.Priority,
		Category:        ctx.Rule.Category,
		PrecedenceLevel: ctx.Rule.PrecedenceLevel,
		Details:         details,
	}
}

func roundToOneDecimal(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

func hoursSince(now, then time.Time) float64 {
	return now.Sub(then).Hours()
}

func inTypeSet(lt catalog.LocationType, types []string) bool {
	for _, t := range types {
		if string(lt) == t {
			return true
		}
	}
	return false
}
