// Package resolver implements the Warehouse Context Resolver (spec §4.C):
// given the distinct raw location codes in a snapshot and a user's
// accessible tenants, pick the tenant whose catalog best explains the
// upload.
package resolver

import (
	"sort"
	"sync"

	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/logging"
)

// NoMatch is returned by Resolve when no tenant clears the coverage
// floor.
const NoMatch = ""

// Thresholds are the resolver's policy constants (spec §4.C.3, §9).
type Thresholds struct {
	MinScore       float64
	MinMatchedRows int
}

// TenantActivity supplies the tie-break signals in spec §4.C.4: which
// tenant is the user's default, and which tenant saw the most recent
// snapshot activity.
type TenantActivity struct {
	DefaultTenant        string
	LastActivityByTenant map[string]int64 // unix seconds, higher = more recent
}

// Resolver memoizes its result per (user, snapshot) — spec §4.C: "The
// resolver is called once per snapshot and its result is memoized."
type Resolver struct {
	store      catalog.Store
	thresholds Thresholds

	mu    sync.Mutex
	cache map[string]string
}

// New creates a Resolver backed by store, using the given thresholds.
func New(store catalog.Store, thresholds Thresholds) *Resolver {
	return &Resolver{store: store, thresholds: thresholds, cache: map[string]string{}}
}

// Score is the coverage ratio for one candidate tenant, kept around for
// callers (e.g. diagnostics) that want more than the winning tenant.
type Score struct {
	Tenant  string
	Matched int
	Total   int
	Ratio   float64
}

// Resolve implements spec §4.C's algorithm. memoKey should uniquely
// identify (user, snapshot) for this evaluation; pass "" to disable
// memoization.
func (r *Resolver) Resolve(memoKey string, distinctCodes []string, candidates []string, activity TenantActivity) string {
	if memoKey != "" {
		r.mu.Lock()
		if cached, ok := r.cache[memoKey]; ok {
			r.mu.Unlock()
			return cached
		}
		r.mu.Unlock()
	}

	result := r.resolve(distinctCodes, candidates, activity)

	if memoKey != "" {
		r.mu.Lock()
		r.cache[memoKey] = result
		r.mu.Unlock()
	}
	return result
}

func (r *Resolver) resolve(distinctCodes []string, candidates []string, activity TenantActivity) string {
	total := len(distinctCodes)
	if total == 0 || len(candidates) == 0 {
		logging.Get(logging.CategoryResolver).Warn("no candidates or empty snapshot, returning NoMatch")
		return NoMatch
	}

	scores := make([]Score, 0, len(candidates))
	for _, tenant := range candidates {
		matched := 0
		for _, code := range distinctCodes {
			if _, ok := r.store.Resolve(tenant, code, ""); ok {
				matched++
			}
		}
		scores = append(scores, Score{
			Tenant:  tenant,
			Matched: matched,
			Total:   total,
			Ratio:   float64(matched) / float64(total),
		})
	}

	best := pickBest(scores, activity)
	if best == nil {
		return NoMatch
	}
	if best.Ratio < r.thresholds.MinScore || best.Matched < r.thresholds.MinMatchedRows {
		logging.Get(logging.CategoryResolver).Info(
			"best candidate %s scored %.2f (%d/%d matched), below floor", best.Tenant, best.Ratio, best.Matched, best.Total)
		return NoMatch
	}
	return best.Tenant
}

// pickBest selects argmax r(t), tie-broken per spec §4.C.4: (a) user's
// default tenant, (b) most recent snapshot activity, (c) lexicographic
// warehouse_id.
func pickBest(scores []Score, activity TenantActivity) *Score {
	if len(scores) == 0 {
		return nil
	}

	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.Ratio != b.Ratio {
			return a.Ratio > b.Ratio
		}
		if (a.Tenant == activity.DefaultTenant) != (b.Tenant == activity.DefaultTenant) {
			return a.Tenant == activity.DefaultTenant
		}
		ai, bi := activity.LastActivityByTenant[a.Tenant], activity.LastActivityByTenant[b.Tenant]
		if ai != bi {
			return ai > bi
		}
		return a.Tenant < b.Tenant
	})
	return &scores[0]
}
