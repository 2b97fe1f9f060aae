package catalog

import (
	"sort"

	"github.com/wareedge/rule-engine/internal/normalize"
)

// Store is the contract every Location Catalog backend implements (spec
// §4.B). Both the durable SQLite-backed store and the in-memory snapshot
// the Engine Orchestrator takes at evaluation start satisfy this
// interface, so evaluators never know which one they're talking to.
type Store interface {
	// GetByCode does an exact match on the canonicalized code, filtered by
	// the active warehouse_config_id when one is selected for the user
	// (else orphans are included). GetByCode never scans patterns.
	GetByCode(tenant, code string, activeConfigID string) (Location, bool)

	// Resolve implements spec §4.B.resolve: exact match first, else the
	// most-specific pattern match, tie-broken by is_active then code.
	Resolve(tenant, rawCode string, activeConfigID string) (Location, bool)

	// CountBy counts active locations of the given type for the tenant.
	CountBy(tenant string, lt LocationType) int

	// IterActive returns all active locations for the tenant, in a stable
	// order (by code) so callers that need determinism don't have to sort
	// again themselves.
	IterActive(tenant string) []Location

	// AllLocations returns every location for the tenant regardless of
	// is_active or binding, active or not, orphan or bound. Not part of
	// spec §4.B's evaluator-facing contract; used internally by the
	// Engine Orchestrator to take its immutable per-evaluation snapshot
	// (spec §4.G.3), since resolve's tie-break needs to see inactive
	// candidates too.
	AllLocations(tenant string) []Location
}

// MemoryStore is an in-memory Store snapshot: it is what the Engine
// Orchestrator builds once per evaluation from a durable Store (spec §5:
// "catalog is read-only during an evaluation... readers obtain an
// immutable view"). It is also a perfectly usable standalone Store for
// tests and for tenants whose catalogs are small enough to hold entirely
// in memory.
type MemoryStore struct {
	// byTenant[warehouseID][code] -> Location
	byTenant map[string]map[string]Location
}

// NewMemoryStore builds a MemoryStore from a flat list of locations.
func NewMemoryStore(locations []Location) *MemoryStore {
	m := &MemoryStore{byTenant: make(map[string]map[string]Location)}
	for _, l := range locations {
		tenant := m.byTenant[l.WarehouseID]
		if tenant == nil {
			tenant = make(map[string]Location)
			m.byTenant[l.WarehouseID] = tenant
		}
		tenant[l.Code] = l
	}
	return m
}

func (m *MemoryStore) visible(l Location, activeConfigID string) bool {
	if activeConfigID == "" {
		return l.WarehouseConfigID == ""
	}
	return l.WarehouseConfigID == "" || l.WarehouseConfigID == activeConfigID
}

// GetByCode implements Store.
func (m *MemoryStore) GetByCode(tenant, code string, activeConfigID string) (Location, bool) {
	c := normalize.Canonical(code)
	tenantLocs, ok := m.byTenant[tenant]
	if !ok {
		return Location{}, false
	}
	l, ok := tenantLocs[c]
	if !ok || !m.visible(l, activeConfigID) {
		return Location{}, false
	}
	return l, true
}

// Resolve implements Store.
func (m *MemoryStore) Resolve(tenant, rawCode string, activeConfigID string) (Location, bool) {
	c := normalize.Canonical(rawCode)
	if l, ok := m.GetByCode(tenant, c, activeConfigID); ok {
		return l, true
	}

	tenantLocs, ok := m.byTenant[tenant]
	if !ok {
		return Location{}, false
	}

	var candidates []Location
	for _, l := range tenantLocs {
		if l.Pattern == "" || !m.visible(l, activeConfigID) {
			continue
		}
		if normalize.GlobMatch(l.Pattern, c) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return Location{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := specificity(candidates[i].Pattern), specificity(candidates[j].Pattern)
		if si != sj {
			return si > sj
		}
		if candidates[i].IsActive != candidates[j].IsActive {
			return candidates[i].IsActive
		}
		return candidates[i].Code < candidates[j].Code
	})
	return candidates[0], true
}

// specificity counts literal (non-glob-metacharacter) runes in a pattern;
// higher is more specific, per spec §4.B's tie-break rule.
func specificity(pattern string) int {
	n := 0
	inClass := false
	for _, r := range pattern {
		switch {
		case r == '[':
			inClass = true
		case r == ']':
			inClass = false
		case inClass:
			// character class contents don't count as literal chars
		case r == '*' || r == '?':
			// wildcard, not literal
		default:
			n++
		}
	}
	return n
}

// CountBy implements Store.
func (m *MemoryStore) CountBy(tenant string, lt LocationType) int {
	n := 0
	for _, l := range m.byTenant[tenant] {
		if l.IsActive && l.LocationType == lt {
			n++
		}
	}
	return n
}

// IterActive implements Store.
func (m *MemoryStore) IterActive(tenant string) []Location {
	var out []Location
	for _, l := range m.byTenant[tenant] {
		if l.IsActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// AllLocations implements Store.
func (m *MemoryStore) AllLocations(tenant string) []Location {
	tenantLocs := m.byTenant[tenant]
	out := make([]Location, 0, len(tenantLocs))
	for _, l := range tenantLocs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Snapshot copies every location for tenant out of src into a new,
// independent MemoryStore. Used by the Engine Orchestrator to take the
// immutable per-evaluation view from a durable Store (spec §4.G.3).
func Snapshot(src Store, tenant string) *MemoryStore {
	return NewMemoryStore(src.AllLocations(tenant))
}
