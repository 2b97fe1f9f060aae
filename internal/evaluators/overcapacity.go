package evaluators

import (
	"sort"

	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

// Overcapacity implements spec §4.F.3: locations holding more pallets
// than their declared capacity. The excess rows — the ones actually
// flagged — are the newest ones by creation_date, tie-broken by
// pallet_id.
type Overcapacity struct{}

func (Overcapacity) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	checkAll, _ := ctx.Rule.Conditions.Bool("check_all_locations")
	locationTypes, _ := ctx.Rule.Conditions.StringSlice("location_types")
	zones, _ := ctx.Rule.Conditions.StringSlice("zones")

	type group struct {
		loc  catalog.Location
		rows []snapshot.Row
	}
	groups := make(map[string]*group)

	for _, row := range ctx.Rows {
		loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode)
		if !ok {
			continue
		}
		if !checkAll {
			matchesType := len(locationTypes) > 0 && inTypeSet(loc.LocationType, locationTypes)
			matchesZone := len(zones) > 0 && inStringSet(loc.Zone, zones)
			if !matchesType && !matchesZone {
				continue
			}
		}

		g, exists := groups[loc.Code]
		if !exists {
			g = &group{loc: loc}
			groups[loc.Code] = g
		}
		g.rows = append(g.rows, row)
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []anomaly.Anomaly
	for _, code := range codes {
		g := groups[code]
		excess := len(g.rows) - g.loc.Capacity
		if excess <= 0 {
			continue
		}

		sort.Slice(g.rows, func(i, j int) bool {
			if !g.rows[i].CreationDate.Equal(g.rows[j].CreationDate) {
				return g.rows[i].CreationDate.After(g.rows[j].CreationDate)
			}
			return g.rows[i].PalletID < g.rows[j].PalletID
		})

		for _, row := range g.rows[:excess] {
			out = append(out, newAnomaly(ctx, row, map[string]interface{}{
				"capacity": g.loc.Capacity,
				"occupied": len(g.rows),
			}))
		}
	}
	return out, nil
}

func inStringSet(s string, set []string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
