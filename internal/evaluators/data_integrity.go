package evaluators

import (
	"sort"
	"unicode"

	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

// DataIntegrity implements spec §4.F.5. Per spec §9's resolved overlap
// between DATA_INTEGRITY and INVALID_LOCATION, this evaluator owns
// duplicate-scan and corrupt-identifier detection; "impossible
// structured codes" belongs to InvalidLocation, so
// check_impossible_locations is intentionally not read here.
type DataIntegrity struct{}

func (DataIntegrity) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	checkDuplicates, _ := ctx.Rule.Conditions.Bool("check_duplicate_scans")

	var out []anomaly.Anomaly

	for _, row := range ctx.Rows {
		if isCorruptIdentifier(row.PalletID) {
			out = append(out, newAnomaly(ctx, row, map[string]interface{}{
				"kind": "corrupt_identifier",
			}))
		}
	}

	if checkDuplicates {
		out = append(out, duplicateScans(ctx)...)
	}

	return out, nil
}

// resolvedKey is the distinctness key for "distinct resolved locations"
// (spec §4.F.5): two raw codes that pattern-resolve to the same catalog
// Location count as one location, not two. A code that doesn't resolve
// falls back to its own canonical form, since it can't be collapsed with
// anything it doesn't share a resolved Location with.
func resolvedKey(ctx Context, row snapshot.Row) string {
	if loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode); ok {
		return loc.Code
	}
	return row.CanonicalLocationCode
}

func isCorruptIdentifier(palletID string) bool {
	if palletID == "" {
		return true
	}
	for _, r := range palletID {
		if !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}

func duplicateScans(ctx Context) []anomaly.Anomaly {
	byPallet := make(map[string][]snapshot.Row)
	for _, row := range ctx.Rows {
		if row.PalletID == "" {
			continue
		}
		byPallet[row.PalletID] = append(byPallet[row.PalletID], row)
	}

	pallets := make([]string, 0, len(byPallet))
	for p := range byPallet {
		pallets = append(pallets, p)
	}
	sort.Strings(pallets)

	var out []anomaly.Anomaly
	for _, palletID := range pallets {
		rows := byPallet[palletID]
		distinctLocations := make(map[string]bool, len(rows))
		for _, row := range rows {
			distinctLocations[resolvedKey(ctx, row)] = true
		}
		if len(distinctLocations) < 2 {
			continue
		}

		locations := make([]string, 0, len(distinctLocations))
		for loc := range distinctLocations {
			locations = append(locations, loc)
		}
		sort.Strings(locations)

		sort.Slice(rows, func(i, j int) bool {
			ki, kj := resolvedKey(ctx, rows[i]), resolvedKey(ctx, rows[j])
			if ki != kj {
				return ki < kj
			}
			return rows[i].CreationDate.Before(rows[j].CreationDate)
		})

		// One anomaly per extra occurrence: the first row of the group is
		// the canonical scan, every subsequent row is "extra".
		for _, row := range rows[1:] {
			out = append(out, newAnomaly(ctx, row, map[string]interface{}{
				"kind":      "duplicate_scan",
				"locations": locations,
			}))
		}
	}
	return out
}
