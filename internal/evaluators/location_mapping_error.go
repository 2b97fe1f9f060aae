package evaluators

import (
	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/catalog"
	"github.com/wareedge/rule-engine/internal/normalize"
)

// LocationMappingError implements spec §4.F.8: catalog entries whose
// declared location_type disagrees with what the code's structural
// shape implies, and catalog entries whose own pattern doesn't match
// their own code.
type LocationMappingError struct{}

func (LocationMappingError) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	validateTypes, _ := ctx.Rule.Conditions.Bool("validate_location_types")
	checkPatterns, _ := ctx.Rule.Conditions.Bool("check_pattern_consistency")

	seen := make(map[string]bool)
	var out []anomaly.Anomaly

	for _, row := range ctx.Rows {
		loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode)
		if !ok || seen[loc.Code] {
			continue
		}
		seen[loc.Code] = true

		if validateTypes {
			if decoded, isStructured := normalize.Decode(loc.Code); isStructured && loc.LocationType != catalog.Storage {
				out = append(out, newAnomaly(ctx, row, map[string]interface{}{
					"kind":          "location_type_mismatch",
					"decoded_shape": decoded,
					"catalog_type":  string(loc.LocationType),
				}))
			}
		}

		if checkPatterns && loc.Pattern != "" && !normalize.GlobMatch(loc.Pattern, loc.Code) {
			out = append(out, newAnomaly(ctx, row, map[string]interface{}{
				"kind":    "pattern_mismatch",
				"pattern": loc.Pattern,
				"code":    loc.Code,
			}))
		}
	}
	return out, nil
}
