package evaluators

import (
	"strings"

	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/normalize"
)

// TemperatureZoneMismatch implements spec §4.F.7 (product-incompat):
// products whose description matches a forbidden pattern sitting in a
// prohibited zone.
type TemperatureZoneMismatch struct{}

func (TemperatureZoneMismatch) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	patterns, _ := ctx.Rule.Conditions.StringSlice("product_patterns")
	prohibitedZones, _ := ctx.Rule.Conditions.StringSlice("prohibited_zones")
	thresholdMinutes, hasThreshold := ctx.Rule.Conditions.Float("time_threshold_minutes")

	var out []anomaly.Anomaly
	for _, row := range ctx.Rows {
		loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode)
		if !ok || !inStringSet(loc.Zone, prohibitedZones) {
			continue
		}

		matched := matchAnyPatternCaseInsensitive(patterns, row.Description)
		if matched == "" {
			continue
		}

		if hasThreshold {
			elapsedMinutes := ctx.Now.Sub(row.CreationDate).Minutes()
			if elapsedMinutes < thresholdMinutes {
				continue
			}
		}

		out = append(out, newAnomaly(ctx, row, map[string]interface{}{
			"matched_pattern": matched,
			"zone":            loc.Zone,
		}))
	}
	return out, nil
}

func matchAnyPatternCaseInsensitive(patterns []string, description string) string {
	upperDesc := strings.ToUpper(description)
	for _, p := range patterns {
		if normalize.GlobMatch(strings.ToUpper(p), upperDesc) {
			return p
		}
	}
	return ""
}
