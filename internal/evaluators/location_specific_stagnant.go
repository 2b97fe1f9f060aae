package evaluators

import (
	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/normalize"
)

// LocationSpecificStagnant implements spec §4.F.6: like
// StagnantPallets, but gated on a glob pattern over the resolved
// location's code rather than its location_type.
type LocationSpecificStagnant struct{}

func (LocationSpecificStagnant) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	pattern, _ := ctx.Rule.Conditions.String("location_pattern")
	thresholdHours, _ := ctx.Rule.Conditions.Float("time_threshold_hours")

	var out []anomaly.Anomaly
	for _, row := range ctx.Rows {
		loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode)
		if !ok {
			continue
		}
		if !normalize.GlobMatch(pattern, loc.Code) {
			continue
		}

		age := hoursSince(ctx.Now, row.CreationDate)
		if age <= thresholdHours {
			continue
		}

		out = append(out, newAnomaly(ctx, row, map[string]interface{}{
			"age_hours": roundToOneDecimal(age),
			"location":  loc.Code,
		}))
	}
	return out, nil
}
