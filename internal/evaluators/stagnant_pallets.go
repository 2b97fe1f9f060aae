package evaluators

import "github.com/wareedge/rule-engine/internal/anomaly"

// StagnantPallets implements spec §4.F.1: pallets sitting longer than a
// threshold in one of a set of location types.
type StagnantPallets struct{}

func (StagnantPallets) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	locationTypes, _ := ctx.Rule.Conditions.StringSlice("location_types")
	thresholdHours, _ := ctx.Rule.Conditions.Float("time_threshold_hours")

	var out []anomaly.Anomaly
	for _, row := range ctx.Rows {
		loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode)
		if !ok {
			// Unresolved rows are INVALID_LOCATION's concern, not ours.
			continue
		}
		if !inTypeSet(loc.LocationType, locationTypes) {
			continue
		}

		age := hoursSince(ctx.Now, row.CreationDate)
		if age <= thresholdHours {
			continue
		}

		out = append(out, newAnomaly(ctx, row, map[string]interface{}{
			"age_hours":     roundToOneDecimal(age),
			"location_type": string(loc.LocationType),
		}))
	}
	return out, nil
}
