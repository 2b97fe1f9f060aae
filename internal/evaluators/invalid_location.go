package evaluators

import (
	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/normalize"
)

// InvalidLocation implements spec §4.F.4: rows whose canonicalized
// location code doesn't resolve to any catalog entry ("undefined"), and
// optionally rows whose code decodes to a structurally valid shape but
// whose dimensions fall outside the warehouse's declared bounds
// ("impossible").
type InvalidLocation struct{}

func (InvalidLocation) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	checkUndefined, _ := ctx.Rule.Conditions.Bool("check_undefined_locations")
	checkImpossible, _ := ctx.Rule.Conditions.Bool("check_impossible_locations")

	var out []anomaly.Anomaly
	for _, row := range ctx.Rows {
		// The structural decode/bounds check runs independent of catalog
		// resolution: an out-of-bounds structured code is by construction
		// not in the catalog, so gating this on a successful Resolve would
		// make "impossible" unreachable for the codes it exists to catch.
		if checkImpossible && ctx.Config != nil {
			if decoded, isStructured := normalize.Decode(row.CanonicalLocationCode); isStructured {
				if dimension, bad := outOfBounds(decoded, *ctx.Config); bad {
					out = append(out, newAnomaly(ctx, row, map[string]interface{}{
						"kind":      "impossible",
						"code":      row.CanonicalLocationCode,
						"dimension": dimension,
					}))
					continue
				}
			}
		}

		if checkUndefined {
			if _, resolved := ctx.Resolver.Resolve(row.CanonicalLocationCode); !resolved {
				out = append(out, newAnomaly(ctx, row, map[string]interface{}{
					"kind": "undefined",
					"code": row.CanonicalLocationCode,
				}))
			}
		}
	}
	return out, nil
}
