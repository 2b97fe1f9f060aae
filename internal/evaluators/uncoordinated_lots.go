package evaluators

import (
	"math"

	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/snapshot"
)

// UncoordinatedLots implements spec §4.F.2 (lot stragglers): a lot whose
// rows are mostly moved out of the source location types but a few
// rows remain behind.
type UncoordinatedLots struct{}

func (UncoordinatedLots) Evaluate(ctx Context) ([]anomaly.Anomaly, error) {
	theta, _ := ctx.Rule.Conditions.Float("completion_threshold")
	sourceTypes, _ := ctx.Rule.Conditions.StringSlice("location_types")

	type lotRows struct {
		source []snapshot.Row
		moved  int
	}
	lots := make(map[string]*lotRows)

	for _, row := range ctx.Rows {
		if row.ReceiptNumber == "" {
			continue
		}
		loc, ok := ctx.Resolver.Resolve(row.CanonicalLocationCode)
		if !ok {
			continue // unresolved rows count toward neither src nor moved
		}
		l, exists := lots[row.ReceiptNumber]
		if !exists {
			l = &lotRows{}
			lots[row.ReceiptNumber] = l
		}
		if inTypeSet(loc.LocationType, sourceTypes) {
			l.source = append(l.source, row)
		} else {
			l.moved++
		}
	}

	var out []anomaly.Anomaly
	for receipt, l := range lots {
		src := len(l.source)
		total := src + l.moved
		if total == 0 || src == 0 || src == total {
			continue
		}

		completion := float64(l.moved) / float64(total)
		if completion < theta {
			continue
		}
		stragglerCeiling := int(math.Ceil((1 - theta) * float64(total)))
		if src > stragglerCeiling {
			continue
		}

		for _, row := range l.source {
			out = append(out, newAnomaly(ctx, row, map[string]interface{}{
				"receipt_number":  receipt,
				"completion":      roundToOneDecimal(completion),
				"straggler_count": src,
			}))
		}
	}
	return out, nil
}
