package anomaly

import (
	"sort"

	"github.com/wareedge/rule-engine/internal/rules"
)

// categoryRank fixes the "category enum order" spec §4.G.7's sort key
// names but never defines numerically: the declaration order spec §3
// lists them in (FLOW_TIME, SPACE, PRODUCT).
var categoryRank = map[rules.Category]int{
	rules.FlowTime: 0,
	rules.Space:    1,
	rules.Product:  2,
}

// Sort orders anomalies in place by
// (priority rank desc, precedence_level asc, category enum order,
// rule_id asc, pallet_id asc) — spec §4.G.7. The sort is stable so any
// earlier emission order that ties on every key is preserved, which in
// turn makes "keep the first emitted" in Dedupe meaningful.
func Sort(anomalies []Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]

		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if a.PrecedenceLevel != b.PrecedenceLevel {
			return a.PrecedenceLevel < b.PrecedenceLevel
		}
		if ca, cb := categoryRank[a.Category], categoryRank[b.Category]; ca != cb {
			return ca < cb
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.PalletID < b.PalletID
	})
}

// Dedupe removes duplicates per spec §4.G.6 ((rule_id, pallet_id,
// location_code) identity), keeping the first occurrence in input
// order. Call before Sort so "first emitted" refers to evaluator
// emission order, not presentation order.
func Dedupe(anomalies []Anomaly) []Anomaly {
	seen := make(map[[3]string]bool, len(anomalies))
	out := make([]Anomaly, 0, len(anomalies))
	for _, a := range anomalies {
		key := a.DedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
