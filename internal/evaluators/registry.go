package evaluators

import (
	"github.com/wareedge/rule-engine/internal/anomaly"
	"github.com/wareedge/rule-engine/internal/rules"
)

// NullEvaluator is returned by Registry.Lookup for an unrecognized
// rule_type (spec §4.E). It returns no anomalies; the Orchestrator is
// responsible for logging the unknown type once per snapshot, since it
// — not the evaluator — owns the per-evaluation scope that "once" is
// measured against.
type NullEvaluator struct{}

func (NullEvaluator) Evaluate(Context) ([]anomaly.Anomaly, error) {
	return nil, nil
}

// Registry maps rule_type to the Evaluator that handles it.
type Registry struct {
	byType map[rules.Type]Evaluator
}

// NewRegistry builds the standard registry with all eight evaluators of
// spec §4.F wired in.
func NewRegistry() *Registry {
	return &Registry{byType: map[rules.Type]Evaluator{
		rules.TypeStagnantPallets:         StagnantPallets{},
		rules.TypeUncoordinatedLots:       UncoordinatedLots{},
		rules.TypeOvercapacity:            Overcapacity{},
		rules.TypeInvalidLocation:         InvalidLocation{},
		rules.TypeDataIntegrity:           DataIntegrity{},
		rules.TypeLocationSpecificStagnant: LocationSpecificStagnant{},
		rules.TypeTemperatureZoneMismatch: TemperatureZoneMismatch{},
		rules.TypeLocationMappingError:    LocationMappingError{},
	}}
}

// Lookup returns the Evaluator for t, and whether t was a recognized
// rule_type. An unrecognized type gets a NullEvaluator back alongside
// found=false.
func (r *Registry) Lookup(t rules.Type) (Evaluator, bool) {
	e, ok := r.byType[t]
	if !ok {
		return NullEvaluator{}, false
	}
	return e, true
}
