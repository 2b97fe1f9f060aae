package rules

import "fmt"

// fieldSpec declares one condition field a rule_type accepts: its key and
// whether it's required.
type fieldSpec struct {
	key      string
	required bool
}

// schemas declares, per rule_type, the structured condition keys spec
// §4.F's sub-clauses name. A condition payload that is missing a
// required key, or that sets an unknown key, fails validation.
//
// Adapted from the teacher's SchemaValidator (internal/mangle/schema_validator.go),
// which rejects Datalog rules referencing predicates with no declared
// schema ("schema drift prevention"); here the same idea guards against
// a Rule whose conditions reference a field or shape its rule_type never
// declared.
var schemas = map[Type][]fieldSpec{
	TypeStagnantPallets: {
		{"location_types", true},
		{"time_threshold_hours", true},
	},
	TypeUncoordinatedLots: {
		{"completion_threshold", true},
		{"location_types", true},
	},
	TypeOvercapacity: {
		{"check_all_locations", false},
		{"location_types", false},
		{"zones", false},
	},
	TypeInvalidLocation: {
		{"check_undefined_locations", true},
		{"check_impossible_locations", false},
	},
	TypeDataIntegrity: {
		{"check_duplicate_scans", false},
		{"check_impossible_locations", false},
	},
	TypeLocationSpecificStagnant: {
		{"location_pattern", true},
		{"time_threshold_hours", true},
	},
	TypeTemperatureZoneMismatch: {
		{"product_patterns", true},
		{"prohibited_zones", true},
		{"time_threshold_minutes", false},
	},
	TypeLocationMappingError: {
		{"validate_location_types", true},
		{"check_pattern_consistency", true},
	},
}

// ValidationError describes why a rule's conditions failed schema
// validation — the spec §7 RuleMalformed kind.
type ValidationError struct {
	RuleID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rule %s: %s", e.RuleID, e.Reason)
}

// Validate checks r.Conditions against the schema declared for
// r.RuleType. An unknown RuleType always fails validation. LoadFile and
// MemoryStore.LoadAll apply this check; MemoryStore.Upsert does not, so
// a rule with an unknown type can still reach the Evaluator Registry,
// which answers it with a NullEvaluator (spec §4.E).
func Validate(r Rule) error {
	spec, ok := schemas[r.RuleType]
	if !ok {
		return &ValidationError{RuleID: r.ID, Reason: fmt.Sprintf("unknown rule_type %q", r.RuleType)}
	}
	declared := make(map[string]bool, len(spec))
	for _, f := range spec {
		declared[f.key] = true
		if f.required {
			if _, present := r.Conditions[f.key]; !present {
				return &ValidationError{RuleID: r.ID, Reason: fmt.Sprintf("missing required condition field %q", f.key)}
			}
		}
	}
	for key := range r.Conditions {
		if !declared[key] {
			return &ValidationError{RuleID: r.ID, Reason: fmt.Sprintf("undeclared condition field %q for rule_type %s", key, r.RuleType)}
		}
	}
	return nil
}
