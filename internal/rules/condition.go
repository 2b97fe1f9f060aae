package rules

import (
	"fmt"
	"strings"
)

// Operator is one of the eight comparison operators spec §6 names.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpInList      Operator = "in_list"
	OpRegexMatch  Operator = "regex_match"
)

// LogicalOperator chains one Condition to the next.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Condition is one clause of the generic condition schema (spec §6):
// {field, operator, value, logical_operator?}.
type Condition struct {
	Field           string
	Operator        Operator
	Value           interface{}
	LogicalOperator LogicalOperator // combines with the NEXT condition; empty on the last
}

// FieldValues supplies the value of a named field for one evaluation
// subject (typically one snapshot row). Evaluators adapt their row type
// to this function rather than the condition evaluator knowing about
// rows.
type FieldValues func(field string) (interface{}, bool)

// Evaluate applies a left-to-right chain of Conditions to fields,
// combining with AND/OR exactly as listed (no operator precedence beyond
// strict left-to-right, per spec §6).
func Evaluate(conditions []Condition, fields FieldValues) (bool, error) {
	if len(conditions) == 0 {
		return true, nil
	}

	result, err := evalOne(conditions[0], fields)
	if err != nil {
		return false, err
	}

	for i := 1; i < len(conditions); i++ {
		prevOp := conditions[i-1].LogicalOperator
		next, err := evalOne(conditions[i], fields)
		if err != nil {
			return false, err
		}
		switch prevOp {
		case LogicalOr:
			result = result || next
		default: // AND is the default when unspecified
			result = result && next
		}
	}
	return result, nil
}

func evalOne(c Condition, fields FieldValues) (bool, error) {
	actual, ok := fields(c.Field)
	if !ok {
		return false, nil
	}

	switch c.Operator {
	case OpEquals:
		return compareEqual(actual, c.Value), nil
	case OpNotEquals:
		return !compareEqual(actual, c.Value), nil
	case OpContains:
		return stringsContains(actual, c.Value), nil
	case OpNotContains:
		return !stringsContains(actual, c.Value), nil
	case OpGreaterThan:
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a > b })
	case OpLessThan:
		return compareNumeric(actual, c.Value, func(a, b float64) bool { return a < b })
	case OpInList:
		return inList(actual, c.Value), nil
	case OpRegexMatch:
		return regexMatch(actual, c.Value)
	default:
		return false, fmt.Errorf("unknown condition operator %q", c.Operator)
	}
}

func compareEqual(a, b interface{}) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func stringsContains(a, b interface{}) bool {
	return strings.Contains(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func compareNumeric(a, b interface{}, cmp func(a, b float64) bool) (bool, error) {
	af, ok := toFloat(a)
	if !ok {
		return false, fmt.Errorf("value %v is not numeric", a)
	}
	bf, ok := toFloat(b)
	if !ok {
		return false, fmt.Errorf("value %v is not numeric", b)
	}
	return cmp(af, bf), nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func inList(a, b interface{}) bool {
	list, ok := b.([]interface{})
	if !ok {
		if ss, ok := b.([]string); ok {
			for _, s := range ss {
				if s == fmt.Sprint(a) {
					return true
				}
			}
		}
		return false
	}
	for _, item := range list {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

func regexMatch(a, b interface{}) (bool, error) {
	pattern, ok := b.(string)
	if !ok {
		return false, fmt.Errorf("regex_match value must be a string pattern")
	}
	re, err := compileCached(pattern)
	if err != nil {
		return false, fmt.Errorf("compile regex %q: %w", pattern, err)
	}
	return re.MatchString(fmt.Sprint(a)), nil
}
