// Package condition evaluates boolean-expression trees against a data
// snapshot. Evaluation is pure: no state, no side effects.
package condition

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andyoucreate/rilaykit/model"
)

// Evaluate computes the node's own (field, operator, value) test, then
// combines it with the aggregate of any nested conditions: logic "or" yields
// leaf || any(nested), anything else yields leaf && all(nested).
//
// An unrecognized operator or a missing field evaluates the leaf to false.
func Evaluate(cond model.Condition, data map[string]any) bool {
	leaf := evaluateLeaf(cond, data)
	if len(cond.Conditions) == 0 {
		return leaf
	}
	if cond.Logic == model.LogicOr {
		return leaf || EvaluateAny(cond.Conditions, data)
	}
	return leaf && EvaluateAll(cond.Conditions, data)
}

// EvaluateAll reports whether every condition evaluates true (AND).
func EvaluateAll(conds []model.Condition, data map[string]any) bool {
	for _, c := range conds {
		if !Evaluate(c, data) {
			return false
		}
	}
	return true
}

// EvaluateAny reports whether at least one condition evaluates true (OR).
func EvaluateAny(conds []model.Condition, data map[string]any) bool {
	for _, c := range conds {
		if Evaluate(c, data) {
			return true
		}
	}
	return false
}

func evaluateLeaf(cond model.Condition, data map[string]any) bool {
	if !cond.Operator.Valid() || cond.Field == "" {
		return false
	}

	val, present := data[cond.Field]

	switch cond.Operator {
	case model.OpEquals:
		return present && looseEqual(val, cond.Value)
	case model.OpNotEquals:
		return !present || !looseEqual(val, cond.Value)
	case model.OpContains:
		return strings.Contains(coerceString(val), coerceString(cond.Value))
	case model.OpGreaterThan:
		// Non-numeric operands coerce to NaN and NaN comparisons are
		// always false; documented, not special-cased.
		return coerceNumber(val) > coerceNumber(cond.Value)
	case model.OpLessThan:
		return coerceNumber(val) < coerceNumber(cond.Value)
	case model.OpExists:
		return present && val != nil && val != ""
	}
	return false
}

// looseEqual compares numerically when both sides coerce to numbers, and by
// string form otherwise. This keeps 18 and 18.0 equal across the int/float64
// boundary that JSON and YAML decoding introduces.
func looseEqual(a, b any) bool {
	na, nb := coerceNumber(a), coerceNumber(b)
	if !math.IsNaN(na) && !math.IsNaN(nb) {
		return na == nb
	}
	return coerceString(a) == coerceString(b)
}

func coerceString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// coerceNumber converts a value to a float64, returning NaN for anything
// that has no numeric form.
func coerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}
