package designkit

import (
	"reflect"
	"strings"
)

// Operator is a comparison used by a row-level Condition.
type Operator string

const (
	OpEq        Operator = "eq"
	OpNeq       Operator = "neq"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpContains  Operator = "contains"
	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "is_not_null"
)

// Condition compares one record field against Value.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// reservedFields can never be matched, whatever the operator.
var reservedFields = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// EvaluateCondition reports whether record satisfies cond.
//
// A field missing from the record has a nil value. Ordering operators only
// match when both sides are numbers; there is no string-to-number coercion.
// Unknown operators never match.
//
// Example:
//
//	designkit.EvaluateCondition(designkit.Condition{Field: "age", Operator: designkit.OpGt, Value: 30},
//	    designkit.Record{"age": 35}) // true
func EvaluateCondition(cond Condition, record Record) bool {
	if reservedFields[cond.Field] {
		return false
	}

	var value any
	if v, ok := record[cond.Field]; ok {
		value = v
	}
	target := cond.Value

	switch cond.Operator {
	case OpEq:
		return strictEqual(value, target)
	case OpNeq:
		return !strictEqual(value, target)
	case OpGt, OpGte, OpLt, OpLte:
		a, aok := toNumber(value)
		b, bok := toNumber(target)
		if !aok || !bok {
			return false
		}
		switch cond.Operator {
		case OpGt:
			return a > b
		case OpGte:
			return a >= b
		case OpLt:
			return a < b
		default:
			return a <= b
		}
	case OpIn:
		found, isList := listContains(target, value)
		return isList && found
	case OpNotIn:
		found, isList := listContains(target, value)
		return isList && !found
	case OpContains:
		s, sok := value.(string)
		sub, subok := target.(string)
		return sok && subok && strings.Contains(s, sub)
	case OpIsNull:
		return isNull(value)
	case OpIsNotNull:
		return !isNull(value)
	default:
		return false
	}
}

// EvaluateConditions reports whether record satisfies every condition.
// An empty list is satisfied.
func EvaluateConditions(conds []Condition, record Record) bool {
	for _, c := range conds {
		if !EvaluateCondition(c, record) {
			return false
		}
	}
	return true
}

// strictEqual compares numbers by value regardless of their Go type, and
// everything else with ==. Non-comparable values are never equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x == y
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// listContains reports whether list contains v. The second result is false
// when list is not a slice or array.
func listContains(list, v any) (found bool, isList bool) {
	if list == nil {
		return false, false
	}
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, false
	}
	for i := 0; i < rv.Len(); i++ {
		if strictEqual(rv.Index(i).Interface(), v) {
			return true, true
		}
	}
	return false, true
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
