package designkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEvaluateCondition tests every operator
func TestEvaluateCondition(t *testing.T) {
	var nilPtr *string

	tests := []struct {
		name     string
		cond     Condition
		record   Record
		expected bool
	}{
		{"eq string", Condition{"status", OpEq, "open"}, Record{"status": "open"}, true},
		{"eq mismatch", Condition{"status", OpEq, "open"}, Record{"status": "closed"}, false},
		{"eq number across types", Condition{"qty", OpEq, 3}, Record{"qty": float64(3)}, true},
		{"eq int64 and int", Condition{"qty", OpEq, int64(7)}, Record{"qty": 7}, true},
		{"eq no coercion", Condition{"qty", OpEq, 3}, Record{"qty": "3"}, false},
		{"eq missing field vs nil", Condition{"missing", OpEq, nil}, Record{}, true},
		{"eq slices never equal", Condition{"tags", OpEq, []string{"a"}}, Record{"tags": []string{"a"}}, false},
		{"eq bool", Condition{"active", OpEq, true}, Record{"active": true}, true},
		{"neq", Condition{"status", OpNeq, "open"}, Record{"status": "closed"}, true},
		{"neq equal", Condition{"status", OpNeq, "open"}, Record{"status": "open"}, false},
		{"neq missing field", Condition{"status", OpNeq, "open"}, Record{}, true},

		{"gt true", Condition{"age", OpGt, 30}, Record{"age": 35}, true},
		{"gt false", Condition{"age", OpGt, 30}, Record{"age": 25}, false},
		{"gt string not coerced", Condition{"age", OpGt, 30}, Record{"age": "35"}, false},
		{"gt missing", Condition{"age", OpGt, 30}, Record{}, false},
		{"gte equal", Condition{"age", OpGte, 30}, Record{"age": 30.0}, true},
		{"lt", Condition{"price", OpLt, 9.5}, Record{"price": 9}, true},
		{"lte equal", Condition{"price", OpLte, uint8(9)}, Record{"price": int32(9)}, true},
		{"lte greater", Condition{"price", OpLte, 9}, Record{"price": 10}, false},

		{"in found", Condition{"status", OpIn, []string{"open", "hold"}}, Record{"status": "hold"}, true},
		{"in not found", Condition{"status", OpIn, []string{"open"}}, Record{"status": "closed"}, false},
		{"in any slice numbers", Condition{"qty", OpIn, []any{1, 2, 3}}, Record{"qty": float64(2)}, true},
		{"in array", Condition{"qty", OpIn, [2]int{4, 5}}, Record{"qty": 5}, true},
		{"in non list", Condition{"status", OpIn, "open"}, Record{"status": "open"}, false},
		{"in nil list", Condition{"status", OpIn, nil}, Record{"status": "open"}, false},
		{"not_in absent", Condition{"status", OpNotIn, []string{"open"}}, Record{"status": "closed"}, true},
		{"not_in present", Condition{"status", OpNotIn, []string{"open"}}, Record{"status": "open"}, false},
		{"not_in non list", Condition{"status", OpNotIn, "open"}, Record{"status": "closed"}, false},

		{"contains", Condition{"name", OpContains, "ann"}, Record{"name": "Joanna"}, true},
		{"contains missing", Condition{"name", OpContains, "x"}, Record{"name": "Joanna"}, false},
		{"contains non string field", Condition{"qty", OpContains, "1"}, Record{"qty": 12}, false},
		{"contains non string value", Condition{"name", OpContains, 1}, Record{"name": "a1"}, false},

		{"is_null missing", Condition{Field: "deleted_at", Operator: OpIsNull}, Record{}, true},
		{"is_null nil", Condition{Field: "deleted_at", Operator: OpIsNull}, Record{"deleted_at": nil}, true},
		{"is_null typed nil", Condition{Field: "deleted_at", Operator: OpIsNull}, Record{"deleted_at": nilPtr}, true},
		{"is_null zero value", Condition{Field: "count", Operator: OpIsNull}, Record{"count": 0}, false},
		{"is_not_null set", Condition{Field: "deleted_at", Operator: OpIsNotNull}, Record{"deleted_at": "2024-01-01"}, true},
		{"is_not_null missing", Condition{Field: "deleted_at", Operator: OpIsNotNull}, Record{}, false},

		{"unknown operator", Condition{"status", "matches", "open"}, Record{"status": "open"}, false},
		{"nil record", Condition{"status", OpEq, "open"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvaluateCondition(tt.cond, tt.record))
		})
	}
}

// TestEvaluateConditionReservedFields tests that reserved names never match
func TestEvaluateConditionReservedFields(t *testing.T) {
	for _, field := range []string{"__proto__", "constructor", "prototype"} {
		t.Run(field, func(t *testing.T) {
			assert.False(t, EvaluateCondition(Condition{Field: field, Operator: OpEq, Value: "x"}, Record{}))
			assert.False(t, EvaluateCondition(Condition{Field: field, Operator: OpEq, Value: "x"}, Record{field: "x"}))
			assert.False(t, EvaluateCondition(Condition{Field: field, Operator: OpIsNull}, Record{}))
			assert.False(t, EvaluateCondition(Condition{Field: field, Operator: OpNeq, Value: "y"}, Record{field: "x"}))
		})
	}
}

// TestEvaluateConditions tests conjunction of conditions
func TestEvaluateConditions(t *testing.T) {
	record := Record{"status": "open", "total": 120}

	assert.True(t, EvaluateConditions(nil, record))
	assert.True(t, EvaluateConditions([]Condition{
		{"status", OpEq, "open"},
		{"total", OpGte, 100},
	}, record))
	assert.False(t, EvaluateConditions([]Condition{
		{"status", OpEq, "open"},
		{"total", OpGt, 200},
	}, record))
}
