package designkit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRowFilterMatcherMatch tests single record matching
func TestRowFilterMatcherMatch(t *testing.T) {
	m := NewRowFilterMatcher()
	vars := map[string]any{"user": "u1"}

	tests := []struct {
		name     string
		filter   string
		record   Record
		expected bool
	}{
		{name: "empty filter", filter: "", record: Record{"owner": "u2"}, expected: true},
		{name: "owner matches", filter: "owner == user", record: Record{"owner": "u1"}, expected: true},
		{name: "owner differs", filter: "owner == user", record: Record{"owner": "u2"}, expected: false},
		{name: "compound", filter: `status == "open" && total > 100`, record: Record{"status": "open", "total": 150}, expected: true},
		{name: "compound fails", filter: `status == "open" && total > 100`, record: Record{"status": "open", "total": 50}, expected: false},
		{name: "membership", filter: `region in ["eu", "us"]`, record: Record{"region": "eu"}, expected: true},
		{name: "missing field is nil", filter: "deleted_at == nil", record: Record{}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := m.Match(tt.filter, tt.record, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

// TestRowFilterMatcherVarsOverrideRecord tests binding precedence
func TestRowFilterMatcherVarsOverrideRecord(t *testing.T) {
	m := NewRowFilterMatcher()

	ok, err := m.Match(`user == "u1"`, Record{"user": "u2"}, map[string]any{"user": "u1"})
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRowFilterMatcherReservedFields tests that reserved names are not exposed
func TestRowFilterMatcherReservedFields(t *testing.T) {
	m := NewRowFilterMatcher()

	ok, err := m.Match(`constructor == "x"`, Record{"constructor": "x"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestRowFilterMatcherErrors tests invalid filters
func TestRowFilterMatcherErrors(t *testing.T) {
	m := NewRowFilterMatcher()

	err := m.Compile("owner ==")
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = m.Match("total + 1", Record{"total": 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	assert.NoError(t, m.Compile("owner == user"))
}

// TestRowFilterMatcherFilter tests filtering a record list
func TestRowFilterMatcherFilter(t *testing.T) {
	m := NewRowFilterMatcher()
	records := []Record{
		{"id": 1, "owner": "u1"},
		{"id": 2, "owner": "u2"},
		{"id": 3, "owner": "u1"},
	}

	out, err := m.Filter("owner == user", records, map[string]any{"user": "u1"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0]["id"])
	assert.Equal(t, 3, out[1]["id"])

	_, err = m.Filter("owner ==", records, nil)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

// TestRowFilterMatcherApply tests applying a permission result
func TestRowFilterMatcherApply(t *testing.T) {
	m := NewRowFilterMatcher()
	records := []Record{{"owner": "u1"}, {"owner": "u2"}}
	vars := map[string]any{"user": "u2"}

	out, err := m.Apply(PermissionCheckResult{Allowed: false}, records, vars)
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = m.Apply(PermissionCheckResult{Allowed: true}, records, vars)
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = m.Apply(PermissionCheckResult{Allowed: true, RowFilter: "owner == user"}, records, vars)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"owner": "u2"}}, out)
}

// TestRowFilterWithStore tests the row filter returned by a store check
func TestRowFilterWithStore(t *testing.T) {
	p := NewPolicy()
	p.DefineRole("sales")
	p.Object("orders").Grant("sales").Actions(ActionRead).Rows("owner == user", ActionRead)

	store := NewStoreFromPolicy(p, "sales")
	res := store.Check("orders", ActionRead, nil)

	ok, err := MatchRowFilter(res.RowFilter, Record{"owner": "u1"}, map[string]any{"user": "u1"})
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRowFilterMatcherCacheIsBounded tests that distinct filters do not grow the cache past its size
func TestRowFilterMatcherCacheIsBounded(t *testing.T) {
	m := NewRowFilterMatcher(WithProgramCacheSize(4))

	for i := range 20 {
		ok, err := m.Match(fmt.Sprintf("total > %d", i), Record{"total": 10}, nil)
		require.NoError(t, err)
		assert.Equal(t, i < 10, ok)
	}
	assert.Equal(t, 4, m.CachedPrograms())

	// Evicted filters compile again on demand.
	ok, err := m.Match("total > 0", Record{"total": 10}, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestRowFilterMatcherDefaultCacheSize tests the fallback for invalid sizes
func TestRowFilterMatcherDefaultCacheSize(t *testing.T) {
	m := NewRowFilterMatcher(WithProgramCacheSize(0))

	for i := range DefaultProgramCacheSize + 10 {
		require.NoError(t, m.Compile(fmt.Sprintf("total == %d", i)))
	}
	assert.Equal(t, DefaultProgramCacheSize, m.CachedPrograms())
}
