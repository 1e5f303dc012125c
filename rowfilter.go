package designkit

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultProgramCacheSize is the number of compiled filters a matcher keeps.
const DefaultProgramCacheSize = 256

// RowFilterMatcher applies row filter expressions to records.
//
// Filters are expr-lang boolean expressions over the record's fields, for
// example `status == "open" && owner == user`. Compiled programs are kept in
// a bounded LRU cache keyed by expression text, so filters taken from
// untrusted input cannot grow memory without limit. A RowFilterMatcher is
// safe for concurrent use.
type RowFilterMatcher struct {
	programs *lru.Cache
}

// RowFilterOption configures a RowFilterMatcher.
type RowFilterOption func(*rowFilterConfig)

type rowFilterConfig struct {
	cacheSize int
}

// WithProgramCacheSize sets how many compiled filters are kept. Values
// below 1 use DefaultProgramCacheSize.
func WithProgramCacheSize(n int) RowFilterOption {
	return func(c *rowFilterConfig) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// NewRowFilterMatcher creates a matcher with an empty program cache.
func NewRowFilterMatcher(opts ...RowFilterOption) *RowFilterMatcher {
	cfg := rowFilterConfig{cacheSize: DefaultProgramCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	// lru.New only fails for a non-positive size.
	cache, _ := lru.New(cfg.cacheSize)
	return &RowFilterMatcher{programs: cache}
}

// CachedPrograms returns the number of compiled filters currently cached.
func (m *RowFilterMatcher) CachedPrograms() int {
	return m.programs.Len()
}

// DefaultRowFilterMatcher is the shared matcher used by the package helpers.
var DefaultRowFilterMatcher = NewRowFilterMatcher()

// Compile checks that filter is a valid expression and caches it.
func (m *RowFilterMatcher) Compile(filter string) error {
	_, err := m.program(filter)
	return err
}

// Match reports whether record satisfies filter. vars are extra bindings
// such as the current user id; they take precedence over record fields of
// the same name. An empty filter matches every record.
//
// Example:
//
//	ok, err := matcher.Match(`owner == user`, designkit.Record{"owner": "u1"}, map[string]any{"user": "u1"})
func (m *RowFilterMatcher) Match(filter string, record Record, vars map[string]any) (bool, error) {
	if filter == "" {
		return true, nil
	}

	program, err := m.program(filter)
	if err != nil {
		return false, err
	}

	out, err := expr.Run(program, filterEnv(record, vars))
	if err != nil {
		return false, NewError(ErrInvalidFilter, fmt.Sprintf("evaluating %q: %v", filter, err))
	}

	matched, ok := out.(bool)
	if !ok {
		return false, NewError(ErrInvalidFilter, fmt.Sprintf("filter %q returned %T, expected bool", filter, out))
	}
	return matched, nil
}

// Filter returns the records satisfying filter, in their original order.
func (m *RowFilterMatcher) Filter(filter string, records []Record, vars map[string]any) ([]Record, error) {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		ok, err := m.Match(filter, r, vars)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Apply narrows records to those visible under a permission result.
// A denied result yields no records.
func (m *RowFilterMatcher) Apply(result PermissionCheckResult, records []Record, vars map[string]any) ([]Record, error) {
	if !result.Allowed {
		return nil, nil
	}
	return m.Filter(result.RowFilter, records, vars)
}

func (m *RowFilterMatcher) program(filter string) (*vm.Program, error) {
	if cached, ok := m.programs.Get(filter); ok {
		return cached.(*vm.Program), nil
	}

	p, err := expr.Compile(filter, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, NewError(ErrInvalidFilter, fmt.Sprintf("compiling %q: %v", filter, err))
	}

	m.programs.Add(filter, p)
	return p, nil
}

// filterEnv builds the evaluation environment. Reserved field names are
// never exposed to expressions.
func filterEnv(record Record, vars map[string]any) map[string]any {
	env := make(map[string]any, len(record)+len(vars))
	for k, v := range record {
		if reservedFields[k] {
			continue
		}
		env[k] = v
	}
	for k, v := range vars {
		if reservedFields[k] {
			continue
		}
		env[k] = v
	}
	return env
}

// MatchRowFilter matches record against filter with DefaultRowFilterMatcher.
func MatchRowFilter(filter string, record Record, vars map[string]any) (bool, error) {
	return DefaultRowFilterMatcher.Match(filter, record, vars)
}
