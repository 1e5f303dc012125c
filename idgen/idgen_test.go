package idgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUUIDGenerator tests that generated ids are valid and distinct
func TestUUIDGenerator(t *testing.T) {
	gen := UUID()

	a := gen.NewID()
	b := gen.NewID()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

// TestCounterSequence tests the monotonic counter
func TestCounterSequence(t *testing.T) {
	c := NewCounter("field_")

	assert.Equal(t, "field_1", c.NewID())
	assert.Equal(t, "field_2", c.NewID())

	c.Reset(10)
	assert.Equal(t, "field_10", c.NewID())
}

// TestCounterIndependentInstances tests that counters do not share state
func TestCounterIndependentInstances(t *testing.T) {
	a := NewCounter("n")
	b := NewCounter("n")

	a.NewID()
	a.NewID()

	assert.Equal(t, "n1", b.NewID())
}

// TestCounterConcurrent tests that concurrent callers never get duplicates
func TestCounterConcurrent(t *testing.T) {
	c := NewCounter("")
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := c.NewID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

// TestFuncGenerator tests the function adapter
func TestFuncGenerator(t *testing.T) {
	var gen Generator = Func(func() string { return "fixed" })
	assert.Equal(t, "fixed", gen.NewID())
}
