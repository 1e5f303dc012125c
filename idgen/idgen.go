// Package idgen provides injectable ID generators for designer elements and
// stored records. Callers own their generator; nothing here keeps global state.
package idgen

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator interface {
	NewID() string
}

// Func adapts a plain function to a Generator.
type Func func() string

// NewID calls f.
func (f Func) NewID() string {
	return f()
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// UUID returns a Generator producing random (version 4) UUIDs.
func UUID() Generator {
	return uuidGenerator{}
}

// Counter produces "<prefix><n>" ids from a monotonic counter starting at 1.
// It is safe for concurrent use.
type Counter struct {
	mu     sync.Mutex
	prefix string
	next   uint64
}

// NewCounter creates a Counter. The first id is prefix + "1".
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix, next: 1}
}

// NewID returns the next id.
func (c *Counter) NewID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.prefix + strconv.FormatUint(c.next, 10)
	c.next++
	return id
}

// Reset restarts the counter so the next id ends in start.
func (c *Counter) Reset(start uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = start
}
