package lookup

import (
	"sync"
)

// Guarded serializes access to a Table shared between goroutines. All access
// goes through Do or View, so a read-then-write sequence inside one call is
// atomic with respect to other callers.
type Guarded[K1, K2 comparable, V any] struct {
	mu    sync.RWMutex
	table *Table[K1, K2, V]
}

// NewGuarded wraps t. A nil t starts from an empty Table.
func NewGuarded[K1, K2 comparable, V any](t *Table[K1, K2, V]) *Guarded[K1, K2, V] {
	if t == nil {
		t = New[K1, K2, V]()
	}
	return &Guarded[K1, K2, V]{table: t}
}

// Do runs fn with exclusive access to the table.
func (g *Guarded[K1, K2, V]) Do(fn func(t *Table[K1, K2, V])) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.table)
}

// View runs fn with shared read access. fn must not modify the table.
func (g *Guarded[K1, K2, V]) View(fn func(t *Table[K1, K2, V])) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.table)
}

// Swap replaces the wrapped table and returns the previous one.
func (g *Guarded[K1, K2, V]) Swap(t *Table[K1, K2, V]) *Table[K1, K2, V] {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := g.table
	g.table = t
	return old
}
