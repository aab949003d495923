// Package lookup provides Table, a map keyed by an (outer, inner) key pair
// that groups entries into buckets by outer key.
package lookup

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Table maps (outer, inner) key pairs to values. Every registered outer key
// owns a bucket, which may be empty. Keys compare with ==. Iteration follows
// insertion order.
//
// A Table is not safe for concurrent use; see Guarded.
type Table[K1, K2 comparable, V any] struct {
	buckets *orderedmap.OrderedMap[K1, *orderedmap.OrderedMap[K2, V]]
}

// New returns an empty Table.
func New[K1, K2 comparable, V any]() *Table[K1, K2, V] {
	return &Table[K1, K2, V]{
		buckets: orderedmap.New[K1, *orderedmap.OrderedMap[K2, V]](),
	}
}

// Get returns the value stored under (outer, inner). ok is false if either the
// bucket or the inner key is missing.
func (t *Table[K1, K2, V]) Get(outer K1, inner K2) (v V, ok bool) {
	b, ok := t.buckets.Get(outer)
	if !ok {
		return v, false
	}
	return b.Get(inner)
}

// Put stores v under (outer, inner), creating the bucket on first use. It
// returns the value previously stored under that exact pair, if any.
func (t *Table[K1, K2, V]) Put(outer K1, inner K2, v V) (prev V, ok bool) {
	b, exists := t.buckets.Get(outer)
	if !exists {
		b = orderedmap.New[K2, V]()
		t.buckets.Set(outer, b)
	}
	return b.Set(inner, v)
}

// Remove deletes the entry under (outer, inner) and returns it. The bucket
// stays registered even when it becomes empty.
func (t *Table[K1, K2, V]) Remove(outer K1, inner K2) (prev V, ok bool) {
	b, exists := t.buckets.Get(outer)
	if !exists {
		return prev, false
	}
	return b.Delete(inner)
}

// RemoveBucket deletes the bucket for outer together with the outer key.
// It reports whether the bucket existed.
func (t *Table[K1, K2, V]) RemoveBucket(outer K1) bool {
	_, ok := t.buckets.Delete(outer)
	return ok
}

// ClearBucket empties the bucket for outer but keeps outer registered.
// It does nothing when outer has no bucket.
func (t *Table[K1, K2, V]) ClearBucket(outer K1) {
	if _, ok := t.buckets.Get(outer); ok {
		t.buckets.Set(outer, orderedmap.New[K2, V]())
	}
}

// Clear removes every bucket.
func (t *Table[K1, K2, V]) Clear() {
	t.buckets = orderedmap.New[K1, *orderedmap.OrderedMap[K2, V]]()
}

// Len returns the number of outer keys.
func (t *Table[K1, K2, V]) Len() int {
	return t.buckets.Len()
}

// BucketLen returns the number of entries in the bucket for outer, or 0 when
// there is no such bucket.
func (t *Table[K1, K2, V]) BucketLen(outer K1) int {
	b, ok := t.buckets.Get(outer)
	if !ok {
		return 0
	}
	return b.Len()
}

// Has reports whether outer is registered, including with an empty bucket.
func (t *Table[K1, K2, V]) Has(outer K1) bool {
	_, ok := t.buckets.Get(outer)
	return ok
}

// Keys returns the outer keys in insertion order.
func (t *Table[K1, K2, V]) Keys() []K1 {
	keys := make([]K1, 0, t.buckets.Len())
	for p := t.buckets.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// BucketKeys returns the inner keys of the bucket for outer in insertion
// order, or nil when there is no such bucket.
func (t *Table[K1, K2, V]) BucketKeys(outer K1) []K2 {
	b, ok := t.buckets.Get(outer)
	if !ok {
		return nil
	}
	keys := make([]K2, 0, b.Len())
	for p := b.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Each calls fn for every entry in insertion order until fn returns false.
// fn must not modify the table.
func (t *Table[K1, K2, V]) Each(fn func(outer K1, inner K2, v V) bool) {
	for bp := t.buckets.Oldest(); bp != nil; bp = bp.Next() {
		for p := bp.Value.Oldest(); p != nil; p = p.Next() {
			if !fn(bp.Key, p.Key, p.Value) {
				return
			}
		}
	}
}
