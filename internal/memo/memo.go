// Package memo provides a process-wide memoization cache with lock-free reads
// and construction guarded by a lock scoped to the key being built.
package memo

import (
	"sync"
	"sync/atomic"
)

// Cache memoizes values by key. The zero value is ready for use.
//
// Get never blocks on a populated key. On a miss the caller takes the lock of
// that key only, re-checks and builds, so at most one build runs per key and
// builds of different keys never contend. Failed builds are not stored.
type Cache[K comparable, V any] struct {
	values sync.Map // K -> V
	locks  sync.Map // K -> *sync.Mutex
	builds atomic.Int64
}

// Get returns the value stored for key, building it with build on first use.
func (c *Cache[K, V]) Get(key K, build func(K) (V, error)) (V, error) {
	if v, ok := c.values.Load(key); ok {
		return v.(V), nil
	}
	l, _ := c.locks.LoadOrStore(key, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	if v, ok := c.values.Load(key); ok {
		return v.(V), nil
	}
	c.builds.Add(1)
	v, err := build(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.values.Store(key, v)
	return v, nil
}

// Load returns the value stored for key without building it.
func (c *Cache[K, V]) Load(key K) (V, bool) {
	v, ok := c.values.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Builds reports how many times a build function was invoked.
func (c *Cache[K, V]) Builds() int64 {
	return c.builds.Load()
}
