package ledger

import "sync"

// MemoKey identifies one computed report: whose collections it was built from
// (Scope), their snapshot versions, the window and the display language.
type MemoKey struct {
	Scope    string
	Versions [3]uint64
	Window   Window
	Lang     string
}

// Memo caches computed reports by MemoKey. It holds at most limit entries and
// starts over when full; a hit returns exactly what compute would have returned.
type Memo[V any] struct {
	mu      sync.Mutex
	limit   int
	entries map[MemoKey]V
	hits    uint64
	misses  uint64
}

// NewMemo creates a memo bounded to limit entries
func NewMemo[V any](limit int) *Memo[V] {
	if limit <= 0 {
		limit = 64
	}
	return &Memo[V]{limit: limit, entries: make(map[MemoKey]V)}
}

// Get returns the cached value for key or computes and stores it
func (m *Memo[V]) Get(key MemoKey, compute func() V) V {
	m.mu.Lock()
	if v, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return v
	}
	m.misses++
	m.mu.Unlock()

	v := compute()

	m.mu.Lock()
	if len(m.entries) >= m.limit {
		m.entries = make(map[MemoKey]V)
	}
	m.entries[key] = v
	m.mu.Unlock()
	return v
}

// Stats returns hit and miss counts
func (m *Memo[V]) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Len returns the number of cached entries
func (m *Memo[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
