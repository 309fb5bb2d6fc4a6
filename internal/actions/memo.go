package actions

import (
	"crypto/sha256"
	"encoding/json"
	"sync"
	"time"
)

// DefaultMemoTTL is how long a condition result is reused for an identical
// evaluation context.
const DefaultMemoTTL = time.Second

// sweepThreshold bounds the number of entries kept before expired ones are dropped.
const sweepThreshold = 256

type memoEntry struct {
	visible bool
	expires time.Time
}

// conditionMemo caches one descriptor's condition results, keyed by the
// canonical form of the evaluation context.
type conditionMemo struct {
	fn  ConditionFunc
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[[sha256.Size]byte]memoEntry
}

func newConditionMemo(fn ConditionFunc, ttl time.Duration, now func() time.Time) *conditionMemo {
	return &conditionMemo{
		fn:      fn,
		ttl:     ttl,
		now:     now,
		entries: make(map[[sha256.Size]byte]memoEntry),
	}
}

// eval returns the cached result while it is fresh, otherwise runs the
// condition. A context that cannot be canonicalized is evaluated uncached.
func (m *conditionMemo) eval(ec *EvalContext) bool {
	key, ok := canonicalKey(ec)
	if !ok || m.ttl <= 0 {
		return m.fn(ec)
	}

	now := m.now()
	m.mu.Lock()
	if e, hit := m.entries[key]; hit && now.Before(e.expires) {
		m.mu.Unlock()
		return e.visible
	}
	m.mu.Unlock()

	// Run outside the lock; concurrent misses may both evaluate.
	visible := m.fn(ec)

	m.mu.Lock()
	if len(m.entries) >= sweepThreshold {
		for k, e := range m.entries {
			if !now.Before(e.expires) {
				delete(m.entries, k)
			}
		}
	}
	m.entries[key] = memoEntry{visible: visible, expires: now.Add(m.ttl)}
	m.mu.Unlock()
	return visible
}

func (m *conditionMemo) reset() {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
}

// canonicalKey hashes the JSON encoding of the context. encoding/json writes
// struct fields in declaration order and map keys sorted, and refuses
// cyclic values, so equal contexts always produce equal keys.
func canonicalKey(ec *EvalContext) ([sha256.Size]byte, bool) {
	b, err := json.Marshal(ec)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	return sha256.Sum256(b), true
}
