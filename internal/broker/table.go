package broker

import (
	"sync"
)

// table is the correlation table: request id to pending entry. All mutation
// goes through these three methods so the one-settlement-per-id invariant is
// enforced in a single place.
type table struct {
	mu sync.Mutex
	m  map[string]*pending
}

func newTable() *table {
	return &table{m: make(map[string]*pending)}
}

// insert registers a pending entry. A live entry under the same id wins;
// the newcomer is rejected.
func (t *table) insert(p *pending) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.m[p.id]; exists {
		return ErrDuplicateRequest
	}
	t.m[p.id] = p
	return nil
}

// take removes and returns the entry for id. Whoever takes it settles it.
func (t *table) take(id string) (*pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.m[id]
	if ok {
		delete(t.m, id)
	}
	return p, ok
}

// get returns the entry without removing it, for non-terminal fragment
// delivery.
func (t *table) get(id string) (*pending, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.m[id]
	return p, ok
}

// sweep removes and returns every entry, for broker-fatal faults.
func (t *table) sweep() []*pending {
	t.mu.Lock()
	defer t.mu.Unlock()
	all := make([]*pending, 0, len(t.m))
	for _, p := range t.m {
		all = append(all, p)
	}
	t.m = make(map[string]*pending)
	return all
}

func (t *table) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
