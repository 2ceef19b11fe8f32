package regsync

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// IDAssigner maps canonical record strings to stable ids. Ids start at 1
// and are never reused. With a bound, the least recently used strings are
// forgotten and get a fresh id if they come back.
type IDAssigner struct {
	mu    sync.Mutex
	next  int64
	ids   map[string]int64
	bound *lru.Cache[string, int64]
}

// NewIDAssigner creates an assigner. size <= 0 keeps every mapping.
func NewIDAssigner(size int) *IDAssigner {
	a := &IDAssigner{}
	if size > 0 {
		// lru.New only fails for a non-positive size.
		a.bound, _ = lru.New[string, int64](size)
	} else {
		a.ids = make(map[string]int64)
	}
	return a
}

// Assign returns the id of canonical, allocating one on first sight.
func (a *IDAssigner) Assign(canonical string) int64 {
	id, _ := a.assign(canonical)
	return id
}

func (a *IDAssigner) assign(canonical string) (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bound != nil {
		if id, ok := a.bound.Get(canonical); ok {
			return id, false
		}
		a.next++
		a.bound.Add(canonical, a.next)
		return a.next, true
	}
	if id, ok := a.ids[canonical]; ok {
		return id, false
	}
	a.next++
	a.ids[canonical] = a.next
	return a.next, true
}

// Lookup returns the id of canonical without allocating.
func (a *IDAssigner) Lookup(canonical string) (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bound != nil {
		return a.bound.Peek(canonical)
	}
	id, ok := a.ids[canonical]
	return id, ok
}

// Len returns the number of remembered strings.
func (a *IDAssigner) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bound != nil {
		return a.bound.Len()
	}
	return len(a.ids)
}
