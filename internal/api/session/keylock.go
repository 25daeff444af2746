package session

import (
	"fmt"
	"sync"
)

// tripleKey identifies one session lineage: a job card worked by one
// operator on one machine.
type tripleKey struct {
	JobCardID  int64
	OperatorID int64
	MachineID  int64
}

func (k tripleKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.JobCardID, k.OperatorID, k.MachineID)
}

// lockArena hands out one mutex per key. The engine keeps two: one
// keyed by triple serializing the lookup-decide-write toggle sequence,
// one keyed by job card serializing stop-and-count across triples.
// Entries are never evicted; both key spaces are bounded by
// operators x machines x live cards.
type lockArena[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*sync.Mutex
}

func newLockArena[K comparable]() *lockArena[K] {
	return &lockArena[K]{locks: make(map[K]*sync.Mutex)}
}

func (a *lockArena[K]) lockFor(key K) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}
