// Package inflight guards against duplicate admin actions from rapid
// double-clicks: one review action in flight per administrator, a second
// attempt is refused rather than queued.
package inflight

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

type Guard struct {
	mu   sync.Mutex
	sems map[int]*semaphore.Weighted
}

func NewGuard() *Guard {
	return &Guard{sems: make(map[int]*semaphore.Weighted)}
}

func (g *Guard) sem(adminID int) *semaphore.Weighted {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sems[adminID]
	if !ok {
		s = semaphore.NewWeighted(1)
		g.sems[adminID] = s
	}
	return s
}

// TryAcquire reports whether the admin may start an action now. Callers
// that get true must Release when the action settles, success or not.
func (g *Guard) TryAcquire(adminID int) bool {
	return g.sem(adminID).TryAcquire(1)
}

func (g *Guard) Release(adminID int) {
	g.sem(adminID).Release(1)
}
