package handlers

import "sync"

// busyGuard allows at most one in-flight AI call per user. Requests
// arriving while a user's call is running are rejected, not queued.
type busyGuard struct {
	mu     sync.Mutex
	active map[string]bool
}

func newBusyGuard() *busyGuard {
	return &busyGuard{active: make(map[string]bool)}
}

// acquire reports whether the user's slot was free and, if so, takes it.
func (g *busyGuard) acquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[userID] {
		return false
	}
	g.active[userID] = true
	return true
}

func (g *busyGuard) release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, userID)
}
