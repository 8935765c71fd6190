package app

import (
	"sync"
	"time"
)

// sessionContext holds the transient per-attempt state the attempt record
// does not carry: the wall-clock start used for duration, and the cursor
// of the question currently shown. It is created on StartOrResume and
// discarded at completion. The mutex serializes every state-changing
// operation on the attempt; counters are maintained by delta and a lost
// update would corrupt them permanently.
type sessionContext struct {
	mu        sync.Mutex
	startedAt time.Time
	cursor    int
}

// contextRegistry maps attempt IDs to their live session contexts.
type contextRegistry struct {
	mu       sync.RWMutex
	contexts map[string]*sessionContext
}

func newContextRegistry() *contextRegistry {
	return &contextRegistry{contexts: make(map[string]*sessionContext)}
}

// getOrCreate returns the live context for an attempt, creating one with
// the given start time if none exists (e.g. resuming after a restart of
// the process, where the original start time is lost).
func (r *contextRegistry) getOrCreate(attemptID string, startedAt time.Time) *sessionContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sctx, ok := r.contexts[attemptID]; ok {
		return sctx
	}
	sctx := &sessionContext{startedAt: startedAt}
	r.contexts[attemptID] = sctx
	return sctx
}

func (r *contextRegistry) drop(attemptID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contexts, attemptID)
}
