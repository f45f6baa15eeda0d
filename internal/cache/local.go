package cache

import (
	"sync"
	"time"

	"vapordepot/internal/domain"
)

// LocalSnapshot is the process-local cache tier. It is scoped to one
// running instance and lost on restart; construct one per process and
// inject it so tests can build isolated instances.
type LocalSnapshot struct {
	mu   sync.RWMutex
	snap *domain.CacheSnapshot
}

func NewLocalSnapshot() *LocalSnapshot { return &LocalSnapshot{} }

// Get returns the held snapshot if it is still within TTL, else nil.
func (l *LocalSnapshot) Get(now time.Time) *domain.CacheSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.snap.Valid(now) {
		return l.snap
	}
	return nil
}

func (l *LocalSnapshot) Set(snap *domain.CacheSnapshot) {
	l.mu.Lock()
	l.snap = snap
	l.mu.Unlock()
}

func (l *LocalSnapshot) Clear() {
	l.mu.Lock()
	l.snap = nil
	l.mu.Unlock()
}
