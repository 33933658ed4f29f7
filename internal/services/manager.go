package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"financeiro/internal/cache"
	"financeiro/internal/core"
	"financeiro/internal/log"
)

// SessionManager keeps recently used sessions in an LRU cache keyed by user
// key. An evicted session is reloaded from the store on next use.
type SessionManager struct {
	deps     Deps
	sessions *cache.LRUCache[*Session]
	cleaner  *cache.Manager
	loads    singleflight.Group
}

func NewSessionManager(deps Deps, size int, ttl time.Duration) *SessionManager {
	deps = deps.withDefaults()
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &SessionManager{
		deps:     deps,
		sessions: cache.NewLRUCache[*Session](size, ttl),
		cleaner:  cache.NewManager(),
	}
	m.cleaner.Register(m.sessions)
	m.cleaner.OnCleaned(func(int) {
		deps.Metrics.SessionsCached(m.sessions.Size())
	})
	return m
}

// Start runs periodic eviction of idle sessions until Close.
func (m *SessionManager) Start(interval time.Duration) {
	m.cleaner.StartCleanup(interval)
}

// Close stops the eviction loop.
func (m *SessionManager) Close() {
	m.cleaner.Stop()
}

// ForEmail returns the session of the user identified by email.
func (m *SessionManager) ForEmail(ctx context.Context, email string) (*Session, error) {
	normalized, err := core.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return m.ForKey(ctx, core.UserKey(normalized)), nil
}

// ForKey returns the cached session of key, opening it when needed. Concurrent
// callers for the same key share one store load, and loading never holds the
// cache lock.
func (m *SessionManager) ForKey(ctx context.Context, key string) *Session {
	v, _, _ := m.loads.Do(key, func() (any, error) {
		return m.sessions.GetOrCreate(key, func() *Session {
			m.deps.Logger.WithComponent(log.ComponentCache).DebugContext(ctx, "Opening session",
				log.FieldUserKey, key)
			return OpenSession(ctx, key, m.deps)
		}), nil
	})
	m.deps.Metrics.SessionsCached(m.sessions.Size())
	return v.(*Session)
}

// Forget drops the cached session of key so the next use reloads the store.
func (m *SessionManager) Forget(key string) {
	m.sessions.Delete(key)
}

// Size returns the number of cached sessions.
func (m *SessionManager) Size() int {
	return m.sessions.Size()
}
