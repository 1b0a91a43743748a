// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore is the in-memory SessionStore for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: map[string]time.Time{},
		now:      time.Now,
	}
}

func (store *MemorySessionStore) Put(ctx context.Context, sid, itsc string, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[sid] = store.now().Add(ttl)
	return nil
}

func (store *MemorySessionStore) Live(ctx context.Context, sid string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	expiry, ok := store.sessions[sid]
	if !ok {
		return false, nil
	}
	return store.now().Before(expiry), nil
}

func (store *MemorySessionStore) Delete(ctx context.Context, sid string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, sid)
	return nil
}
