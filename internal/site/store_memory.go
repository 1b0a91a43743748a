// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package site

import (
	"context"
	"sync"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// MemoryStore is the in-memory settings Store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	settings map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: map[string]string{}}
}

func (store *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	value, ok := store.settings[key]
	if !ok {
		return "", dberr.ErrNotFound
	}
	return value, nil
}

func (store *MemoryStore) Set(ctx context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.settings[key] = value
	return nil
}

func (store *MemoryStore) All(ctx context.Context) (map[string]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	copied := make(map[string]string, len(store.settings))
	for k, v := range store.settings {
		copied[k] = v
	}
	return copied, nil
}
