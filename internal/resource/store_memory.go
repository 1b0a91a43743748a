// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"context"
	"sort"
	"sync"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// MemoryStore is an in-memory Store implementation shared by the
// package test suites. It mirrors the SQL stores' contract: ascending
// id order from All, dberr.ErrNotFound for missing rows, and a
// monotonic sequence behind NextID.
type MemoryStore[T any] struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*T
	codec  Codec[T]
	clone  func(*T) *T
}

// NewMemoryStore creates an empty store. clone must deep-copy an
// entity so callers cannot mutate stored state through returned
// pointers; for flat structs a dereference copy suffices.
func NewMemoryStore[T any](codec Codec[T], clone func(*T) *T) *MemoryStore[T] {
	return &MemoryStore[T]{
		nextID: 1,
		items:  make(map[int64]*T),
		codec:  codec,
		clone:  clone,
	}
}

func (store *MemoryStore[T]) All(_ context.Context) ([]*T, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	ids := make([]int64, 0, len(store.items))
	for id := range store.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, store.clone(store.items[id]))
	}
	return out, nil
}

func (store *MemoryStore[T]) Get(_ context.Context, id int64) (*T, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entity, ok := store.items[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return store.clone(entity), nil
}

func (store *MemoryStore[T]) NextID(_ context.Context) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	id := store.nextID
	store.nextID++
	return id, nil
}

func (store *MemoryStore[T]) Insert(_ context.Context, entity *T) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	id := store.codec.ID(entity)
	if id >= store.nextID {
		store.nextID = id + 1
	}
	store.items[id] = store.clone(entity)
	return nil
}

func (store *MemoryStore[T]) Update(_ context.Context, entity *T) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	id := store.codec.ID(entity)
	if _, ok := store.items[id]; !ok {
		return dberr.ErrNotFound
	}
	store.items[id] = store.clone(entity)
	return nil
}

func (store *MemoryStore[T]) Delete(_ context.Context, id int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.items[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(store.items, id)
	return nil
}
