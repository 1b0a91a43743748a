// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and by the state
// machine suites. Entries live in insertion order; reads sort on the
// way out exactly like the SQL implementation.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []*Entry

	// Clock lets tests pin entry timestamps. Defaults to time.Now.
	Clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, Clock: time.Now}
}

func (store *MemoryStore) Append(_ context.Context, entry *Entry) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored := *entry
	stored.ID = store.nextID
	store.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = store.Clock()
	}
	store.entries = append(store.entries, &stored)

	entry.ID = stored.ID
	entry.CreatedAt = stored.CreatedAt
	return nil
}

func (store *MemoryStore) History(_ context.Context, entityType string, entityID int64, action string) ([]*Entry, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var matched []*Entry
	for _, e := range store.entries {
		if e.EntityType != entityType || e.EntityID != entityID {
			continue
		}
		if action != "" && e.Action != action {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (store *MemoryStore) List(_ context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var matched []*Entry
	for _, e := range store.entries {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityID != 0 && e.EntityID != filter.EntityID {
			continue
		}
		if filter.AffectedUser != "" && (e.AffectedUser == nil || *e.AffectedUser != filter.AffectedUser) {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	sortNewestFirst(matched)

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (store *MemoryStore) ChangedSince(_ context.Context, entityType string, actions []string, since time.Time) ([]int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	seen := map[int64]bool{}
	for _, e := range store.entries {
		if e.EntityType != entityType || !slices.Contains(actions, e.Action) {
			continue
		}
		if !e.CreatedAt.After(since) {
			continue
		}
		seen[e.EntityID] = true
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (store *MemoryStore) DeleteForEntity(_ context.Context, entityType string, entityID int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.entries = slices.DeleteFunc(store.entries, func(e *Entry) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	})
	return nil
}

func sortNewestFirst(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.After(b.CreatedAt) {
				return -1
			}
			return 1
		}
		// Same instant: higher id first, matching the SQL ordering.
		if a.ID > b.ID {
			return -1
		}
		if a.ID < b.ID {
			return 1
		}
		return 0
	})
}
