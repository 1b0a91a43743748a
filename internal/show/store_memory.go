// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package show

import (
	"context"

	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// MemoryStore backs the voting test suites.
type MemoryStore struct {
	*resource.MemoryStore[Show]
	disks disk.Store
}

func NewMemoryStore(disks disk.Store) *MemoryStore {
	return &MemoryStore{
		MemoryStore: resource.NewMemoryStore[Show](Codec{}, cloneShow),
		disks:       disks,
	}
}

func cloneShow(s *Show) *Show {
	copied := *s
	copied.Participants = append([]int64(nil), s.Participants...)
	for i, id := range s.SlotIDs {
		if id != nil {
			v := *id
			copied.SlotIDs[i] = &v
		}
	}
	return &copied
}

func (store *MemoryStore) All(ctx context.Context) ([]*Show, error) {
	shows, err := store.MemoryStore.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range shows {
		store.hydrate(ctx, s)
	}
	return shows, nil
}

func (store *MemoryStore) Get(ctx context.Context, id int64) (*Show, error) {
	s, err := store.MemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	store.hydrate(ctx, s)
	return s, nil
}

func (store *MemoryStore) hydrate(ctx context.Context, s *Show) {
	if store.disks == nil {
		return
	}
	for i, id := range s.SlotIDs {
		if id == nil {
			s.Slots[i] = nil
			continue
		}
		d, err := store.disks.Get(ctx, *id)
		if err != nil {
			s.Slots[i] = nil
			continue
		}
		s.Slots[i] = d
	}
}

func (store *MemoryStore) Latest(ctx context.Context) (*Show, error) {
	shows, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 {
		return nil, dberr.ErrNotFound
	}
	return shows[len(shows)-1], nil
}

func (store *MemoryStore) OpenCount(ctx context.Context) (int, error) {
	shows, err := store.All(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, s := range shows {
		if s.State == StateOpen {
			count++
		}
	}
	return count, nil
}

func (store *MemoryStore) ReferencesDisk(ctx context.Context, diskID int64) (bool, error) {
	shows, err := store.All(ctx)
	if err != nil {
		return false, err
	}
	for _, s := range shows {
		for _, id := range s.SlotIDs {
			if id != nil && *id == diskID {
				return true, nil
			}
		}
	}
	return false, nil
}
