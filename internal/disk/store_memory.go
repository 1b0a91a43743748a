// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"context"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// MemoryStore backs the lending and voting test suites. It hydrates
// holder and reserver summaries from a member store the way the SQL
// joins do.
type MemoryStore struct {
	*resource.MemoryStore[Disk]
	members member.Store
}

func NewMemoryStore(members member.Store) *MemoryStore {
	return &MemoryStore{
		MemoryStore: resource.NewMemoryStore[Disk](Codec{}, cloneDisk),
		members:     members,
	}
}

func cloneDisk(d *Disk) *Disk {
	copied := *d
	copied.Actors = append([]string(nil), d.Actors...)
	if d.DueAt != nil {
		due := *d.DueAt
		copied.DueAt = &due
	}
	if d.HoldByID != nil {
		id := *d.HoldByID
		copied.HoldByID = &id
	}
	if d.ReservedByID != nil {
		id := *d.ReservedByID
		copied.ReservedByID = &id
	}
	return &copied
}

func (store *MemoryStore) All(ctx context.Context) ([]*Disk, error) {
	discs, err := store.MemoryStore.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range discs {
		store.hydrate(ctx, d)
	}
	return discs, nil
}

func (store *MemoryStore) Get(ctx context.Context, id int64) (*Disk, error) {
	d, err := store.MemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	store.hydrate(ctx, d)
	return d, nil
}

func (store *MemoryStore) hydrate(ctx context.Context, d *Disk) {
	d.HoldBy = store.lookup(ctx, d.HoldByID)
	d.ReservedBy = store.lookup(ctx, d.ReservedByID)
}

func (store *MemoryStore) lookup(ctx context.Context, id *int64) *member.Member {
	if id == nil || store.members == nil {
		return nil
	}
	m, err := store.members.Get(ctx, *id)
	if err != nil {
		return nil
	}
	return m
}

func (store *MemoryStore) CountReservedBy(ctx context.Context, memberID int64) (int, error) {
	discs, err := store.All(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range discs {
		if d.ReservedByID == nil || *d.ReservedByID != memberID {
			continue
		}
		switch d.AvailType {
		case StateReserved, StateReservedCounter, StateOnDelivery:
			count++
		}
	}
	return count, nil
}

func (store *MemoryStore) CountHeldBy(ctx context.Context, memberID int64) (int, error) {
	discs, err := store.All(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range discs {
		if d.AvailType == StateBorrowed && d.HoldByID != nil && *d.HoldByID == memberID {
			count++
		}
	}
	return count, nil
}

func (store *MemoryStore) CountActiveFor(ctx context.Context, memberID int64) (int, error) {
	discs, err := store.All(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range discs {
		if (d.HoldByID != nil && *d.HoldByID == memberID) ||
			(d.ReservedByID != nil && *d.ReservedByID == memberID) {
			count++
		}
	}
	return count, nil
}

func (store *MemoryStore) DueOn(ctx context.Context, date time.Time) ([]*Disk, error) {
	discs, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	var due []*Disk
	for _, d := range discs {
		if d.AvailType == StateBorrowed && d.DueAt != nil && d.DueAt.Equal(date) {
			due = append(due, d)
		}
	}
	return due, nil
}

func (store *MemoryStore) Overdue(ctx context.Context, date time.Time) ([]*Disk, error) {
	discs, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	var overdue []*Disk
	for _, d := range discs {
		if d.AvailType == StateBorrowed && d.DueAt != nil && d.DueAt.Before(date) {
			overdue = append(overdue, d)
		}
	}
	return overdue, nil
}

func (store *MemoryStore) InStates(ctx context.Context, states ...string) ([]*Disk, error) {
	discs, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*Disk
	for _, d := range discs {
		for _, state := range states {
			if d.AvailType == state {
				matched = append(matched, d)
				break
			}
		}
	}
	return matched, nil
}
