// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package member

import (
	"context"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// MemoryStore is the in-memory Store backing the package test suites
// and the lending/voting suites that need registered members.
type MemoryStore struct {
	*resource.MemoryStore[Member]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		MemoryStore: resource.NewMemoryStore[Member](Codec{}, func(m *Member) *Member {
			copied := *m
			return &copied
		}),
	}
}

func (store *MemoryStore) FindByITSC(ctx context.Context, itsc string) (*Member, error) {
	members, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ITSC == itsc {
			return m, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *MemoryStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	m, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	m.LastLogin = m.ThisLogin
	m.ThisLogin = pointer.To(at)
	m.LoginCount++
	return store.Update(ctx, m)
}

func (store *MemoryStore) Expiring(ctx context.Context, cutoff time.Time) ([]*Member, error) {
	members, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	var expiring []*Member
	for _, m := range members {
		if m.MemberType == TypeExpired || m.ExpireAt == nil {
			continue
		}
		if !m.ExpireAt.After(cutoff) {
			expiring = append(expiring, m)
		}
	}
	return expiring, nil
}
