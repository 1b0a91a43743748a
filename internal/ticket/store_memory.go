// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package ticket

import (
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// MemoryStore is the in-memory ticket Store for tests.
type MemoryStore struct {
	*resource.MemoryStore[Ticket]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		MemoryStore: resource.NewMemoryStore[Ticket](Codec{}, func(t *Ticket) *Ticket {
			copied := *t
			if t.ApplyDeadline != nil {
				deadline := *t.ApplyDeadline
				copied.ApplyDeadline = &deadline
			}
			return &copied
		}),
	}
}
