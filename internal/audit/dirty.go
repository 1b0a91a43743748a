// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"context"
	"time"
)

// DirtyFeed answers "which ids of this entity type changed recently?"
// by querying the audit log over a trailing window.
//
// It deliberately trades precision for simplicity: the feed reports ids
// only, never what changed, and keeps no subscriber bookkeeping.
// Clients that poll at least once per window never miss a change; an
// entry whose timestamp falls exactly on the window boundary is
// excluded.
type DirtyFeed struct {
	store Store

	// now is swapped by tests to pin the window edge.
	now func() time.Time
}

func NewDirtyFeed(store Store) *DirtyFeed {
	return &DirtyFeed{store: store, now: time.Now}
}

// SetClock pins the feed's notion of "now" for tests.
func (feed *DirtyFeed) SetClock(now func() time.Time) { feed.now = now }

// Poll returns the set of distinct entity ids with at least one entry
// in the given actions inside the trailing window.
func (feed *DirtyFeed) Poll(ctx context.Context, entityType string, actions []string, window time.Duration) ([]int64, error) {
	since := feed.now().Add(-window)
	return feed.store.ChangedSince(ctx, entityType, actions, since)
}
