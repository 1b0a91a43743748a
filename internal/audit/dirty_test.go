// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirtyFeedPoll(t *testing.T) {
	ctx := context.Background()
	window := 6 * time.Minute
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := NewMemoryStore()
	feed := NewDirtyFeed(store)
	feed.SetClock(func() time.Time { return now })

	appendAt := func(entityType, action string, entityID int64, at time.Time) {
		store.Clock = func() time.Time { return at }
		require.NoError(t, store.Append(ctx, &Entry{
			EntityType: entityType,
			Action:     action,
			EntityID:   entityID,
			Content:    action,
		}))
	}

	appendAt("disk", ActionEdit, 1, now.Add(-time.Minute))
	appendAt("disk", ActionBorrow, 2, now.Add(-5*time.Minute))
	appendAt("disk", ActionEdit, 2, now.Add(-2*time.Minute))
	appendAt("disk", ActionEdit, 3, now.Add(-window))        // exactly on the boundary
	appendAt("disk", ActionEdit, 4, now.Add(-window-time.Second))
	appendAt("disk", ActionRate, 5, now.Add(-time.Minute))   // untracked action
	appendAt("news", ActionEdit, 6, now.Add(-time.Minute))   // other entity

	ids, err := feed.Poll(ctx, "disk", []string{ActionCreate, ActionEdit, ActionDelete, ActionBorrow}, window)
	require.NoError(t, err)

	// The boundary entry is excluded: the window is a strict
	// created_at > now-window comparison, and each id appears once no
	// matter how many entries it produced.
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestDirtyFeedEmptyWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	feed := NewDirtyFeed(store)

	ids, err := feed.Poll(ctx, "disk", []string{ActionEdit}, 6*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
