// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

func TestEntryCategory(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"borrow disk B12", "borrow"},
		{"Renew disk B12", "renew"},
		{"up by chanwk", "up"},
		{"", ""},
		{"   leading space", "leading"},
	}
	for _, tc := range cases {
		entry := &Entry{Content: tc.content}
		assert.Equal(t, tc.want, entry.Category(), "content %q", tc.content)
	}
}

func TestMemoryStoreHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.Clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	entries := []*Entry{
		{EntityType: "disk", Action: ActionBorrow, EntityID: 12, Content: "reserve disk B12", AffectedUser: pointer.To("chanwk")},
		{EntityType: "disk", Action: ActionBorrow, EntityID: 12, Content: "borrow disk B12", AffectedUser: pointer.To("chanwk")},
		{EntityType: "disk", Action: ActionBorrow, EntityID: 12, Content: "return disk B12", AffectedUser: pointer.To("chanwk")},
		{EntityType: "disk", Action: ActionRate, EntityID: 12, Content: "up by leungty", AffectedUser: pointer.To("leungty")},
		{EntityType: "disk", Action: ActionBorrow, EntityID: 13, Content: "borrow disk A13"},
	}
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}

	t.Run("newest first, scoped to entity", func(t *testing.T) {
		history, err := store.History(ctx, "disk", 12, "")
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, "up by leungty", history[0].Content)
		assert.Equal(t, "reserve disk B12", history[3].Content)
	})

	t.Run("action filter", func(t *testing.T) {
		history, err := store.History(ctx, "disk", 12, ActionRate)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "up", history[0].Category())
	})

	t.Run("category distinguishes phases within one action", func(t *testing.T) {
		history, err := store.History(ctx, "disk", 12, ActionBorrow)
		require.NoError(t, err)
		require.Len(t, history, 3)

		var categories []string
		for _, e := range history {
			categories = append(categories, e.Category())
		}
		assert.Equal(t, []string{"return", "borrow", "reserve"}, categories)
	})

	t.Run("list filters and counts", func(t *testing.T) {
		page, total, err := store.List(ctx, Filter{EntityType: "disk", AffectedUser: "chanwk"}, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, page, 2)
	})

	t.Run("delete for entity", func(t *testing.T) {
		require.NoError(t, store.DeleteForEntity(ctx, "disk", 12))
		history, err := store.History(ctx, "disk", 12, "")
		require.NoError(t, err)
		assert.Empty(t, history)

		// Other entities keep their trail.
		history, err = store.History(ctx, "disk", 13, "")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}
