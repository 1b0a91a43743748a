// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

func newReviewEngine(t *testing.T) (*resource.Engine[Review], *MemoryStore, member.Store) {
	t.Helper()
	members := member.NewMemoryStore()
	disks := NewMemoryStore(members)
	reviews := resource.NewMemoryStore[Review](ReviewCodec{}, func(r *Review) *Review {
		clone := *r
		return &clone
	})
	engine := resource.NewEngine[Review](
		NewReviewDescriptor(), reviews, ReviewCodec{},
		NewReviewHooks(disks, members), audit.NewMemoryStore(), slog.Default())
	return engine, disks, members
}

func TestReviewOwnership(t *testing.T) {
	ctx := context.Background()
	engine, disks, members := newReviewEngine(t)

	require.NoError(t, members.Insert(ctx, &member.Member{
		ID: 1, ITSC: "chanwk", MemberType: member.TypeFull}))
	require.NoError(t, members.Insert(ctx, &member.Member{
		ID: 2, ITSC: "leungty", MemberType: member.TypeFull}))
	require.NoError(t, disks.Insert(ctx, &Disk{
		ID: 10, DiskType: TypeDVD, TitleEn: "Yi Yi", AvailType: StateAvailable}))

	record, err := engine.Create(ctx, memberContext(1, "chanwk"), resource.Record{
		"disk_id": int64(10), "content": "a fine film"})
	require.NoError(t, err)
	reviewID := record["id"].(int64)

	t.Run("another member cannot edit", func(t *testing.T) {
		_, err := engine.Edit(ctx, memberContext(2, "leungty"), reviewID,
			resource.Record{"content": "vandalized"})
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)

		kept, err := engine.Detail(ctx, memberContext(2, "leungty"), reviewID)
		require.NoError(t, err)
		assert.Equal(t, "a fine film", kept["content"])
	})

	t.Run("poster edits their own", func(t *testing.T) {
		updated, err := engine.Edit(ctx, memberContext(1, "chanwk"), reviewID,
			resource.Record{"content": "a fine film, on second thought a great one"})
		require.NoError(t, err)
		assert.Equal(t, "a fine film, on second thought a great one", updated["content"])
	})

	t.Run("admin edits anyone's", func(t *testing.T) {
		_, err := engine.Edit(ctx, adminContext(), reviewID,
			resource.Record{"content": "trimmed by the exco"})
		require.NoError(t, err)
	})

	t.Run("another member cannot delete", func(t *testing.T) {
		err := engine.Delete(ctx, memberContext(2, "leungty"), reviewID)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	})
}
