// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package member

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

func adminContext(action string) resource.RequestContext {
	return resource.RequestContext{ActorID: 1, ActorITSC: "exco", Admin: true, Action: action}
}

func newEngine(t *testing.T, held func(ctx context.Context, memberID int64) (int, error)) (*resource.Engine[Member], *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	engine := resource.NewEngine[Member](
		NewDescriptor(), store, Codec{}, NewHooks(store, held),
		audit.NewMemoryStore(), slog.Default())
	return engine, store
}

func validPayload() resource.Record {
	return resource.Record{
		"itsc":          "chanwk",
		"student_id":    "20031234",
		"university_id": "200312345",
		"mobile":        "91234567",
		"full_name":     "Chan Wing Kei",
		"member_type":   TypeFull,
		"expire_at":     "2027-08-31",
	}
}

func TestMemberCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid member", func(t *testing.T) {
		engine, store := newEngine(t, nil)
		record, err := engine.Create(ctx, adminContext("create"), validPayload())
		require.NoError(t, err)
		assert.Equal(t, "chanwk", record["itsc"])

		m, err := store.FindByITSC(ctx, "chanwk")
		require.NoError(t, err)
		assert.Equal(t, TypeFull, m.MemberType)
		require.NotNil(t, m.ExpireAt)
		assert.Equal(t, time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC), *m.ExpireAt)
	})

	t.Run("duplicate itsc refused", func(t *testing.T) {
		engine, _ := newEngine(t, nil)
		_, err := engine.Create(ctx, adminContext("create"), validPayload())
		require.NoError(t, err)

		_, err = engine.Create(ctx, adminContext("create"), validPayload())
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	t.Run("malformed identifiers", func(t *testing.T) {
		engine, _ := newEngine(t, nil)
		payload := validPayload()
		payload["student_id"] = "2003123"    // 7 digits
		payload["university_id"] = "0012345" // 7 digits
		payload["mobile"] = "9123456a"

		_, err := engine.Create(ctx, adminContext("create"), payload)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.ErrnoValidation, appErr.Errno)
		assert.Len(t, appErr.Details, 3)
	})

	t.Run("unknown member type", func(t *testing.T) {
		engine, _ := newEngine(t, nil)
		payload := validPayload()
		payload["member_type"] = "Lifetime"

		_, err := engine.Create(ctx, adminContext("create"), payload)
		require.Error(t, err)
	})
}

func TestMemberEdit(t *testing.T) {
	ctx := context.Background()
	engine, store := newEngine(t, nil)

	record, err := engine.Create(ctx, adminContext("create"), validPayload())
	require.NoError(t, err)
	id := record["id"].(int64)

	t.Run("itsc is immutable", func(t *testing.T) {
		_, err := engine.Edit(ctx, adminContext("edit"), id, resource.Record{"itsc": "other", "pen_name": "wk"})
		require.NoError(t, err)

		m, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "chanwk", m.ITSC)
		assert.Equal(t, "wk", m.PenName)
	})

	t.Run("expiry job state", func(t *testing.T) {
		_, err := engine.Edit(ctx, adminContext("edit"), id, resource.Record{"member_type": TypeExpired})
		require.NoError(t, err)
		m, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, m.Active())
	})
}

func TestMemberDeleteVeto(t *testing.T) {
	ctx := context.Background()
	holds := 1
	engine, _ := newEngine(t, func(context.Context, int64) (int, error) { return holds, nil })

	record, err := engine.Create(ctx, adminContext("create"), validPayload())
	require.NoError(t, err)
	id := record["id"].(int64)

	err = engine.Delete(ctx, adminContext("delete"), id)
	require.Error(t, err)
	assert.True(t, apperr.IsBusinessRule(err))

	holds = 0
	assert.NoError(t, engine.Delete(ctx, adminContext("delete"), id))
}

func TestRecordLogin(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	m := &Member{ID: 1, ITSC: "chanwk", MemberType: TypeFull}
	require.NoError(t, store.Insert(ctx, m))

	require.NoError(t, store.RecordLogin(ctx, 1, first))
	require.NoError(t, store.RecordLogin(ctx, 1, second))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LoginCount)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, first, *got.LastLogin)
	require.NotNil(t, got.ThisLogin)
	assert.Equal(t, second, *got.ThisLogin)
}

func TestExpiring(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cutoff := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, &Member{ID: 1, ITSC: "a", MemberType: TypeFull, ExpireAt: pointer.To(cutoff)}))
	require.NoError(t, store.Insert(ctx, &Member{ID: 2, ITSC: "b", MemberType: TypeFull, ExpireAt: pointer.To(cutoff.Add(time.Hour))}))
	require.NoError(t, store.Insert(ctx, &Member{ID: 3, ITSC: "c", MemberType: TypeExpired, ExpireAt: pointer.To(cutoff)}))
	require.NoError(t, store.Insert(ctx, &Member{ID: 4, ITSC: "d", MemberType: TypeHonour}))

	expiring, err := store.Expiring(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "a", expiring[0].ITSC)
}
