// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package content

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

func adminCtx(action string) resource.RequestContext {
	return resource.RequestContext{ActorID: 99, ActorITSC: "exco", Admin: true, Action: action}
}

func TestNewsLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewNewsMemoryStore()
	auditStore := audit.NewMemoryStore()
	engine := resource.NewEngine[News](
		NewNewsDescriptor(), store, NewsCodec{}, NewsHooks{}, auditStore, slog.Default())

	t.Run("create requires title and content", func(t *testing.T) {
		_, err := engine.Create(ctx, adminCtx("create"), resource.Record{"title": "AGM"})
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.ErrnoValidation, appErr.Errno)
		assert.Contains(t, appErr.Message, "Content Missing")
	})

	record, err := engine.Create(ctx, adminCtx("create"), resource.Record{
		"title":   "AGM 2026",
		"content": "The annual general meeting takes place in LT-B.",
	})
	require.NoError(t, err)
	id := record["id"].(int64)

	t.Run("edit cannot blank a required field", func(t *testing.T) {
		_, err := engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"title": ""})
		require.Error(t, err)
	})

	t.Run("partial edit keeps the rest", func(t *testing.T) {
		updated, err := engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"title": "AGM 2026 (rescheduled)"})
		require.NoError(t, err)
		assert.Equal(t, "AGM 2026 (rescheduled)", updated["title"])
		assert.Equal(t, "The annual general meeting takes place in LT-B.", updated["content"])
	})

	t.Run("delete purges nothing but logs", func(t *testing.T) {
		require.NoError(t, engine.Delete(ctx, adminCtx("delete"), id))
		entries, err := auditStore.History(ctx, "news", id, "")
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, "delete", entries[0].Action)
	})
}

func TestSponsorPlacement(t *testing.T) {
	ctx := context.Background()
	engine := resource.NewEngine[Sponsor](
		NewSponsorDescriptor(), NewSponsorMemoryStore(), SponsorCodec{}, SponsorHooks{},
		audit.NewMemoryStore(), slog.Default())

	valid := resource.Record{
		"name": "Golden Harvest", "img_url": "/static/gh.png", "url": "https://example.com",
		"x": 10, "y": 20, "w": 30, "h": 15,
	}

	t.Run("placement outside the canvas refused", func(t *testing.T) {
		payload := resource.Record{}
		for k, v := range valid {
			payload[k] = v
		}
		payload["w"] = 130
		_, err := engine.Create(ctx, adminCtx("create"), payload)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Contains(t, appErr.Message, "Out of Range")
	})

	t.Run("missing coordinate refused", func(t *testing.T) {
		payload := resource.Record{}
		for k, v := range valid {
			payload[k] = v
		}
		delete(payload, "y")
		_, err := engine.Create(ctx, adminCtx("create"), payload)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Contains(t, appErr.Message, "Location Missing")
	})

	t.Run("valid placement accepted", func(t *testing.T) {
		record, err := engine.Create(ctx, adminCtx("create"), valid)
		require.NoError(t, err)
		assert.Equal(t, 30, record["w"])
	})
}

func TestPublicationType(t *testing.T) {
	ctx := context.Background()
	engine := resource.NewEngine[Publication](
		NewPublicationDescriptor(), NewPublicationMemoryStore(), PublicationCodec{},
		PublicationHooks{}, audit.NewMemoryStore(), slog.Default())

	_, err := engine.Create(ctx, adminCtx("create"), resource.Record{
		"title": "Film Weekly #42", "pub_type": "Newspaper",
	})
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Message, "Invalid Type")

	record, err := engine.Create(ctx, adminCtx("create"), resource.Record{
		"title": "Film Weekly #42", "pub_type": PubMicroMagazine,
	})
	require.NoError(t, err)
	assert.Equal(t, PubMicroMagazine, record["pub_type"])
}

func TestFileKeyAssignment(t *testing.T) {
	ctx := context.Background()
	engine := resource.NewEngine[File](
		NewFileDescriptor(), NewFileMemoryStore(), FileCodec{}, FileHooks{},
		audit.NewMemoryStore(), slog.Default())

	record, err := engine.Create(ctx, adminCtx("create"), resource.Record{
		"name": "cover.jpg", "url": "/static/upload/cover.jpg",
	})
	require.NoError(t, err)
	key, _ := record["key"].(string)
	assert.NotEmpty(t, key, "storage key assigned at creation")

	// The key survives edits even if a client tries to overwrite it.
	updated, err := engine.Edit(ctx, adminCtx("edit"), record["id"].(int64), resource.Record{
		"name": "cover-final.jpg", "key": "forged",
	})
	require.NoError(t, err)
	assert.Equal(t, key, updated["key"])
}
