// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package site

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

func TestLibraryToggle(t *testing.T) {
	ctx := context.Background()
	auditStore := audit.NewMemoryStore()
	service := NewService(NewMemoryStore(), auditStore, slog.Default())
	rc := resource.RequestContext{ActorID: 99, ActorITSC: "exco", Admin: true, Action: "edit"}

	open, err := service.LibraryOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open, "closed until someone opens it")

	require.NoError(t, service.SetLibraryOpen(ctx, rc, true))
	open, err = service.LibraryOpen(ctx)
	require.NoError(t, err)
	assert.True(t, open)

	require.NoError(t, service.SetLibraryOpen(ctx, rc, false))
	open, err = service.LibraryOpen(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	entries, err := auditStore.History(ctx, "site", 1, audit.ActionEdit)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "edit library_open to closed", entries[0].Content)
	require.NotNil(t, entries[0].ActingAdmin)
	assert.Equal(t, "exco", *entries[0].ActingAdmin)
}

func TestSettingsMap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store, audit.NewMemoryStore(), slog.Default())

	settings, err := service.Settings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings)

	require.NoError(t, store.Set(ctx, "site_title", "HKUSTSU Film Society"))
	settings, err = service.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HKUSTSU Film Society", settings["site_title"])
}
