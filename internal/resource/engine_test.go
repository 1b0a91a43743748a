// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pagination"
)

// notice is a minimal entity exercising the full engine pipeline.
type notice struct {
	ID     int64
	Title  string
	Body   string
	Pinned bool
}

type noticeCodec struct{}

func (noticeCodec) New() *notice              { return &notice{} }
func (noticeCodec) ID(n *notice) int64        { return n.ID }
func (noticeCodec) SetID(n *notice, id int64) { n.ID = id }

func (noticeCodec) Fields(n *notice) Record {
	return Record{
		"id":     n.ID,
		"title":  n.Title,
		"body":   n.Body,
		"pinned": n.Pinned,
	}
}

func (noticeCodec) Apply(n *notice, payload Record) error {
	if v, ok := payload["title"].(string); ok {
		n.Title = v
	}
	if v, ok := payload["body"].(string); ok {
		n.Body = v
	}
	if v, ok := payload["pinned"].(bool); ok {
		n.Pinned = v
	}
	return nil
}

func (noticeCodec) Label(n *notice) string    { return fmt.Sprintf("notice %d", n.ID) }
func (noticeCodec) Subject(n *notice) *string { return nil }

// noticeHooks vetoes deleting pinned notices and requires a title.
type noticeHooks struct {
	NopHooks[notice]
}

func (noticeHooks) Validate(_ context.Context, _ RequestContext, payload Record, current *notice) error {
	if current == nil {
		if title, _ := payload["title"].(string); title == "" {
			return apperr.ValidationMsg("Title is required")
		}
	}
	return nil
}

func (noticeHooks) BeforeDelete(_ context.Context, _ RequestContext, n *notice) error {
	if n.Pinned {
		return apperr.BusinessRule("Pinned notice cannot be deleted")
	}
	return nil
}

func noticeDescriptor() *Descriptor {
	return &Descriptor{
		Name:         "notice",
		Fields:       []string{"id", "title", "body", "pinned"},
		ReadOnly:     []string{"pinned"},
		ListFields:   []string{"id", "title"},
		FilterFields: []string{"pinned", "id"},
		SearchGroups: map[string][]string{
			DefaultSearchGroup: {"title", "body"},
		},
		DirtyActions: []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
	}
}

func newNoticeEngine(t *testing.T, desc *Descriptor) (*Engine[notice], *audit.MemoryStore) {
	t.Helper()
	codec := noticeCodec{}
	store := NewMemoryStore[notice](codec, func(n *notice) *notice {
		copied := *n
		return &copied
	})
	auditStore := audit.NewMemoryStore()
	engine := NewEngine(desc, store, codec, noticeHooks{}, auditStore, slog.Default())
	return engine, auditStore
}

func adminContext(action string) RequestContext {
	return RequestContext{ActorID: 1, ActorITSC: "exco", Admin: true, Action: action}
}

func TestEngineCreate(t *testing.T) {
	engine, auditStore := newNoticeEngine(t, noticeDescriptor())
	ctx := context.Background()

	t.Run("creates with reserved id and audit entry", func(t *testing.T) {
		record, err := engine.Create(ctx, adminContext("create"), Record{"title": "AGM", "body": "this friday"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), record["id"])
		assert.Equal(t, "AGM", record["title"])

		history, err := auditStore.History(ctx, "notice", 1, "")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, audit.ActionCreate, history[0].Action)
		assert.Equal(t, "create", history[0].Category())
		require.NotNil(t, history[0].ActingAdmin)
		assert.Equal(t, "exco", *history[0].ActingAdmin)
	})

	t.Run("validation failure writes nothing", func(t *testing.T) {
		_, err := engine.Create(ctx, adminContext("create"), Record{"body": "untitled"})
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.ErrnoValidation, appErr.Errno)

		all, err := engine.Store().All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestEngineEdit(t *testing.T) {
	engine, auditStore := newNoticeEngine(t, noticeDescriptor())
	ctx := context.Background()

	created, err := engine.Create(ctx, adminContext("create"), Record{"title": "AGM", "body": "this friday"})
	require.NoError(t, err)
	id := created["id"].(int64)

	t.Run("applies payload and logs", func(t *testing.T) {
		record, err := engine.Edit(ctx, adminContext("edit"), id, Record{"body": "next friday"})
		require.NoError(t, err)
		assert.Equal(t, "next friday", record["body"])

		history, err := auditStore.History(ctx, "notice", id, audit.ActionEdit)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("read-only fields are stripped", func(t *testing.T) {
		record, err := engine.Edit(ctx, adminContext("edit"), id, Record{"pinned": true, "title": "AGM (moved)"})
		require.NoError(t, err)
		assert.Equal(t, false, record["pinned"])
		assert.Equal(t, "AGM (moved)", record["title"])
	})

	t.Run("missing entity is a 404", func(t *testing.T) {
		_, err := engine.Edit(ctx, adminContext("edit"), 404, Record{"title": "x"})
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestEngineDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("hook veto keeps the entity", func(t *testing.T) {
		engine, _ := newNoticeEngine(t, noticeDescriptor())
		created, err := engine.Create(ctx, adminContext("create"), Record{"title": "pinned one"})
		require.NoError(t, err)
		id := created["id"].(int64)

		// Pin through the store: the field is read-only over the API.
		entity, err := engine.Fetch(ctx, id)
		require.NoError(t, err)
		entity.Pinned = true
		require.NoError(t, engine.Store().Update(ctx, entity))

		err = engine.Delete(ctx, adminContext("delete"), id)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))

		_, err = engine.Fetch(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("delete keeps history as a trail", func(t *testing.T) {
		engine, auditStore := newNoticeEngine(t, noticeDescriptor())
		created, err := engine.Create(ctx, adminContext("create"), Record{"title": "old"})
		require.NoError(t, err)
		id := created["id"].(int64)

		require.NoError(t, engine.Delete(ctx, adminContext("delete"), id))

		history, err := auditStore.History(ctx, "notice", id, "")
		require.NoError(t, err)
		assert.Len(t, history, 2)
		assert.Equal(t, audit.ActionDelete, history[0].Action)
	})

	t.Run("purge flag drops prior history", func(t *testing.T) {
		desc := noticeDescriptor()
		desc.PurgeAuditOnDelete = true
		engine, auditStore := newNoticeEngine(t, desc)

		created, err := engine.Create(ctx, adminContext("create"), Record{"title": "ephemeral"})
		require.NoError(t, err)
		id := created["id"].(int64)

		require.NoError(t, engine.Delete(ctx, adminContext("delete"), id))

		history, err := auditStore.History(ctx, "notice", id, "")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, audit.ActionDelete, history[0].Action)
	})
}

func TestEngineList(t *testing.T) {
	engine, _ := newNoticeEngine(t, noticeDescriptor())
	ctx := context.Background()

	titles := []string{"AGM notice", "Screening week", "Library hours", "Oscar night", "Summer break"}
	for _, title := range titles {
		_, err := engine.Create(ctx, adminContext("create"), Record{"title": title, "body": "details"})
		require.NoError(t, err)
	}

	listURL := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u
	}

	t.Run("paginates with list projection", func(t *testing.T) {
		u := listURL("/api/notice/?page=2&limit=2&order=id")
		objects, meta, err := engine.List(ctx, adminContext("list"), u, pagination.Params{Page: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, objects, 2)
		assert.Equal(t, 5, meta.Total)
		assert.Equal(t, 3, meta.TotalPages)
		assert.Contains(t, meta.Next, "page=3")
		assert.Contains(t, meta.Previous, "page=1")

		assert.Equal(t, int64(3), objects[0]["id"])
		assert.NotContains(t, objects[0], "body")
	})

	t.Run("search narrows the set", func(t *testing.T) {
		u := listURL("/api/notice/?query=screening")
		objects, meta, err := engine.List(ctx, adminContext("list"), u, pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)
		require.Len(t, objects, 1)
		assert.Equal(t, 1, meta.Total)
		assert.Equal(t, "Screening week", objects[0]["title"])
	})

	t.Run("filter by id list", func(t *testing.T) {
		u := listURL("/api/notice/?id__in=1,3")
		objects, _, err := engine.List(ctx, adminContext("list"), u, pagination.Params{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, objects, 2)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		u := listURL("/api/notice/?page=9")
		objects, meta, err := engine.List(ctx, adminContext("list"), u, pagination.Params{Page: 9, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, objects)
		assert.Equal(t, 5, meta.Total)
	})
}
