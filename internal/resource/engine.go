// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pagination"
)

// Store persists one entity type. Implementations return
// dberr.ErrNotFound for missing rows so the engine can translate it
// uniformly.
type Store[T any] interface {
	// All loads every entity. The catalogue is society-scale, so
	// engines filter and search over the full set in memory to keep
	// the query semantics exact and store-agnostic.
	All(ctx context.Context) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	// NextID reserves an identifier from the entity's sequence before
	// the row exists, so the create audit entry can reference it.
	NextID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id int64) error
}

// Codec converts between a typed entity and its Record form.
type Codec[T any] interface {
	New() *T
	ID(entity *T) int64
	SetID(entity *T, id int64)
	// Fields renders the entity as a Record, embedding referenced
	// entities as nested Records where the descriptor projects them.
	Fields(entity *T) Record
	// Apply copies payload fields onto the entity. Unknown keys are
	// ignored; malformed values return a validation error.
	Apply(entity *T, payload Record) error
	// Label names the entity in audit entries ("disk B12 Seven", a
	// member's ITSC).
	Label(entity *T) string
	// Subject returns the ITSC of the member an audit entry should be
	// attributed to, or nil when no member is affected.
	Subject(entity *T) *string
}

// LifecycleHooks lets a domain package intervene in the engine
// pipeline. Validate runs before anything is written (current is nil
// on create); BeforeSave runs after the payload is applied but before
// persistence; AfterSave runs after persistence; BeforeDelete may veto
// a deletion by returning an error.
type LifecycleHooks[T any] interface {
	Validate(ctx context.Context, rc RequestContext, payload Record, current *T) error
	BeforeSave(ctx context.Context, rc RequestContext, entity *T, payload Record) error
	AfterSave(ctx context.Context, rc RequestContext, entity *T) error
	BeforeDelete(ctx context.Context, rc RequestContext, entity *T) error
}

// NopHooks is the identity LifecycleHooks, embedded by domain hook
// types that only override part of the pipeline.
type NopHooks[T any] struct{}

func (NopHooks[T]) Validate(context.Context, RequestContext, Record, *T) error { return nil }
func (NopHooks[T]) BeforeSave(context.Context, RequestContext, *T, Record) error {
	return nil
}
func (NopHooks[T]) AfterSave(context.Context, RequestContext, *T) error    { return nil }
func (NopHooks[T]) BeforeDelete(context.Context, RequestContext, *T) error { return nil }

// Engine drives the full resource pipeline for one entity type:
// loading, filtering, searching, ordering, pagination, projection,
// and the audited mutation flow.
type Engine[T any] struct {
	desc  *Descriptor
	store Store[T]
	codec Codec[T]
	hooks LifecycleHooks[T]
	audit audit.Store
	log   *slog.Logger
}

func NewEngine[T any](desc *Descriptor, store Store[T], codec Codec[T], hooks LifecycleHooks[T], auditStore audit.Store, log *slog.Logger) *Engine[T] {
	if hooks == nil {
		hooks = NopHooks[T]{}
	}
	return &Engine[T]{
		desc:  desc,
		store: store,
		codec: codec,
		hooks: hooks,
		audit: auditStore,
		log:   log.With(slog.String("resource", desc.Name)),
	}
}

// Descriptor exposes the engine's descriptor to handlers.
func (e *Engine[T]) Descriptor() *Descriptor { return e.desc }

// Store exposes the backing store for domain services that need typed
// access beyond the generic pipeline.
func (e *Engine[T]) Store() Store[T] { return e.store }

// Codec exposes the record codec for domain services.
func (e *Engine[T]) Codec() Codec[T] { return e.codec }

// List returns one page of records after filtering, searching and
// ordering per the request URL, projected to list fields.
func (e *Engine[T]) List(ctx context.Context, rc RequestContext, u *url.URL, params pagination.Params) ([]Record, pagination.Meta, error) {
	entities, err := e.store.All(ctx)
	if err != nil {
		return nil, pagination.Meta{}, dberr.Wrap(err, "list "+e.desc.Name)
	}
	records := make([]Record, len(entities))
	for i, entity := range entities {
		records[i] = e.codec.Fields(entity)
	}

	q := u.Query()
	records = ApplyFilters(records, ParseFilters(q, e.desc.FilterFields))
	if expr := q.Get("query"); expr != "" {
		records = ApplySearch(records, e.desc, expr)
	}
	SortRecords(records, q.Get("order"), e.desc)

	total := len(records)
	lo := params.Offset()
	if lo > total {
		lo = total
	}
	hi := lo + params.Limit
	if hi > total {
		hi = total
	}
	page := make([]Record, 0, hi-lo)
	for _, rec := range records[lo:hi] {
		page = append(page, ProjectList(rec, e.desc))
	}
	return page, pagination.NewMeta(u, params.Page, params.Limit, total), nil
}

// Detail returns one record projected in full.
func (e *Engine[T]) Detail(ctx context.Context, rc RequestContext, id int64) (Record, error) {
	entity, err := e.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return Project(e.codec.Fields(entity), e.desc), nil
}

// Fetch loads the typed entity, translating missing rows to a 404.
func (e *Engine[T]) Fetch(ctx context.Context, id int64) (*T, error) {
	entity, err := e.store.Get(ctx, id)
	if err != nil {
		if err == dberr.ErrNotFound {
			return nil, apperr.NotFound("Object")
		}
		return nil, dberr.Wrap(err, "get "+e.desc.Name)
	}
	return entity, nil
}

// Create runs the audited create pipeline: validate, reserve an id,
// apply the payload, BeforeSave, write the audit entry, insert,
// AfterSave. The audit entry is written before the insert so that it
// can reference the reserved id the same way every later entry does.
func (e *Engine[T]) Create(ctx context.Context, rc RequestContext, payload Record) (Record, error) {
	if err := e.hooks.Validate(ctx, rc, payload, nil); err != nil {
		return nil, err
	}
	entity := e.codec.New()
	id, err := e.store.NextID(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "reserve id for "+e.desc.Name)
	}
	e.codec.SetID(entity, id)
	if err := e.codec.Apply(entity, payload); err != nil {
		return nil, err
	}
	if err := e.hooks.BeforeSave(ctx, rc, entity, payload); err != nil {
		return nil, err
	}
	if err := e.Log(ctx, rc, audit.ActionCreate, entity, "create "+e.codec.Label(entity)); err != nil {
		return nil, err
	}
	if err := e.store.Insert(ctx, entity); err != nil {
		return nil, dberr.Wrap(err, "insert "+e.desc.Name)
	}
	if err := e.hooks.AfterSave(ctx, rc, entity); err != nil {
		return nil, err
	}
	e.log.InfoContext(ctx, "resource created", slog.Int64("id", id))
	return Project(e.codec.Fields(entity), e.desc), nil
}

// Edit runs the audited edit pipeline. Read-only fields are stripped
// from the payload before validation, so echoing back a full object is
// always safe.
func (e *Engine[T]) Edit(ctx context.Context, rc RequestContext, id int64, payload Record) (Record, error) {
	entity, err := e.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	payload = StripReadOnly(payload, e.desc)
	if err := e.hooks.Validate(ctx, rc, payload, entity); err != nil {
		return nil, err
	}
	if err := e.codec.Apply(entity, payload); err != nil {
		return nil, err
	}
	if err := e.hooks.BeforeSave(ctx, rc, entity, payload); err != nil {
		return nil, err
	}
	if err := e.store.Update(ctx, entity); err != nil {
		return nil, dberr.Wrap(err, "update "+e.desc.Name)
	}
	if err := e.hooks.AfterSave(ctx, rc, entity); err != nil {
		return nil, err
	}
	if err := e.Log(ctx, rc, audit.ActionEdit, entity, "edit "+e.codec.Label(entity)); err != nil {
		return nil, err
	}
	e.log.InfoContext(ctx, "resource edited", slog.Int64("id", id))
	return Project(e.codec.Fields(entity), e.desc), nil
}

// Delete runs the audited delete pipeline. BeforeDelete may veto; on
// success the entity's prior audit trail is either purged or kept per
// the descriptor, and a delete entry records the removal.
func (e *Engine[T]) Delete(ctx context.Context, rc RequestContext, id int64) error {
	entity, err := e.Fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := e.hooks.BeforeDelete(ctx, rc, entity); err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		return dberr.Wrap(err, "delete "+e.desc.Name)
	}
	if e.desc.PurgeAuditOnDelete {
		if err := e.audit.DeleteForEntity(ctx, e.desc.Name, id); err != nil {
			return dberr.Wrap(err, "purge audit trail of "+e.desc.Name)
		}
	}
	if err := e.Log(ctx, rc, audit.ActionDelete, entity, "delete "+e.codec.Label(entity)); err != nil {
		return err
	}
	e.log.InfoContext(ctx, "resource deleted", slog.Int64("id", id))
	return nil
}

// Log appends an audit entry for an entity, attributing it to the
// entity's subject member and the acting admin.
func (e *Engine[T]) Log(ctx context.Context, rc RequestContext, action string, entity *T, content string) error {
	entry := &audit.Entry{
		EntityType:   e.desc.Name,
		Action:       action,
		EntityID:     e.codec.ID(entity),
		AffectedUser: e.codec.Subject(entity),
		ActingAdmin:  rc.AdminRef(),
		Content:      content,
	}
	if err := e.audit.Append(ctx, entry); err != nil {
		return dberr.Wrap(err, fmt.Sprintf("append %s audit entry for %s", action, e.desc.Name))
	}
	return nil
}
