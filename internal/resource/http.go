// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package resource

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pagination"
)

// Access decides who may use a resource's endpoints. Nil Read means
// public; nil Mutate means admin only, which is the default posture
// for everything the exco manages.
type Access struct {
	// List guards the collection listing. Nil means public.
	List func(rc RequestContext) bool
	// Read guards detail reads; record is the full projection about to
	// be returned.
	Read func(rc RequestContext, record Record) bool
	// Mutate guards create, edit and delete.
	Mutate func(rc RequestContext) bool
}

func (a Access) canList(rc RequestContext) bool {
	if a.List == nil {
		return true
	}
	return a.List(rc)
}

func (a Access) canRead(rc RequestContext, record Record) bool {
	if a.Read == nil {
		return true
	}
	return a.Read(rc, record)
}

func (a Access) canMutate(rc RequestContext) bool {
	if a.Mutate == nil {
		return rc.Admin
	}
	return a.Mutate(rc)
}

// Handler serves the standard REST surface of one resource: list (with
// filter/search/order), detail, create, edit, delete, and the dirty
// feed the frontend polls for cache invalidation. Domain packages
// mount extra sub-action routes through Extend.
type Handler[T any] struct {
	engine *Engine[T]
	dirty  *audit.DirtyFeed
	access Access
	extend []func(r chi.Router)
}

func NewHandler[T any](engine *Engine[T], dirty *audit.DirtyFeed, access Access) *Handler[T] {
	return &Handler[T]{engine: engine, dirty: dirty, access: access}
}

// Engine exposes the underlying engine to wrapping domain handlers.
func (h *Handler[T]) Engine() *Engine[T] { return h.engine }

// Extend registers additional routes mounted alongside the standard
// ones, for domain sub-actions such as reserve or vote.
func (h *Handler[T]) Extend(register func(r chi.Router)) *Handler[T] {
	h.extend = append(h.extend, register)
	return h
}

// Routes mounts the resource's endpoints on a fresh sub-router.
func (h *Handler[T]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/dirty", h.dirtyList)
	r.Post("/", h.create)
	r.Get("/{id}", h.detail)
	r.Put("/{id}", h.edit)
	r.Delete("/{id}", h.delete)
	// Legacy clients mutate through POST only.
	r.Post("/{id}/edit", h.edit)
	r.Post("/{id}/delete", h.delete)
	for _, register := range h.extend {
		register(r)
	}
	return r
}

// ContextFor builds the engine's request context from the session
// middleware's claims.
func ContextFor(r *http.Request, action string) RequestContext {
	claims := requestutil.Claims(r)
	if claims == nil {
		return RequestContext{Action: action}
	}
	return RequestContext{
		ActorID:   claims.MemberID,
		ActorITSC: claims.ITSC,
		Admin:     claims.Admin,
		Action:    action,
	}
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	rc := ContextFor(r, "list")
	if !h.access.canList(rc) {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	objects, meta, err := h.engine.List(r.Context(), rc, r.URL, pagination.FromRequest(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Paginated(w, objects, meta)
}

func (h *Handler[T]) detail(w http.ResponseWriter, r *http.Request) {
	rc := ContextFor(r, "detail")
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	record, err := h.engine.Detail(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !h.access.canRead(rc, record) {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	respond.Object(w, record)
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	rc := ContextFor(r, "create")
	if !h.access.canMutate(rc) {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	var payload Record
	if err := requestutil.DecodeJSON(r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}
	record, err := h.engine.Create(r.Context(), rc, payload)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Object(w, record)
}

func (h *Handler[T]) edit(w http.ResponseWriter, r *http.Request) {
	rc := ContextFor(r, "edit")
	if !h.access.canMutate(rc) {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var payload Record
	if err := requestutil.DecodeJSON(r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}
	record, err := h.engine.Edit(r.Context(), rc, id, payload)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Object(w, record)
}

func (h *Handler[T]) delete(w http.ResponseWriter, r *http.Request) {
	rc := ContextFor(r, "delete")
	if !h.access.canMutate(rc) {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.engine.Delete(r.Context(), rc, id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{"id": id})
}

// dirtyList returns the ids of entities whose tracked actions produced
// audit entries inside the dirty window, letting the frontend refresh
// just those objects instead of refetching whole collections.
func (h *Handler[T]) dirtyList(w http.ResponseWriter, r *http.Request) {
	rc := ContextFor(r, "dirty")
	desc := h.engine.Descriptor()
	if desc.AdminOnlyFeed && !rc.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	ids, err := h.dirty.Poll(r.Context(), desc.Name, desc.DirtyActions, constants.DirtyWindow)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	respond.OK(w, respond.Envelope{"objects": ids})
}
