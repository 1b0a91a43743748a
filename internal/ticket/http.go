// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package ticket

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Handler serves /api/ticket: ticket CRUD plus the apply sub-action.
type Handler struct {
	inner *resource.Handler[Ticket]
	apply *ApplyService
}

func NewHandler(engine *resource.Engine[Ticket], dirty *audit.DirtyFeed, apply *ApplyService) *Handler {
	h := &Handler{apply: apply}
	h.inner = resource.NewHandler(engine, dirty, resource.Access{}).Extend(func(r chi.Router) {
		r.Post("/{id}/application", h.applyTicket)
		r.Get("/{id}/application", h.listApplicants)
	})
	return h
}

func (h *Handler) Routes() chi.Router { return h.inner.Routes() }

func (h *Handler) applyTicket(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "apply")
	if rc.Anonymous() {
		respond.Error(w, r, apperr.Unauthorized("User not login"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	t, err := h.apply.Apply(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	engine := h.inner.Engine()
	respond.Object(w, resource.Project(engine.Codec().Fields(t), engine.Descriptor()))
}

// listApplicants is exco-only: it exposes who entered the draw.
func (h *Handler) listApplicants(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "apply")
	if !rc.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	itscs, err := h.apply.Applicants(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{"applicants": itscs})
}
