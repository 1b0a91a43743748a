// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package member

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Handler serves /api/member. Listing and editing the registry is exco
// work; a member may always read their own record.
type Handler struct {
	inner *resource.Handler[Member]
	store Store
}

func NewHandler(engine *resource.Engine[Member], dirty *audit.DirtyFeed, store Store) *Handler {
	access := resource.Access{
		// The registry listing is personal data; only the exco walks it.
		List: func(rc resource.RequestContext) bool { return rc.Admin },
		Read: func(rc resource.RequestContext, record resource.Record) bool {
			if rc.Admin {
				return true
			}
			itsc, _ := record["itsc"].(string)
			return itsc != "" && itsc == rc.ActorITSC
		},
	}
	h := &Handler{store: store}
	h.inner = resource.NewHandler(engine, dirty, access).Extend(func(r chi.Router) {
		r.Get("/current", h.currentUser)
	})
	return h
}

func (h *Handler) Routes() chi.Router { return h.inner.Routes() }

// currentUser returns the logged-in member's own record, the call the
// frontend makes right after CAS login.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	claims, err := requestutil.RequiredClaims(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	m, err := h.store.FindByITSC(r.Context(), claims.ITSC)
	if err != nil {
		if err == dberr.ErrNotFound {
			respond.Error(w, r, apperr.NotFound("Member"))
			return
		}
		respond.Error(w, r, dberr.Wrap(err, "load current member"))
		return
	}
	record := resource.Project(Codec{}.Fields(m), h.inner.Engine().Descriptor())
	respond.Object(w, record)
}
