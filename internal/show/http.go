// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package show

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Handler serves /api/show: the show resource plus voting and
// attendance sub-actions.
type Handler struct {
	inner  *resource.Handler[Show]
	voting *VotingService
}

func NewHandler(engine *resource.Engine[Show], dirty *audit.DirtyFeed, voting *VotingService) *Handler {
	h := &Handler{voting: voting}
	h.inner = resource.NewHandler(engine, dirty, resource.Access{}).Extend(func(r chi.Router) {
		r.Post("/{id}/vote", h.addVote)
		r.Post("/{id}/participant", h.signIn)
	})
	return h
}

func (h *Handler) Routes() chi.Router { return h.inner.Routes() }

func (h *Handler) respondShow(w http.ResponseWriter, r *http.Request, s *Show) {
	engine := h.inner.Engine()
	respond.Object(w, resource.Project(engine.Codec().Fields(s), engine.Descriptor()))
}

func (h *Handler) addVote(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "vote")
	if rc.Anonymous() {
		respond.Error(w, r, apperr.Unauthorized("User not login"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var body struct {
		Slot int `json:"slot"`
	}
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	s, err := h.voting.AddVote(r.Context(), rc, id, body.Slot)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondShow(w, r, s)
}

// signIn records attendance at the counter, so it is an admin action
// naming the member.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "signin")
	if !rc.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var body struct {
		MemberID int64 `json:"member_id"`
	}
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	s, err := h.voting.SignInUser(r.Context(), rc, id, body.MemberID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondShow(w, r, s)
}
