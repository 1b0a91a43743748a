// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Handler serves /api/disk: the catalogue resource plus the lending
// sub-actions.
type Handler struct {
	inner   *resource.Handler[Disk]
	lending *LendingService
}

func NewHandler(engine *resource.Engine[Disk], dirty *audit.DirtyFeed, lending *LendingService) *Handler {
	h := &Handler{lending: lending}
	h.inner = resource.NewHandler(engine, dirty, resource.Access{}).Extend(func(r chi.Router) {
		r.Post("/{id}/reservation", h.reserve)
		r.Delete("/{id}/reservation", h.clearReservation)
		r.Post("/{id}/reservation/clear", h.clearReservation)
		r.Post("/{id}/delivery", h.deliver)
		r.Post("/{id}/borrow", h.checkOut)
		r.Post("/{id}/renew", h.renew)
		r.Post("/{id}/return", h.checkIn)
		r.Get("/{id}/rate", h.getRate)
		r.Post("/{id}/rate", h.addRate)
	})
	return h
}

func (h *Handler) Routes() chi.Router { return h.inner.Routes() }

func (h *Handler) respondDisk(w http.ResponseWriter, r *http.Request, d *Disk) {
	engine := h.inner.Engine()
	respond.Object(w, resource.Project(engine.Codec().Fields(d), engine.Descriptor()))
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "reserve")
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
		Mode string `json:"mode"`
	}
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	d, err := h.lending.Reserve(r.Context(), rc, id, body.Mode)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondDisk(w, r, d)
}

func (h *Handler) clearReservation(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "reserve")
	if rc.Anonymous() {
		respond.Error(w, r, apperr.Unauthorized("User not login"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	d, err := h.lending.ClearReservation(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondDisk(w, r, d)
}

func (h *Handler) deliver(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "reserve")
	if !rc.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	d, err := h.lending.Deliver(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondDisk(w, r, d)
}

// checkOut is the counter flow: an exco hands the disc to a member.
func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "borrow")
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
	d, err := h.lending.CheckOut(r.Context(), rc, id, body.MemberID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondDisk(w, r, d)
}

func (h *Handler) renew(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "borrow")
	if rc.Anonymous() {
		respond.Error(w, r, apperr.Unauthorized("User not login"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	d, err := h.lending.Renew(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondDisk(w, r, d)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "borrow")
	if !rc.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	d, err := h.lending.CheckIn(r.Context(), rc, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.respondDisk(w, r, d)
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "rate")
	id, err := requestutil.IntID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	rates, err := h.lending.GetRate(r.Context(), id, rc.ActorITSC)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{"ups": rates.Ups, "downs": rates.Downs, "rated": rates.Rated})
}

func (h *Handler) addRate(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "rate")
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
		Rate string `json:"rate"`
	}
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	if body.Rate != "up" && body.Rate != "down" {
		respond.Error(w, r, apperr.ValidationMsg("Rate must be up or down"))
		return
	}
	rates, err := h.lending.AddRate(r.Context(), rc, id, body.Rate == "up")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{"ups": rates.Ups, "downs": rates.Downs, "rated": rates.Rated})
}
