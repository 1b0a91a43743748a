// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Handler serves /api/site: public settings read, admin library
// toggle.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.settings)
	r.Post("/library", h.setLibrary)
	return r
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{"settings": settings})
}

func (h *Handler) setLibrary(w http.ResponseWriter, r *http.Request) {
	rc := resource.ContextFor(r, "edit")
	if !rc.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}
	var body struct {
		Open bool `json:"open"`
	}
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.service.SetLibraryOpen(r.Context(), rc, body.Open); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{"library_open": body.Open})
}
