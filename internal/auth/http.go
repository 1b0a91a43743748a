// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Handler serves /api/auth: login and logout.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ticket  string `json:"ticket"`
		Service string `json:"service"`
	}
	if err := requestutil.DecodeJSON(r, &body); err != nil {
		respond.Error(w, r, err)
		return
	}
	token, m, err := h.service.Login(r.Context(), body.Ticket, body.Service)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{
		"token":  token,
		"member": resource.Project(member.Codec{}.Fields(m), member.NewDescriptor()),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, err := requestutil.RequiredClaims(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.service.Logout(r.Context(), claims); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, respond.Envelope{})
}
