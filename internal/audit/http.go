// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	requestutil "github.com/johnmave126/filmsoc-website-backend/internal/platform/request"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pagination"
)

// Handler serves /api/log: the exco-only audit trail listing.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	claims := requestutil.Claims(r)
	if claims == nil || !claims.Admin {
		respond.Error(w, r, apperr.Forbidden("Authorization Forbidden"))
		return
	}

	query := r.URL.Query()
	filter := Filter{
		EntityType:   query.Get("model"),
		Action:       query.Get("log_type"),
		AffectedUser: query.Get("user_affected"),
	}
	if raw := query.Get("model_refer"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(w, r, apperr.BadRequest("Bad request"))
			return
		}
		filter.EntityID = id
	}

	params := pagination.FromRequest(r)
	entries, total, err := h.store.List(r.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	objects := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		objects = append(objects, e.Fields())
	}
	respond.Paginated(w, objects, pagination.NewMeta(r.URL, params.Page, params.Limit, total))
}
