// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/ctxutil"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// Returns validate.ErrInvalidJSON (a 400 bad-request) if decoding fails.
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// IntID retrieves a named URL parameter as an int64 primary key.
// Returns a 404 if the parameter is not a number, matching the behavior
// of looking up a record that cannot exist.
func IntID(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.NotFound("Object")
	}
	return id, nil
}

// Claims extracts the authenticated member claims from the request context.
// Returns nil if the request is anonymous.
func Claims(request *http.Request) *sec.SessionClaims {
	return ctxutil.GetMember(request.Context())
}

// RequiredClaims ensures the request is authenticated and returns the
// member claims, or a 401 otherwise.
func RequiredClaims(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetMember(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("User not login")
	}
	return claims, nil
}
