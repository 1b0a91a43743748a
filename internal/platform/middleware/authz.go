// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/ctxutil"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/respond"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
)

// SessionVerifier defines the interface needed to verify session tokens
// in middleware.
//
// # Why an interface?
//
// Defining SessionVerifier here decouples the middleware from the auth
// service implementation, allowing mocks during unit testing.
type SessionVerifier interface {
	VerifySession(tokenStr string) (*sec.SessionClaims, error)
}

// Authenticate extracts and verifies the session token from the
// Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>'.
//  2. If absent, the request proceeds as anonymous (guest browsing is a
//     first-class mode for the public catalogue).
//  3. If present, verify the token signature and the live session.
//  4. Inject [*sec.SessionClaims] into the request context.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifySession(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
				return
			}

			ctx := ctxutil.WithMember(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetMember(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("User not login"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireAdmin blocks requests unless the session belongs to an exco
// admin. It implies [RequireAuth].
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetMember(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("User not login"))
			return
		}
		if !claims.Admin {
			respond.Error(writer, request, apperr.Forbidden("Authorization Forbidden"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
