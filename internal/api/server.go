// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

/*
Package api wires the HTTP router, middleware chain, and all domain
handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost presentation layer boundary.
  - It acts as the central composition root for the HTTP transport
    framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server
    primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/johnmave126/filmsoc-website-backend/internal/auth"
	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/config"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/middleware"
	"github.com/johnmave126/filmsoc-website-backend/internal/show"
	"github.com/johnmave126/filmsoc-website-backend/internal/site"
	"github.com/johnmave126/filmsoc-website-backend/internal/ticket"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server]. It is constructed
// once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// New domains add a field here; no other change to server.go is
// required beyond the mount.
type Handlers struct {
	// Liveness is the /health handler.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler.
	Readiness http.HandlerFunc

	// Auth handles login and logout.
	Auth *auth.Handler

	// Member serves the member registry.
	Member *member.Handler

	// Disk serves the catalogue plus lending sub-actions.
	Disk *disk.Handler

	// Review serves disc reviews.
	Review http.Handler

	// Show serves the regular film show plus voting sub-actions.
	Show *show.Handler

	// Ticket serves preview show tickets plus applications.
	Ticket *ticket.Handler

	// Log serves the exco audit trail.
	Log *audit.Handler

	// Site serves sitewide settings.
	Site *site.Handler

	// Content holds the editorial resources keyed by mount path
	// (news, publication, document, sponsor, onesentence, file).
	Content map[string]http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain
// and registers all route groups.
func NewServer(appCtx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.SessionVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// Global middleware in execution order.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(appCtx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/user", h.Member.Routes())
		api.Mount("/disk", h.Disk.Routes())
		api.Mount("/disk_review", h.Review)
		api.Mount("/rfs", h.Show.Routes())
		api.Mount("/ticket", h.Ticket.Routes())
		api.Mount("/log", h.Log.Routes())
		api.Mount("/site", h.Site.Routes())
		for path, handler := range h.Content {
			api.Mount("/"+path, handler)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is
// closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
