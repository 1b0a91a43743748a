// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Command api is the entry point for the film society backend API.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Register resource descriptors and wire handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor
// injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/api"
	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/auth"
	"github.com/johnmave126/filmsoc-website-backend/internal/content"
	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/notify"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/config"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/migration"
	pgstore "github.com/johnmave126/filmsoc-website-backend/internal/platform/postgres"
	redisstore "github.com/johnmave126/filmsoc-website-backend/internal/platform/redis"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/internal/show"
	"github.com/johnmave126/filmsoc-website-backend/internal/site"
	"github.com/johnmave126/filmsoc-website-backend/internal/ticket"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", "filmsoc"))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "filmsoc"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. A 30s deadline catches misconfiguration
	// quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Sessions ───────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.SessionIssuer)
	must(log, err, "initialize token service")

	// ── 7. Stores ─────────────────────────────────────────────────────────
	auditStore := audit.NewPostgresStore(pool)
	dirty := audit.NewDirtyFeed(auditStore)
	memberStore := member.NewPostgresStore(pool)
	diskStore := disk.NewPostgresStore(pool)
	reviewStore := disk.NewReviewPostgresStore(pool)
	showStore := show.NewPostgresStore(pool, diskStore)
	ticketStore := ticket.NewPostgresStore(pool)
	siteStore := site.NewPostgresStore(pool)
	newsStore := content.NewNewsPostgresStore(pool)
	docStore := content.NewDocumentPostgresStore(pool)
	pubStore := content.NewPublicationPostgresStore(pool)
	sponsorStore := content.NewSponsorPostgresStore(pool)
	quoteStore := content.NewOneSentencePostgresStore(pool)
	fileStore := content.NewFilePostgresStore(pool)

	// ── 8. Descriptors ────────────────────────────────────────────────────
	// Registering everything up front fails fast on a bad declaration.
	memberDesc := member.NewDescriptor()
	diskDesc := disk.NewDescriptor()
	reviewDesc := disk.NewReviewDescriptor()
	showDesc := show.NewDescriptor()
	ticketDesc := ticket.NewDescriptor()
	newsDesc := content.NewNewsDescriptor()
	docDesc := content.NewDocumentDescriptor()
	pubDesc := content.NewPublicationDescriptor()
	sponsorDesc := content.NewSponsorDescriptor()
	quoteDesc := content.NewOneSentenceDescriptor()
	fileDesc := content.NewFileDescriptor()

	registry := resource.NewRegistry()
	for _, desc := range []*resource.Descriptor{
		memberDesc, diskDesc, reviewDesc, showDesc, ticketDesc,
		newsDesc, docDesc, pubDesc, sponsorDesc, quoteDesc, fileDesc,
	} {
		registry.MustRegister(desc)
	}

	// ── 9. Domain Services ────────────────────────────────────────────────
	mailer := &notify.LogMailer{Log: log}
	siteService := site.NewService(siteStore, auditStore, log)
	lending := disk.NewLendingService(diskStore, memberStore, auditStore, siteService, log)
	voting := show.NewVotingService(showStore, memberStore, auditStore, log)
	applications := ticket.NewApplyService(ticketStore, memberStore, auditStore, mailer, log)

	cas := auth.NewCASClient(cfg.CASServer)
	sessions := auth.NewRedisSessionStore(rdb)
	authService := auth.NewService(memberStore, cas, sessions, tokens, auditStore, log)

	// ── 10. Engines ───────────────────────────────────────────────────────
	memberEngine := resource.NewEngine[member.Member](memberDesc, memberStore, member.Codec{},
		member.NewHooks(memberStore, diskStore.CountActiveFor), auditStore, log)
	diskEngine := resource.NewEngine[disk.Disk](diskDesc, diskStore, disk.Codec{},
		disk.NewHooks(showStore.ReferencesDisk), auditStore, log)
	reviewEngine := resource.NewEngine[disk.Review](reviewDesc, reviewStore, disk.ReviewCodec{},
		disk.NewReviewHooks(diskStore, memberStore), auditStore, log)
	showEngine := resource.NewEngine[show.Show](showDesc, showStore, show.Codec{},
		show.NewHooks(showStore, diskStore), auditStore, log)
	ticketEngine := resource.NewEngine[ticket.Ticket](ticketDesc, ticketStore, ticket.Codec{},
		ticket.NewHooks(), auditStore, log)
	newsEngine := resource.NewEngine[content.News](newsDesc, newsStore, content.NewsCodec{},
		content.NewsHooks{}, auditStore, log)
	docEngine := resource.NewEngine[content.Document](docDesc, docStore, content.DocumentCodec{},
		content.DocumentHooks{}, auditStore, log)
	pubEngine := resource.NewEngine[content.Publication](pubDesc, pubStore, content.PublicationCodec{},
		content.PublicationHooks{}, auditStore, log)
	sponsorEngine := resource.NewEngine[content.Sponsor](sponsorDesc, sponsorStore, content.SponsorCodec{},
		content.SponsorHooks{}, auditStore, log)
	quoteEngine := resource.NewEngine[content.OneSentence](quoteDesc, quoteStore, content.OneSentenceCodec{},
		content.OneSentenceHooks{}, auditStore, log)
	fileEngine := resource.NewEngine[content.File](fileDesc, fileStore, content.FileCodec{},
		content.FileHooks{}, auditStore, log)

	// ── 11. Handlers ──────────────────────────────────────────────────────
	memberOrAdmin := resource.Access{
		Mutate: func(rc resource.RequestContext) bool { return !rc.Anonymous() },
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Member:    member.NewHandler(memberEngine, dirty, memberStore),
		Disk:      disk.NewHandler(diskEngine, dirty, lending),
		Review:    resource.NewHandler(reviewEngine, dirty, memberOrAdmin).Routes(),
		Show:      show.NewHandler(showEngine, dirty, voting),
		Ticket:    ticket.NewHandler(ticketEngine, dirty, applications),
		Log:       audit.NewHandler(auditStore),
		Site:      site.NewHandler(siteService),
		Content: map[string]http.Handler{
			"news":        resource.NewHandler(newsEngine, dirty, resource.Access{}).Routes(),
			"document":    resource.NewHandler(docEngine, dirty, resource.Access{}).Routes(),
			"publication": resource.NewHandler(pubEngine, dirty, resource.Access{}).Routes(),
			"sponsor":     resource.NewHandler(sponsorEngine, dirty, resource.Access{}).Routes(),
			"onesentence": resource.NewHandler(quoteEngine, dirty, resource.Access{}).Routes(),
			"file":        resource.NewHandler(fileEngine, dirty, resource.Access{}).Routes(),
		},
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, authService, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err
// is non-nil. It is intentionally limited to startup wiring.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
