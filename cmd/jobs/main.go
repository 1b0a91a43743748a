// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Command jobs runs the out-of-band batch work: rank recomputation,
// membership expiry, and loan reminders. Each job is a subcommand so
// cron entries stay one line each.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/config"
	pgstore "github.com/johnmave126/filmsoc-website-backend/internal/platform/postgres"
	"github.com/johnmave126/filmsoc-website-backend/internal/show"
	"github.com/johnmave126/filmsoc-website-backend/internal/site"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jobs",
		Short:         "Film society batch jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRankCommand())
	root.AddCommand(newExpireCommand())
	root.AddCommand(newRemindCommand())
	return root
}

// jobContext carries the shared wiring every job needs.
type jobContext struct {
	cfg     *config.Config
	log     *slog.Logger
	pool    *pgxpool.Pool
	audit   audit.Store
	members *member.PostgresStore
	disks   *disk.PostgresStore
	shows   *show.PostgresStore
	site    *site.Service
	lending *disk.LendingService
}

// setup connects the shared dependencies. Jobs run from cron with no
// supervisor, so failures exit non-zero and say why.
func setup(ctx context.Context) (*jobContext, func(), error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", "filmsoc-jobs"))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(connectCtx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}

	auditStore := audit.NewPostgresStore(pool)
	members := member.NewPostgresStore(pool)
	disks := disk.NewPostgresStore(pool)
	shows := show.NewPostgresStore(pool, disks)
	siteService := site.NewService(site.NewPostgresStore(pool), auditStore, log)
	lending := disk.NewLendingService(disks, members, auditStore, siteService, log)

	jc := &jobContext{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		audit:   auditStore,
		members: members,
		disks:   disks,
		shows:   shows,
		site:    siteService,
		lending: lending,
	}
	return jc, pool.Close, nil
}
