// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package site holds sitewide settings. The only setting with domain
// meaning is library_open, the switch an exco flips to open or close
// the lending counter; everything else is opaque key/value pairs the
// frontend reads.
package site

import (
	"context"
	"errors"
	"log/slog"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// KeyLibraryOpen gates every lending transition.
const KeyLibraryOpen = "library_open"

// Store is the persistence contract for settings.
type Store interface {
	// Get returns the value for a key, or dberr.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes a key, creating it if absent.
	Set(ctx context.Context, key, value string) error

	// All returns every setting.
	All(ctx context.Context) (map[string]string, error)
}

// Service reads and toggles settings. It implements the lending
// package's Gate.
type Service struct {
	store Store
	audit audit.Store
	log   *slog.Logger
}

func NewService(store Store, auditStore audit.Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		audit: auditStore,
		log:   log.With(slog.String("component", "site")),
	}
}

// LibraryOpen reports whether the lending counter is open. A missing
// key means closed.
func (s *Service) LibraryOpen(ctx context.Context) (bool, error) {
	v, err := s.store.Get(ctx, KeyLibraryOpen)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return false, nil
		}
		return false, dberr.Wrap(err, "read library flag")
	}
	return v == "1", nil
}

// SetLibraryOpen flips the counter flag and logs who flipped it.
func (s *Service) SetLibraryOpen(ctx context.Context, rc resource.RequestContext, open bool) error {
	value, state := "0", "closed"
	if open {
		value, state = "1", "open"
	}
	if err := s.store.Set(ctx, KeyLibraryOpen, value); err != nil {
		return dberr.Wrap(err, "write library flag")
	}
	if err := s.audit.Append(ctx, &audit.Entry{
		EntityType:  "site",
		Action:      audit.ActionEdit,
		EntityID:    1,
		ActingAdmin: rc.AdminRef(),
		Content:     "edit library_open to " + state,
	}); err != nil {
		return dberr.Wrap(err, "append settings entry")
	}
	return nil
}

// Settings returns the full key/value map for the frontend.
func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	settings, err := s.store.All(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "read settings")
	}
	if settings == nil {
		settings = map[string]string{}
	}
	return settings, nil
}
