// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package auth establishes and revokes member sessions.
//
// Identity comes from the university CAS server through the
// [CASVerifier] collaborator; this package never sees passwords. A
// successful login mints a JWT whose sid is checked against the live
// session store on every request, so logout revokes immediately even
// though the token itself is stateless.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/sec"
)

// CASVerifier validates a CAS service ticket and returns the ITSC
// account it belongs to.
type CASVerifier interface {
	ValidateTicket(ctx context.Context, ticket, serviceURL string) (string, error)
}

// SessionStore tracks live session ids.
type SessionStore interface {
	Put(ctx context.Context, sid, itsc string, ttl time.Duration) error
	Live(ctx context.Context, sid string) (bool, error)
	Delete(ctx context.Context, sid string) error
}

// Service performs login and logout and verifies bearer tokens for the
// middleware.
type Service struct {
	members  member.Store
	cas      CASVerifier
	sessions SessionStore
	tokens   *sec.TokenService
	audit    audit.Store
	log      *slog.Logger
}

func NewService(members member.Store, cas CASVerifier, sessions SessionStore, tokens *sec.TokenService, auditStore audit.Store, log *slog.Logger) *Service {
	return &Service{
		members:  members,
		cas:      cas,
		sessions: sessions,
		tokens:   tokens,
		audit:    auditStore,
		log:      log.With(slog.String("component", "auth")),
	}
}

// Login exchanges a CAS ticket for a session token. Only registered
// members may log in; CAS authenticates every student on campus.
func (s *Service) Login(ctx context.Context, ticket, serviceURL string) (string, *member.Member, error) {
	itsc, err := s.cas.ValidateTicket(ctx, ticket, serviceURL)
	if err != nil {
		return "", nil, apperr.Unauthorized("CAS authentication failed")
	}

	m, err := s.members.FindByITSC(ctx, itsc)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return "", nil, apperr.Forbidden("Not a registered member")
		}
		return "", nil, dberr.Wrap(err, "look up member")
	}

	if err := s.members.RecordLogin(ctx, m.ID, time.Now()); err != nil {
		return "", nil, dberr.Wrap(err, "record login")
	}

	sid, err := uuid.NewV7()
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Put(ctx, sid.String(), m.ITSC, constants.SessionTTL); err != nil {
		return "", nil, dberr.Wrap(err, "store session")
	}

	token, err := s.tokens.Sign(sec.SessionClaims{
		SessionID: sid.String(),
		MemberID:  m.ID,
		ITSC:      m.ITSC,
		Admin:     m.Admin,
	}, constants.SessionTTL)
	if err != nil {
		return "", nil, err
	}

	s.log.InfoContext(ctx, "member logged in",
		slog.String("itsc", m.ITSC),
		slog.Bool("admin", m.Admin))
	return token, m, nil
}

// Logout revokes the session behind the presented claims.
func (s *Service) Logout(ctx context.Context, claims *sec.SessionClaims) error {
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return dberr.Wrap(err, "revoke session")
	}
	s.log.InfoContext(ctx, "member logged out", slog.String("itsc", claims.ITSC))
	return nil
}

// VerifySession implements middleware.SessionVerifier: signature check
// first, then the sid must still be live in the session store.
func (s *Service) VerifySession(tokenStr string) (*sec.SessionClaims, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.SessionCheckTimeout)
	defer cancel()

	live, err := s.sessions.Live(ctx, claims.SessionID)
	if err != nil {
		return nil, dberr.Wrap(err, "check session")
	}
	if !live {
		return nil, apperr.Unauthorized("Session revoked")
	}
	return claims, nil
}
