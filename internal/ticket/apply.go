// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package ticket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/notify"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// ApplyService records member applications for an open ticket.
// Applications live only in the audit log; whoever runs the draw reads
// them back from the log listing.
type ApplyService struct {
	tickets Store
	members member.Store
	audit   audit.Store
	mailer  notify.Mailer
	log     *slog.Logger
}

func NewApplyService(tickets Store, members member.Store, auditStore audit.Store, mailer notify.Mailer, log *slog.Logger) *ApplyService {
	return &ApplyService{
		tickets: tickets,
		members: members,
		audit:   auditStore,
		mailer:  mailer,
		log:     log.With(slog.String("component", "ticket")),
	}
}

// Apply registers the acting member for one ticket draw. One
// application per member per ticket; a confirmation mail goes out on
// success but a mail failure never rolls the application back.
func (s *ApplyService) Apply(ctx context.Context, rc resource.RequestContext, ticketID int64) (*Ticket, error) {
	if rc.ActorID == 0 {
		return nil, apperr.Unauthorized("User not login")
	}
	m, err := s.members.Get(ctx, rc.ActorID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.BusinessRule("Not a registered member")
		}
		return nil, dberr.Wrap(err, "load applicant")
	}
	if !m.Active() {
		return nil, apperr.BusinessRule("Membership expired")
	}

	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Object")
		}
		return nil, dberr.Wrap(err, "load ticket")
	}
	if t.State != StateOpen {
		return nil, apperr.BusinessRule("The ticket is not open for application")
	}

	entries, err := s.audit.History(ctx, "ticket", t.ID, audit.ActionApply)
	if err != nil {
		return nil, dberr.Wrap(err, "load application history")
	}
	for _, e := range entries {
		if e.AffectedUser != nil && *e.AffectedUser == m.ITSC {
			return nil, apperr.BusinessRule("You have applied for this ticket")
		}
	}

	if err := s.audit.Append(ctx, &audit.Entry{
		EntityType:   "ticket",
		Action:       audit.ActionApply,
		EntityID:     t.ID,
		AffectedUser: pointer.To(m.ITSC),
		ActingAdmin:  rc.AdminRef(),
		Content:      "apply " + m.ITSC,
	}); err != nil {
		return nil, dberr.Wrap(err, "append application entry")
	}

	if err := s.mailer.SendTicketNotice(ctx, notify.TicketNotice{
		MemberITSC: m.ITSC,
		ShowTitle:  t.TitleEn,
	}); err != nil {
		s.log.ErrorContext(ctx, "ticket notice failed",
			slog.Int64("ticket", t.ID),
			slog.String("member", m.ITSC),
			slog.Any("error", err))
	}
	return t, nil
}

// Applicants returns the ITSC accounts applied to one ticket, oldest
// first, for the draw.
func (s *ApplyService) Applicants(ctx context.Context, ticketID int64) ([]string, error) {
	entries, err := s.audit.History(ctx, "ticket", ticketID, audit.ActionApply)
	if err != nil {
		return nil, dberr.Wrap(err, "load application history")
	}
	itscs := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].AffectedUser != nil {
			itscs = append(itscs, *entries[i].AffectedUser)
		}
	}
	return itscs, nil
}
