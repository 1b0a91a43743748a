// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package notify defines the outbound notification collaborators.
//
// Actual delivery (SMTP, the Sympa mailing list) lives outside this
// service; the domain packages talk to these narrow interfaces and the
// deployment wires real senders in. The logging implementations below
// serve development and the scheduled jobs' dry-run mode.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Loan notice kinds.
const (
	NoticeDueSoon        = "due_soon"
	NoticeDueSoonRenewed = "due_soon_renewed"
	NoticeOverdue        = "overdue"
)

// LoanNotice is one lending reminder addressed to a member.
type LoanNotice struct {
	Kind       string
	MemberITSC string
	CallNumber string
	Title      string
	DueAt      time.Time
}

// TicketNotice confirms a preview show ticket application.
type TicketNotice struct {
	MemberITSC string
	ShowTitle  string
}

// Mailer sends member-facing notices.
type Mailer interface {
	SendLoanNotice(ctx context.Context, notice LoanNotice) error
	SendTicketNotice(ctx context.Context, notice TicketNotice) error
}

// MailingList syncs the set of active member ITSCs to the society's
// announcement list.
type MailingList interface {
	Replace(ctx context.Context, itscs []string) error
}

// LogMailer writes notices to the structured log instead of sending
// mail.
type LogMailer struct {
	Log *slog.Logger
}

func (m *LogMailer) SendLoanNotice(ctx context.Context, notice LoanNotice) error {
	m.Log.InfoContext(ctx, "loan notice",
		slog.String("kind", notice.Kind),
		slog.String("member", notice.MemberITSC),
		slog.String("disk", notice.CallNumber),
		slog.Time("due_at", notice.DueAt),
	)
	return nil
}

func (m *LogMailer) SendTicketNotice(ctx context.Context, notice TicketNotice) error {
	m.Log.InfoContext(ctx, "ticket notice",
		slog.String("member", notice.MemberITSC),
		slog.String("show", notice.ShowTitle),
	)
	return nil
}

// LogMailingList records list replacements in the structured log.
type LogMailingList struct {
	Log *slog.Logger
}

func (l *LogMailingList) Replace(ctx context.Context, itscs []string) error {
	l.Log.InfoContext(ctx, "mailing list replaced", slog.Int("members", len(itscs)))
	return nil
}
