// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package ticket

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/notify"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

type recordingMailer struct {
	tickets []notify.TicketNotice
	fail    bool
}

func (m *recordingMailer) SendLoanNotice(ctx context.Context, n notify.LoanNotice) error {
	return nil
}

func (m *recordingMailer) SendTicketNotice(ctx context.Context, n notify.TicketNotice) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.tickets = append(m.tickets, n)
	return nil
}

type ticketFixture struct {
	engine  *resource.Engine[Ticket]
	service *ApplyService
	tickets *MemoryStore
	members *member.MemoryStore
	audit   *audit.MemoryStore
	mailer  *recordingMailer
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		tickets: NewMemoryStore(),
		members: member.NewMemoryStore(),
		audit:   audit.NewMemoryStore(),
		mailer:  &recordingMailer{},
	}
	f.engine = resource.NewEngine[Ticket](
		NewDescriptor(), f.tickets, Codec{}, NewHooks(), f.audit, slog.Default())
	f.service = NewApplyService(f.tickets, f.members, f.audit, f.mailer, slog.Default())
	return f
}

func (f *ticketFixture) addMember(t *testing.T, id int64, itsc string) {
	t.Helper()
	require.NoError(t, f.members.Insert(context.Background(),
		&member.Member{ID: id, ITSC: itsc, MemberType: member.TypeFull}))
}

func (f *ticketFixture) addTicket(t *testing.T, state string) int64 {
	t.Helper()
	tk := &Ticket{ID: 0, State: state, TitleEn: "Preview: Decalogue", TitleCh: "十誡"}
	require.NoError(t, f.tickets.Insert(context.Background(), tk))
	return tk.ID
}

func adminCtx() resource.RequestContext {
	return resource.RequestContext{ActorID: 99, ActorITSC: "exco", Admin: true, Action: "create"}
}

func memberCtx(id int64, itsc string) resource.RequestContext {
	return resource.RequestContext{ActorID: id, ActorITSC: itsc}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)

	t.Run("missing form fields aggregate", func(t *testing.T) {
		_, err := f.engine.Create(ctx, adminCtx(), resource.Record{
			"title_en": "Preview: Decalogue",
		})
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.ErrnoValidation, appErr.Errno)
		assert.Contains(t, appErr.Message, "Chinese Title missing")
		assert.Contains(t, appErr.Message, "Apply Deadline missing")
	})

	t.Run("unknown state refused", func(t *testing.T) {
		_, err := f.engine.Create(ctx, adminCtx(), resource.Record{
			"title_en":       "Preview: Decalogue",
			"title_ch":       "十誡",
			"apply_deadline": "2026-09-20",
			"state":          "Running",
		})
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Contains(t, appErr.Message, "Invalid Ticket State")
	})

	t.Run("complete form accepted", func(t *testing.T) {
		record, err := f.engine.Create(ctx, adminCtx(), resource.Record{
			"title_en":       "Preview: Decalogue",
			"title_ch":       "十誡",
			"apply_deadline": "2026-09-20",
			"state":          StateOpen,
		})
		require.NoError(t, err)
		assert.Equal(t, StateOpen, record["state"])
		assert.Equal(t, "2026-09-20", record["apply_deadline"])
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("open ticket, one application each", func(t *testing.T) {
		f := newTicketFixture(t)
		id := f.addTicket(t, StateOpen)
		f.addMember(t, 1, "chanwk")
		f.addMember(t, 2, "leungty")

		_, err := f.service.Apply(ctx, memberCtx(1, "chanwk"), id)
		require.NoError(t, err)
		_, err = f.service.Apply(ctx, memberCtx(2, "leungty"), id)
		require.NoError(t, err)

		_, err = f.service.Apply(ctx, memberCtx(1, "chanwk"), id)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))

		itscs, err := f.service.Applicants(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"chanwk", "leungty"}, itscs)

		require.Len(t, f.mailer.tickets, 2)
		assert.Equal(t, "chanwk", f.mailer.tickets[0].MemberITSC)
		assert.Equal(t, "Preview: Decalogue", f.mailer.tickets[0].ShowTitle)
	})

	t.Run("closed ticket refuses", func(t *testing.T) {
		f := newTicketFixture(t)
		id := f.addTicket(t, StateClosed)
		f.addMember(t, 1, "chanwk")

		_, err := f.service.Apply(ctx, memberCtx(1, "chanwk"), id)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	t.Run("expired member refuses", func(t *testing.T) {
		f := newTicketFixture(t)
		id := f.addTicket(t, StateOpen)
		require.NoError(t, f.members.Insert(ctx,
			&member.Member{ID: 1, ITSC: "chanwk", MemberType: member.TypeExpired}))

		_, err := f.service.Apply(ctx, memberCtx(1, "chanwk"), id)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	t.Run("anonymous refused", func(t *testing.T) {
		f := newTicketFixture(t)
		id := f.addTicket(t, StateOpen)

		_, err := f.service.Apply(ctx, resource.RequestContext{}, id)
		require.Error(t, err)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.ErrnoUnauthorized, appErr.Errno)
	})

	t.Run("mail failure keeps the application", func(t *testing.T) {
		f := newTicketFixture(t)
		f.mailer.fail = true
		id := f.addTicket(t, StateOpen)
		f.addMember(t, 1, "chanwk")

		_, err := f.service.Apply(ctx, memberCtx(1, "chanwk"), id)
		require.NoError(t, err)

		itscs, err := f.service.Applicants(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"chanwk"}, itscs)
	})
}
