// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"context"
	"log/slog"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/notify"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// Reservation modes: Hall reservations are delivered to a student
// hall, Counter reservations are picked up at the society counter and
// expire if unclaimed.
const (
	ModeHall    = "Hall"
	ModeCounter = "Counter"
)

// Gate answers whether the library is globally open for lending
// operations. The site package implements it over the settings store.
type Gate interface {
	LibraryOpen(ctx context.Context) (bool, error)
}

// AlwaysOpen is a Gate for tests and tools that bypass the site flag.
type AlwaysOpen struct{}

func (AlwaysOpen) LibraryOpen(context.Context) (bool, error) { return true, nil }

// Rates is a disc's derived rating tally.
type Rates struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
	// Rated reports whether the asking member already rated.
	Rated bool `json:"rated"`
}

// LendingService is the state machine moving discs through the
// lending lifecycle. Every transition re-checks its preconditions
// against the store and fails with a business-rule error instead of
// silently no-opping.
//
// Quota and duplicate checks are read-then-write with no transactional
// guard, exactly like the rest of the application: two concurrent
// requests can both pass a precondition before either writes. At
// society scale, with a counter staffed by one exco at a time, this
// has never been worth a locking scheme.
type LendingService struct {
	disks   Store
	members member.Store
	audit   audit.Store
	gate    Gate
	log     *slog.Logger

	// now is swapped by tests to pin dates.
	now func() time.Time
}

func NewLendingService(disks Store, members member.Store, auditStore audit.Store, gate Gate, log *slog.Logger) *LendingService {
	return &LendingService{
		disks:   disks,
		members: members,
		audit:   auditStore,
		gate:    gate,
		log:     log.With(slog.String("component", "lending")),
		now:     time.Now,
	}
}

// SetClock pins the service clock for tests.
func (s *LendingService) SetClock(now func() time.Time) { s.now = now }

func businessRule(reason string) error { return apperr.BusinessRule(reason) }

// Reserve puts an Available disc on hold for the acting member, either
// for hall delivery or counter pickup.
func (s *LendingService) Reserve(ctx context.Context, rc resource.RequestContext, diskID int64, mode string) (*Disk, error) {
	if mode != ModeHall && mode != ModeCounter {
		return nil, apperr.ValidationMsg("Reservation mode must be Hall or Counter")
	}
	if err := s.requireOpen(ctx); err != nil {
		return nil, err
	}
	actor, err := s.eligibleMember(ctx, rc.ActorID)
	if err != nil {
		return nil, err
	}
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	if d.AvailType != StateAvailable {
		return nil, businessRule("The disk is not available for reservation")
	}
	count, err := s.disks.CountReservedBy(ctx, actor.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "count reservations")
	}
	if count >= constants.ReserveQuota {
		return nil, businessRule("Reservation quota exceeded")
	}

	if mode == ModeCounter {
		d.AvailType = StateReservedCounter
	} else {
		d.AvailType = StateReserved
	}
	d.ReservedByID = pointer.To(actor.ID)
	d.ReservedBy = actor
	if err := s.disks.Update(ctx, d); err != nil {
		return nil, dberr.Wrap(err, "reserve disk")
	}
	if err := s.logEntry(ctx, d, audit.ActionReserve, pointer.To(actor.ITSC), rc.AdminRef(),
		"reserve disk "+d.CallNumber()); err != nil {
		return nil, err
	}
	return d, nil
}

// ClearReservation releases a reserved or on-delivery disc back to
// Available. Admins may clear any reservation; a member only their
// own.
func (s *LendingService) ClearReservation(ctx context.Context, rc resource.RequestContext, diskID int64) (*Disk, error) {
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	switch d.AvailType {
	case StateReserved, StateReservedCounter, StateOnDelivery:
	default:
		return nil, businessRule("The disk is not reserved")
	}
	if !rc.Admin && (d.ReservedByID == nil || *d.ReservedByID != rc.ActorID) {
		return nil, apperr.Forbidden("Authorization Forbidden")
	}

	subject := s.reservedITSC(d)
	d.AvailType = StateAvailable
	d.ReservedByID = nil
	d.ReservedBy = nil
	if err := s.disks.Update(ctx, d); err != nil {
		return nil, dberr.Wrap(err, "clear reservation")
	}
	if err := s.logEntry(ctx, d, audit.ActionReserve, subject, rc.AdminRef(),
		"clear reservation for disk "+d.CallNumber()); err != nil {
		return nil, err
	}
	return d, nil
}

// Deliver marks a hall reservation as on its way to the member.
func (s *LendingService) Deliver(ctx context.Context, rc resource.RequestContext, diskID int64) (*Disk, error) {
	if err := s.requireOpen(ctx); err != nil {
		return nil, err
	}
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	if d.AvailType != StateReserved {
		return nil, businessRule("The disk is not under a hall reservation")
	}
	if d.ReservedByID == nil {
		return nil, businessRule("The disk has no reserving member")
	}
	count, err := s.disks.CountHeldBy(ctx, *d.ReservedByID)
	if err != nil {
		return nil, dberr.Wrap(err, "count borrowed disks")
	}
	if count >= constants.BorrowQuota {
		return nil, businessRule("Borrow quota of the reserving member exceeded")
	}

	d.AvailType = StateOnDelivery
	if err := s.disks.Update(ctx, d); err != nil {
		return nil, dberr.Wrap(err, "deliver disk")
	}
	if err := s.logEntry(ctx, d, audit.ActionReserve, s.reservedITSC(d), rc.AdminRef(),
		"deliver disk "+d.CallNumber()); err != nil {
		return nil, err
	}
	return d, nil
}

// CheckOut hands a disc to a member and starts the loan clock.
func (s *LendingService) CheckOut(ctx context.Context, rc resource.RequestContext, diskID, memberID int64) (*Disk, error) {
	if err := s.requireOpen(ctx); err != nil {
		return nil, err
	}
	borrower, err := s.eligibleMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	switch d.AvailType {
	case StateAvailable, StateReserved, StateReservedCounter, StateOnDelivery:
	case StateBorrowed:
		return nil, businessRule("The disk has been borrowed")
	case StateVoting, StateOnshow:
		return nil, businessRule("The disk is scheduled for a show")
	default:
		return nil, businessRule("The disk is not published")
	}
	count, err := s.disks.CountHeldBy(ctx, borrower.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "count borrowed disks")
	}
	if count >= constants.BorrowQuota {
		return nil, businessRule("Borrow quota exceeded")
	}

	due := s.today().AddDate(0, 0, constants.LoanPeriodDays)
	d.AvailType = StateBorrowed
	d.HoldByID = pointer.To(borrower.ID)
	d.HoldBy = borrower
	d.ReservedByID = nil
	d.ReservedBy = nil
	d.DueAt = pointer.To(due)
	d.BorrowCount++
	if err := s.disks.Update(ctx, d); err != nil {
		return nil, dberr.Wrap(err, "check out disk")
	}
	if err := s.logEntry(ctx, d, audit.ActionBorrow, pointer.To(borrower.ITSC), rc.AdminRef(),
		"borrow disk "+d.CallNumber()); err != nil {
		return nil, err
	}
	return d, nil
}

// Renew extends a loan once. The once-per-loan rule is recovered from
// the audit log: the holder's most recent borrow-action entry must be
// the borrow itself, not an earlier renewal.
func (s *LendingService) Renew(ctx context.Context, rc resource.RequestContext, diskID int64) (*Disk, error) {
	if err := s.requireOpen(ctx); err != nil {
		return nil, err
	}
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	if d.AvailType != StateBorrowed || d.HoldByID == nil {
		return nil, businessRule("The disk is not borrowed")
	}
	if !rc.Admin && *d.HoldByID != rc.ActorID {
		return nil, apperr.Forbidden("Authorization Forbidden")
	}
	today := s.today()
	if d.DueAt == nil || d.DueAt.Before(today) {
		return nil, businessRule("The disk is overdue and can no longer be renewed")
	}
	renewed, err := s.loanAlreadyRenewed(ctx, d)
	if err != nil {
		return nil, err
	}
	if renewed {
		return nil, businessRule("The disk has been renewed for this loan")
	}

	d.DueAt = pointer.To(today.AddDate(0, 0, constants.LoanPeriodDays))
	if err := s.disks.Update(ctx, d); err != nil {
		return nil, dberr.Wrap(err, "renew disk")
	}
	if err := s.logEntry(ctx, d, audit.ActionBorrow, s.holderITSC(d), rc.AdminRef(),
		"renew disk "+d.CallNumber()); err != nil {
		return nil, err
	}
	return d, nil
}

// CheckIn takes a disc back at the counter.
func (s *LendingService) CheckIn(ctx context.Context, rc resource.RequestContext, diskID int64) (*Disk, error) {
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	if d.AvailType != StateBorrowed {
		return nil, businessRule("The disk is not borrowed")
	}

	subject := s.holderITSC(d)
	d.AvailType = StateAvailable
	d.HoldByID = nil
	d.HoldBy = nil
	d.DueAt = nil
	if err := s.disks.Update(ctx, d); err != nil {
		return nil, dberr.Wrap(err, "check in disk")
	}
	if err := s.logEntry(ctx, d, audit.ActionBorrow, subject, rc.AdminRef(),
		"return disk "+d.CallNumber()); err != nil {
		return nil, err
	}
	return d, nil
}

// AddRate records the acting member's up or down vote on a disc. Each
// member rates a disc at most once, ever; the check scans the disc's
// rate entries for the member.
func (s *LendingService) AddRate(ctx context.Context, rc resource.RequestContext, diskID int64, up bool) (*Rates, error) {
	if err := s.requireOpen(ctx); err != nil {
		return nil, err
	}
	actor, err := s.members.Get(ctx, rc.ActorID)
	if err != nil {
		if err == dberr.ErrNotFound {
			return nil, apperr.Unauthorized("User not login")
		}
		return nil, dberr.Wrap(err, "load member")
	}
	d, err := s.fetch(ctx, diskID)
	if err != nil {
		return nil, err
	}
	if d.AvailType == StateDraft {
		return nil, businessRule("The disk is not published")
	}
	rated, err := s.memberRated(ctx, d.ID, actor.ITSC)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, businessRule("You have rated this disk")
	}

	verb := "down"
	if up {
		verb = "up"
	}
	if err := s.logEntry(ctx, d, audit.ActionRate, pointer.To(actor.ITSC), rc.AdminRef(),
		verb+" by "+actor.ITSC); err != nil {
		return nil, err
	}
	return s.GetRate(ctx, d.ID, actor.ITSC)
}

// GetRate tallies a disc's up and down votes from the audit log. The
// log is the only store of rating history; there is no counter column.
func (s *LendingService) GetRate(ctx context.Context, diskID int64, askerITSC string) (*Rates, error) {
	entries, err := s.audit.History(ctx, "disk", diskID, audit.ActionRate)
	if err != nil {
		return nil, dberr.Wrap(err, "load rate history")
	}
	rates := &Rates{}
	for _, e := range entries {
		switch e.Category() {
		case "up":
			rates.Ups++
		case "down":
			rates.Downs++
		}
		if askerITSC != "" && e.AffectedUser != nil && *e.AffectedUser == askerITSC {
			rates.Rated = true
		}
	}
	return rates, nil
}

// RecomputeRanks refreshes every disc's popularity score from its
// rating tally. Run as a scheduled job, never on the request path.
func (s *LendingService) RecomputeRanks(ctx context.Context) (int, error) {
	discs, err := s.disks.All(ctx)
	if err != nil {
		return 0, dberr.Wrap(err, "load disks")
	}
	updated := 0
	for _, d := range discs {
		rates, err := s.GetRate(ctx, d.ID, "")
		if err != nil {
			return updated, err
		}
		rank := Rank(rates.Ups, rates.Downs)
		if rank == d.Rank {
			continue
		}
		d.Rank = rank
		if err := s.disks.Update(ctx, d); err != nil {
			return updated, dberr.Wrap(err, "save rank")
		}
		updated++
	}
	s.log.InfoContext(ctx, "ranks recomputed", slog.Int("updated", updated))
	return updated, nil
}

// ExpireCounterReservations clears counter reservations left unclaimed
// past the pickup window, per the latest reserve entry's timestamp.
func (s *LendingService) ExpireCounterReservations(ctx context.Context) (int, error) {
	discs, err := s.disks.InStates(ctx, StateReservedCounter)
	if err != nil {
		return 0, dberr.Wrap(err, "load counter reservations")
	}
	cutoff := s.today().AddDate(0, 0, -constants.CounterReservationTTLDays)
	cleared := 0
	for _, d := range discs {
		reservedAt, ok, err := s.latestReserveTime(ctx, d)
		if err != nil {
			return cleared, err
		}
		if ok && reservedAt.After(cutoff) {
			continue
		}
		subject := s.reservedITSC(d)
		d.AvailType = StateAvailable
		d.ReservedByID = nil
		d.ReservedBy = nil
		if err := s.disks.Update(ctx, d); err != nil {
			return cleared, dberr.Wrap(err, "clear expired reservation")
		}
		if err := s.logEntry(ctx, d, audit.ActionReserve, subject, nil,
			"clear reservation for disk "+d.CallNumber()+"(automatically)"); err != nil {
			return cleared, err
		}
		cleared++
	}
	s.log.InfoContext(ctx, "counter reservations expired", slog.Int("cleared", cleared))
	return cleared, nil
}

// SendLoanReminders mails due-tomorrow notices and, every few days,
// overdue notices.
func (s *LendingService) SendLoanReminders(ctx context.Context, mailer notify.Mailer) (int, error) {
	today := s.today()
	sent := 0

	nearDue, err := s.disks.DueOn(ctx, today.AddDate(0, 0, 1))
	if err != nil {
		return 0, dberr.Wrap(err, "load near-due disks")
	}
	for _, d := range nearDue {
		if d.HoldBy == nil {
			continue
		}
		renewed, err := s.loanAlreadyRenewed(ctx, d)
		if err != nil {
			return sent, err
		}
		notice := notify.LoanNotice{
			Kind:       notify.NoticeDueSoon,
			MemberITSC: d.HoldBy.ITSC,
			CallNumber: d.CallNumber(),
			Title:      d.TitleEn,
			DueAt:      *d.DueAt,
		}
		if renewed {
			notice.Kind = notify.NoticeDueSoonRenewed
		}
		if err := mailer.SendLoanNotice(ctx, notice); err != nil {
			return sent, err
		}
		sent++
	}

	overdue, err := s.disks.Overdue(ctx, today)
	if err != nil {
		return sent, dberr.Wrap(err, "load overdue disks")
	}
	for _, d := range overdue {
		if d.HoldBy == nil || d.DueAt == nil {
			continue
		}
		// Overdue notices repeat every few days, not daily.
		passed := int(today.Sub(*d.DueAt).Hours() / 24)
		if passed%constants.OverdueNoticeIntervalDays != 1 {
			continue
		}
		if err := mailer.SendLoanNotice(ctx, notify.LoanNotice{
			Kind:       notify.NoticeOverdue,
			MemberITSC: d.HoldBy.ITSC,
			CallNumber: d.CallNumber(),
			Title:      d.TitleEn,
			DueAt:      *d.DueAt,
		}); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// loanAlreadyRenewed reports whether the holder's current loan has a
// renewal: the most recent borrow-action entry for this holder is a
// "renew" rather than the "borrow" that opened the loan.
func (s *LendingService) loanAlreadyRenewed(ctx context.Context, d *Disk) (bool, error) {
	holder := s.holderITSC(d)
	if holder == nil {
		return false, nil
	}
	entries, err := s.audit.History(ctx, "disk", d.ID, audit.ActionBorrow)
	if err != nil {
		return false, dberr.Wrap(err, "load borrow history")
	}
	for _, e := range entries {
		if e.AffectedUser == nil || *e.AffectedUser != *holder {
			continue
		}
		return e.Category() == "renew", nil
	}
	return false, nil
}

func (s *LendingService) memberRated(ctx context.Context, diskID int64, itsc string) (bool, error) {
	entries, err := s.audit.History(ctx, "disk", diskID, audit.ActionRate)
	if err != nil {
		return false, dberr.Wrap(err, "load rate history")
	}
	for _, e := range entries {
		if e.AffectedUser != nil && *e.AffectedUser == itsc {
			return true, nil
		}
	}
	return false, nil
}

func (s *LendingService) latestReserveTime(ctx context.Context, d *Disk) (time.Time, bool, error) {
	entries, err := s.audit.History(ctx, "disk", d.ID, audit.ActionReserve)
	if err != nil {
		return time.Time{}, false, dberr.Wrap(err, "load reserve history")
	}
	for _, e := range entries {
		if e.Category() == "reserve" {
			return e.CreatedAt, true, nil
		}
	}
	return time.Time{}, false, nil
}

// eligibleMember loads a member and checks lending eligibility.
func (s *LendingService) eligibleMember(ctx context.Context, memberID int64) (*member.Member, error) {
	if memberID == 0 {
		return nil, apperr.Unauthorized("User not login")
	}
	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		if err == dberr.ErrNotFound {
			return nil, businessRule("Not a registered member")
		}
		return nil, dberr.Wrap(err, "load member")
	}
	if !m.Active() {
		return nil, businessRule("Membership expired")
	}
	if m.Penalized {
		return nil, businessRule("Borrowing right suspended")
	}
	return m, nil
}

func (s *LendingService) requireOpen(ctx context.Context) error {
	open, err := s.gate.LibraryOpen(ctx)
	if err != nil {
		return dberr.Wrap(err, "check library flag")
	}
	if !open {
		return businessRule("The library is closed")
	}
	return nil
}

func (s *LendingService) fetch(ctx context.Context, diskID int64) (*Disk, error) {
	d, err := s.disks.Get(ctx, diskID)
	if err != nil {
		if err == dberr.ErrNotFound {
			return nil, apperr.NotFound("Object")
		}
		return nil, dberr.Wrap(err, "get disk")
	}
	return d, nil
}

// today truncates the clock to a date, the granularity the loan
// lifecycle works at.
func (s *LendingService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *LendingService) holderITSC(d *Disk) *string {
	if d.HoldBy != nil {
		return pointer.To(d.HoldBy.ITSC)
	}
	return nil
}

func (s *LendingService) reservedITSC(d *Disk) *string {
	if d.ReservedBy != nil {
		return pointer.To(d.ReservedBy.ITSC)
	}
	return nil
}

func (s *LendingService) logEntry(ctx context.Context, d *Disk, action string, affected, admin *string, content string) error {
	err := s.audit.Append(ctx, &audit.Entry{
		EntityType:   "disk",
		Action:       action,
		EntityID:     d.ID,
		AffectedUser: affected,
		ActingAdmin:  admin,
		Content:      content,
	})
	if err != nil {
		return dberr.Wrap(err, "append lending audit entry")
	}
	return nil
}
