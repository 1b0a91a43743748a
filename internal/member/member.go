// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package member implements the society's member registry.
//
// Membership identity is the university ITSC account: the CAS server
// authenticates it, this package records who holds a membership, of
// what type, and until when. Quota bookkeeping for lending and voting
// lives with the disk and show packages; they reference members through
// the summary projection this package exports.
package member

import (
	"context"
	"regexp"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// Membership types sold at the counter. Expired is a bookkeeping state
// the expiry job writes, never sold.
const (
	TypeFull      = "Full"
	TypeOneSem    = "OneSem"
	TypeOneYear   = "OneYear"
	TypeTwoYear   = "TwoYear"
	TypeThreeYear = "ThreeYear"
	TypeHonour    = "Honour"
	TypeAssoc     = "Assoc"
	TypeExpired   = "Expired"
)

var memberTypes = []string{
	TypeFull, TypeOneSem, TypeOneYear, TypeTwoYear,
	TypeThreeYear, TypeHonour, TypeAssoc, TypeExpired,
}

var (
	studentIDPattern    = regexp.MustCompile(`^\d{8}$`)
	universityIDPattern = regexp.MustCompile(`^\d{9}$`)
	mobilePattern       = regexp.MustCompile(`^\d{8}$`)
)

// Member is one registered society member.
type Member struct {
	ID           int64
	ITSC         string
	StudentID    string
	UniversityID string
	Mobile       string
	FullName     string
	PenName      string
	MemberType   string
	Penalized    bool
	Admin        bool
	JoinAt       time.Time
	ExpireAt     *time.Time
	LastLogin    *time.Time
	ThisLogin    *time.Time
	LoginCount   int
	RFSCount     int
}

// Active reports whether the membership currently confers borrowing
// and voting rights.
func (m *Member) Active() bool {
	return m.MemberType != TypeExpired
}

// Store persists members. It extends the generic resource store with
// the lookups login and the jobs need.
type Store interface {
	resource.Store[Member]

	// FindByITSC looks a member up by ITSC handle, dberr.ErrNotFound
	// when absent.
	FindByITSC(ctx context.Context, itsc string) (*Member, error)
	// RecordLogin rotates this_login into last_login and bumps the
	// login counter.
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	// Expiring returns active members whose expire_at falls on or
	// before the cutoff.
	Expiring(ctx context.Context, cutoff time.Time) ([]*Member, error)
}

// NewDescriptor declares the member resource. University and student
// ids are personal data: they project on the detail endpoint (which
// access control limits to admins and the member themself) but never
// on lists, and they are not searchable.
func NewDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name: "member",
		Fields: []string{
			"id", "itsc", "student_id", "university_id", "mobile",
			"full_name", "pen_name", "member_type", "penalized", "admin",
			"join_at", "expire_at", "last_login", "login_count", "rfs_count",
		},
		ReadOnly:     []string{"itsc", "join_at", "last_login", "login_count", "rfs_count"},
		ListFields:   []string{"id", "itsc", "full_name", "pen_name", "member_type", "penalized", "expire_at"},
		FilterFields: []string{"itsc", "member_type", "penalized", "admin"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"itsc", "full_name", "pen_name"},
			"itsc":                      {"itsc"},
			"name":                      {"full_name", "pen_name"},
		},
		DirtyActions:  []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
		AdminOnlyFeed: true,
	}
}

// SummaryDescriptor is the projection other resources embed when they
// reference a member (holder of a disk, applicant of a ticket).
func SummaryDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:   "member_summary",
		Fields: []string{"id", "itsc", "full_name", "pen_name", "member_type"},
	}
}

// Codec converts members to and from their record form.
type Codec struct{}

func (Codec) New() *Member              { return &Member{JoinAt: time.Now()} }
func (Codec) ID(m *Member) int64        { return m.ID }
func (Codec) SetID(m *Member, id int64) { m.ID = id }

func (Codec) Fields(m *Member) resource.Record {
	return resource.Record{
		"id":            m.ID,
		"itsc":          m.ITSC,
		"student_id":    m.StudentID,
		"university_id": m.UniversityID,
		"mobile":        m.Mobile,
		"full_name":     m.FullName,
		"pen_name":      m.PenName,
		"member_type":   m.MemberType,
		"penalized":     m.Penalized,
		"admin":         m.Admin,
		"join_at":       m.JoinAt,
		"expire_at":     timeOrNil(m.ExpireAt),
		"last_login":    timeOrNil(m.LastLogin),
		"login_count":   m.LoginCount,
		"rfs_count":     m.RFSCount,
	}
}

// Summary is the Record other packages embed for a member reference.
func Summary(m *Member) resource.Record {
	if m == nil {
		return nil
	}
	return resource.Record{
		"id":          m.ID,
		"itsc":        m.ITSC,
		"full_name":   m.FullName,
		"pen_name":    m.PenName,
		"member_type": m.MemberType,
	}
}

func (Codec) Apply(m *Member, payload resource.Record) error {
	if v, ok := stringField(payload, "itsc"); ok {
		m.ITSC = v
	}
	if v, ok := stringField(payload, "student_id"); ok {
		m.StudentID = v
	}
	if v, ok := stringField(payload, "university_id"); ok {
		m.UniversityID = v
	}
	if v, ok := stringField(payload, "mobile"); ok {
		m.Mobile = v
	}
	if v, ok := stringField(payload, "full_name"); ok {
		m.FullName = v
	}
	if v, ok := stringField(payload, "pen_name"); ok {
		m.PenName = v
	}
	if v, ok := stringField(payload, "member_type"); ok {
		m.MemberType = v
	}
	if v, ok := payload["penalized"].(bool); ok {
		m.Penalized = v
	}
	if v, ok := payload["admin"].(bool); ok {
		m.Admin = v
	}
	if v, ok := stringField(payload, "expire_at"); ok {
		if v == "" {
			m.ExpireAt = nil
		} else {
			t, err := time.Parse(validate.DateLayout, v)
			if err != nil {
				return apperr.ValidationMsg("Invalid expire_at date")
			}
			m.ExpireAt = pointer.To(t)
		}
	}
	return nil
}

func (Codec) Label(m *Member) string    { return "member " + m.ITSC }
func (Codec) Subject(m *Member) *string { return pointer.To(m.ITSC) }

// Hooks validates registry writes and blocks deleting members who
// still hold discs.
type Hooks struct {
	resource.NopHooks[Member]
	store Store
	held  func(ctx context.Context, memberID int64) (int, error)
}

// NewHooks wires validation against the member store and the lending
// holds counter (implemented by the disk package).
func NewHooks(store Store, held func(ctx context.Context, memberID int64) (int, error)) *Hooks {
	return &Hooks{store: store, held: held}
}

func (h *Hooks) Validate(ctx context.Context, _ resource.RequestContext, payload resource.Record, current *Member) error {
	v := validate.New()
	if current == nil {
		itsc, _ := stringField(payload, "itsc")
		v.Required("itsc", itsc, "ITSC is required")
		if itsc != "" && h.store != nil {
			if _, err := h.store.FindByITSC(ctx, itsc); err == nil {
				return apperr.BusinessRule("Member already registered")
			} else if err != dberr.ErrNotFound {
				return dberr.Wrap(err, "check itsc uniqueness")
			}
		}
		fullName, _ := stringField(payload, "full_name")
		v.Required("full_name", fullName, "Full name is required")
		memberType, _ := stringField(payload, "member_type")
		v.Required("member_type", memberType, "Member type is required")
	}
	if sid, ok := stringField(payload, "student_id"); ok {
		v.Match("student_id", sid, studentIDPattern, "Student ID must be 8 digits")
	}
	if uid, ok := stringField(payload, "university_id"); ok {
		v.Match("university_id", uid, universityIDPattern, "University ID must be 9 digits")
	}
	if mobile, ok := stringField(payload, "mobile"); ok {
		v.Match("mobile", mobile, mobilePattern, "Mobile number must be 8 digits")
	}
	if mt, ok := stringField(payload, "member_type"); ok && mt != "" {
		v.OneOf("member_type", mt, "Unknown member type", memberTypes...)
	}
	if expire, ok := stringField(payload, "expire_at"); ok && expire != "" {
		v.Date("expire_at", expire, "Invalid expire_at date")
	}
	return v.Err()
}

func (h *Hooks) BeforeDelete(ctx context.Context, _ resource.RequestContext, m *Member) error {
	if h.held == nil {
		return nil
	}
	count, err := h.held(ctx, m.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.BusinessRule("Member still holds discs from the library")
	}
	return nil
}

func stringField(payload resource.Record, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
