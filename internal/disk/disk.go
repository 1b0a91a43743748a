// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package disk implements the VCD/DVD library: the catalogue resource
// and the lending lifecycle built on top of it.
//
// A disc's avail_type only ever changes through the lending service
// (reserve, deliver, check out, renew, check in) or the show package's
// voting transitions. The one exception is publishing: an admin may
// move a disc between Draft and Available by editing it.
package disk

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// Disc availability states.
const (
	StateDraft           = "Draft"
	StateAvailable       = "Available"
	StateReserved        = "Reserved"
	StateReservedCounter = "ReservedCounter"
	StateOnDelivery      = "OnDelivery"
	StateBorrowed        = "Borrowed"
	StateVoting          = "Voting"
	StateOnshow          = "Onshow"
)

var allStates = []string{
	StateDraft, StateAvailable, StateReserved, StateReservedCounter,
	StateOnDelivery, StateBorrowed, StateVoting, StateOnshow,
}

// Disc media types: A is VCD, B is DVD. The letter prefixes the call
// number on the shelf.
const (
	TypeVCD = "A"
	TypeDVD = "B"
)

var imdbPattern = regexp.MustCompile(`^tt\d{7}$`)

// Disk is one disc in the library.
type Disk struct {
	ID         int64
	DiskType   string
	TitleEn    string
	TitleCh    string
	DescEn     string
	DescCh     string
	DirectorEn string
	DirectorCh string
	Actors     []string
	ShowYear   int
	ImdbURL    string
	Length     int
	Category   string
	Tags       string
	CoverURL   string

	AvailType   string
	DueAt       *time.Time
	HoldByID    *int64
	ReservedByID *int64
	BorrowCount int
	Rank        float64

	// HoldBy and ReservedBy are hydrated member references, loaded by
	// the store alongside the disc.
	HoldBy     *member.Member
	ReservedBy *member.Member
}

// CallNumber is the shelf label: media-type letter plus id.
func (d *Disk) CallNumber() string {
	return d.DiskType + strconv.FormatInt(d.ID, 10)
}

// Store persists discs. It extends the generic resource store with the
// counting queries the lending quotas and batch jobs need.
type Store interface {
	resource.Store[Disk]

	// CountReservedBy counts a member's active reservations.
	CountReservedBy(ctx context.Context, memberID int64) (int, error)
	// CountHeldBy counts the discs a member currently has out.
	CountHeldBy(ctx context.Context, memberID int64) (int, error)
	// CountActiveFor counts discs a member either holds or has
	// reserved, the figure that blocks deleting their membership.
	CountActiveFor(ctx context.Context, memberID int64) (int, error)
	// DueOn returns borrowed discs due exactly on the given date.
	DueOn(ctx context.Context, date time.Time) ([]*Disk, error)
	// Overdue returns borrowed discs whose due date is strictly
	// before the given date.
	Overdue(ctx context.Context, date time.Time) ([]*Disk, error)
	// InStates returns discs currently in any of the given states.
	InStates(ctx context.Context, states ...string) ([]*Disk, error)
}

// NewDescriptor declares the disk resource. Lending bookkeeping
// fields are read-only over the edit endpoint; avail_type is not
// listed there because publishing edits it, under hook validation.
func NewDescriptor() *resource.Descriptor {
	summary := member.SummaryDescriptor()
	return &resource.Descriptor{
		Name: "disk",
		Fields: []string{
			"id", "call_number", "disk_type", "title_en", "title_ch",
			"desc_en", "desc_ch", "director_en", "director_ch", "actors",
			"show_year", "imdb_url", "length", "category", "tags",
			"cover_url", "avail_type", "due_at", "hold_by", "reserved_by",
			"borrow_cnt", "rank",
		},
		ReadOnly: []string{"call_number", "due_at", "hold_by", "reserved_by", "borrow_cnt", "rank"},
		ListFields: []string{
			"id", "call_number", "disk_type", "title_en", "title_ch",
			"category", "avail_type", "rank",
		},
		FilterFields: []string{
			"avail_type", "disk_type", "category", "show_year",
			"hold_by__itsc", "reserved_by__itsc",
		},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {
				"title_en", "title_ch", "director_en", "director_ch",
				"actors", "desc_en", "desc_ch",
			},
			"title":    {"title_en", "title_ch"},
			"director": {"director_en", "director_ch"},
			"actor":    {"actors"},
			"tag":      {"tags", "category"},
		},
		Nested: map[string]*resource.Descriptor{
			"hold_by":     summary,
			"reserved_by": summary,
		},
		DirtyActions: []string{
			audit.ActionCreate, audit.ActionEdit, audit.ActionDelete,
			audit.ActionReserve, audit.ActionBorrow, audit.ActionRate,
		},
	}
}

// Codec converts discs to and from their record form.
type Codec struct{}

func (Codec) New() *Disk {
	return &Disk{DiskType: TypeDVD, AvailType: StateDraft}
}

func (Codec) ID(d *Disk) int64        { return d.ID }
func (Codec) SetID(d *Disk, id int64) { d.ID = id }

func (Codec) Fields(d *Disk) resource.Record {
	rec := resource.Record{
		"id":          d.ID,
		"call_number": d.CallNumber(),
		"disk_type":   d.DiskType,
		"title_en":    d.TitleEn,
		"title_ch":    d.TitleCh,
		"desc_en":     d.DescEn,
		"desc_ch":     d.DescCh,
		"director_en": d.DirectorEn,
		"director_ch": d.DirectorCh,
		"actors":      d.Actors,
		"show_year":   d.ShowYear,
		"imdb_url":    d.ImdbURL,
		"length":      d.Length,
		"category":    d.Category,
		"tags":        d.Tags,
		"cover_url":   d.CoverURL,
		"avail_type":  d.AvailType,
		"borrow_cnt":  d.BorrowCount,
		"rank":        d.Rank,
	}
	if d.DueAt != nil {
		rec["due_at"] = *d.DueAt
	} else {
		rec["due_at"] = nil
	}
	if d.HoldBy != nil {
		rec["hold_by"] = member.Summary(d.HoldBy)
	} else {
		rec["hold_by"] = nil
	}
	if d.ReservedBy != nil {
		rec["reserved_by"] = member.Summary(d.ReservedBy)
	} else {
		rec["reserved_by"] = nil
	}
	return rec
}

func (Codec) Apply(d *Disk, payload resource.Record) error {
	stringInto(payload, "disk_type", &d.DiskType)
	stringInto(payload, "title_en", &d.TitleEn)
	stringInto(payload, "title_ch", &d.TitleCh)
	stringInto(payload, "desc_en", &d.DescEn)
	stringInto(payload, "desc_ch", &d.DescCh)
	stringInto(payload, "director_en", &d.DirectorEn)
	stringInto(payload, "director_ch", &d.DirectorCh)
	stringInto(payload, "imdb_url", &d.ImdbURL)
	stringInto(payload, "category", &d.Category)
	stringInto(payload, "tags", &d.Tags)
	stringInto(payload, "cover_url", &d.CoverURL)
	stringInto(payload, "avail_type", &d.AvailType)
	intInto(payload, "show_year", &d.ShowYear)
	intInto(payload, "length", &d.Length)
	if raw, ok := payload["actors"]; ok {
		d.Actors = toStringSlice(raw)
	}
	return nil
}

func (Codec) Label(d *Disk) string { return "disk " + d.CallNumber() }

func (Codec) Subject(d *Disk) *string {
	if d.HoldBy != nil {
		return pointer.To(d.HoldBy.ITSC)
	}
	return nil
}

// Hooks validates catalogue writes and blocks deleting discs that are
// out of the library or referenced by a show.
type Hooks struct {
	resource.NopHooks[Disk]

	// showReferences reports whether any show slot references the
	// disc. Wired from the show package at startup.
	showReferences func(ctx context.Context, diskID int64) (bool, error)
}

func NewHooks(showReferences func(ctx context.Context, diskID int64) (bool, error)) *Hooks {
	return &Hooks{showReferences: showReferences}
}

func (h *Hooks) Validate(_ context.Context, _ resource.RequestContext, payload resource.Record, current *Disk) error {
	v := validate.New()
	if current == nil {
		titleEn, _ := payload["title_en"].(string)
		titleCh, _ := payload["title_ch"].(string)
		v.Custom("title", titleEn == "" && titleCh == "", "A title in either language is required")
	}
	if dt, ok := payload["disk_type"].(string); ok {
		v.OneOf("disk_type", dt, "Disk type must be A (VCD) or B (DVD)", TypeVCD, TypeDVD)
	}
	if imdb, ok := payload["imdb_url"].(string); ok {
		v.Match("imdb_url", imdb, imdbPattern, "IMDB id must look like tt0123456")
	}
	if year, ok := intField(payload, "show_year"); ok && year != 0 {
		v.Range("show_year", year, 1888, 2100, "Implausible show year")
	}
	if state, ok := payload["avail_type"].(string); ok {
		v.OneOf("avail_type", state, "Unknown avail type", allStates...)
		if current == nil {
			v.Custom("avail_type", state != StateDraft && state != StateAvailable,
				"A new disk starts as Draft or Available")
		} else if state != current.AvailType {
			publishable := (current.AvailType == StateDraft || current.AvailType == StateAvailable) &&
				(state == StateDraft || state == StateAvailable)
			v.Custom("avail_type", !publishable,
				"Avail type only changes through lending operations")
		}
	}
	return v.Err()
}

func (h *Hooks) BeforeDelete(ctx context.Context, _ resource.RequestContext, d *Disk) error {
	switch d.AvailType {
	case StateBorrowed, StateOnDelivery:
		return businessRule("The disk is out of the library")
	case StateVoting, StateOnshow:
		return businessRule("The disk is scheduled for a show")
	}
	if h.showReferences != nil {
		referenced, err := h.showReferences(ctx, d.ID)
		if err != nil {
			return err
		}
		if referenced {
			return businessRule("The disk is a candidate of a film show")
		}
	}
	return nil
}

func stringInto(payload resource.Record, key string, dst *string) {
	if v, ok := payload[key].(string); ok {
		*dst = v
	}
}

func intInto(payload resource.Record, key string, dst *int) {
	if v, ok := intField(payload, key); ok {
		*dst = v
	}
}

func intField(payload resource.Record, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// toStringSlice accepts both []string and the []any JSON decoding
// produces.
func toStringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
