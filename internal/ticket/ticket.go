// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package ticket implements preview show tickets: sponsored screening
// passes members apply for while the ticket is open. Applications are
// derived from the audit log, one per member per ticket.
package ticket

import (
	"context"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Ticket states. Unlike shows, tickets carry no transition order: an
// exco opens and closes them by hand as the sponsor dictates.
const (
	StateDraft  = "Draft"
	StateOpen   = "Open"
	StateClosed = "Closed"
)

// Ticket is one preview show giveaway.
type Ticket struct {
	ID            int64
	State         string
	TitleEn       string
	TitleCh       string
	DescEn        string
	DescCh        string
	ApplyDeadline *time.Time
	CreatedAt     time.Time
}

// Store is the persistence contract for tickets.
type Store interface {
	resource.Store[Ticket]
}

// NewDescriptor declares the preview show ticket resource.
func NewDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name: "ticket",
		Fields: []string{
			"id", "state", "title_en", "title_ch", "desc_en", "desc_ch",
			"apply_deadline", "created_at",
		},
		ReadOnly: []string{"created_at"},
		ListFields: []string{
			"id", "state", "title_en", "title_ch", "apply_deadline", "created_at",
		},
		FilterFields: []string{"state"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"title_en", "title_ch"},
		},
		DirtyActions: []string{
			audit.ActionCreate, audit.ActionEdit, audit.ActionDelete,
			audit.ActionApply,
		},
	}
}

// Codec converts tickets to and from their record form.
type Codec struct{}

func (Codec) New() *Ticket              { return &Ticket{State: StateDraft, CreatedAt: time.Now()} }
func (Codec) ID(t *Ticket) int64        { return t.ID }
func (Codec) SetID(t *Ticket, id int64) { t.ID = id }

func (Codec) Fields(t *Ticket) resource.Record {
	rec := resource.Record{
		"id":         t.ID,
		"state":      t.State,
		"title_en":   t.TitleEn,
		"title_ch":   t.TitleCh,
		"desc_en":    t.DescEn,
		"desc_ch":    t.DescCh,
		"created_at": t.CreatedAt,
	}
	if t.ApplyDeadline != nil {
		rec["apply_deadline"] = t.ApplyDeadline.Format(validate.DateLayout)
	} else {
		rec["apply_deadline"] = nil
	}
	return rec
}

func (Codec) Apply(t *Ticket, payload resource.Record) error {
	stringInto(payload, "state", &t.State)
	stringInto(payload, "title_en", &t.TitleEn)
	stringInto(payload, "title_ch", &t.TitleCh)
	stringInto(payload, "desc_en", &t.DescEn)
	stringInto(payload, "desc_ch", &t.DescCh)
	if v, ok := payload["apply_deadline"].(string); ok {
		if parsed, err := time.Parse(validate.DateLayout, v); err == nil {
			t.ApplyDeadline = &parsed
		}
	}
	return nil
}

func (Codec) Label(t *Ticket) string    { return "ticket " + t.TitleEn }
func (Codec) Subject(t *Ticket) *string { return nil }

// Hooks validates the ticket form.
type Hooks struct {
	resource.NopHooks[Ticket]
}

func NewHooks() *Hooks { return &Hooks{} }

func (h *Hooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *Ticket) error {
	v := validate.New()
	field := func(key string) (string, bool) {
		s, ok := payload[key].(string)
		return s, ok
	}
	if s, ok := field("state"); ok {
		v.OneOf("state", s, "Invalid Ticket State", StateDraft, StateOpen, StateClosed)
	}
	if s, ok := field("title_en"); ok || current == nil {
		v.Required("title_en", s, "English Title missing")
	}
	if s, ok := field("title_ch"); ok || current == nil {
		v.Required("title_ch", s, "Chinese Title missing")
	}
	if s, ok := field("apply_deadline"); ok || current == nil {
		v.Required("apply_deadline", s, "Apply Deadline missing")
		v.Date("apply_deadline", s, "Invalid Apply Deadline")
	}
	return v.Err()
}

func stringInto(payload resource.Record, key string, dst *string) {
	if v, ok := payload[key].(string); ok {
		*dst = v
	}
}
