// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

// Package show implements the regular film show and its voting
// lifecycle.
//
// A show is created Draft with three candidate discs. Opening it puts
// the candidates on the ballot (avail_type Voting); moving it to
// Pending crowns the winning slot (Onshow) and releases the rest;
// Passed releases everything. States only move forward, and the
// transitions' side effects on discs happen inside the show's own
// save pipeline.
package show

import (
	"context"
	"fmt"
	"time"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Show states, forward-only.
const (
	StateDraft   = "Draft"
	StateOpen    = "Open"
	StatePending = "Pending"
	StatePassed  = "Passed"
)

// SlotCount is the number of candidate slots on the ballot.
const SlotCount = 3

var stateOrder = map[string]int{
	StateDraft:   0,
	StateOpen:    1,
	StatePending: 2,
	StatePassed:  3,
}

// Show is one regular film show cycle.
type Show struct {
	ID           int64
	State        string
	SlotIDs      [SlotCount]*int64
	VoteCounts   [SlotCount]int
	Participants []int64
	Remarks      string
	CreatedAt    time.Time

	// Slots are the hydrated candidate discs.
	Slots [SlotCount]*disk.Disk
}

// HasParticipant reports whether a member already signed in.
func (s *Show) HasParticipant(memberID int64) bool {
	for _, id := range s.Participants {
		if id == memberID {
			return true
		}
	}
	return false
}

// WinningSlot picks the slot with the highest vote count, ties broken
// by slot order. With no votes at all, slot 1 wins.
func (s *Show) WinningSlot() int {
	winner := 0
	for i := 1; i < SlotCount; i++ {
		if s.VoteCounts[i] > s.VoteCounts[winner] {
			winner = i
		}
	}
	return winner + 1
}

// Store persists shows.
type Store interface {
	resource.Store[Show]

	// Latest returns the most recently created show, dberr.ErrNotFound
	// when none exists.
	Latest(ctx context.Context) (*Show, error)
	// OpenCount counts shows currently in the Open state.
	OpenCount(ctx context.Context) (int, error)
	// ReferencesDisk reports whether any show slot references a disc.
	ReferencesDisk(ctx context.Context, diskID int64) (bool, error)
}

// NewDescriptor declares the show resource. Vote counts and the
// participant list belong to the state machine, never the edit
// payload.
func NewDescriptor() *resource.Descriptor {
	slot := slotDescriptor()
	return &resource.Descriptor{
		Name: "show",
		Fields: []string{
			"id", "state", "film_1", "film_2", "film_3",
			"vote_cnt_1", "vote_cnt_2", "vote_cnt_3",
			"participant_list", "remarks", "created_at",
		},
		ReadOnly: []string{
			"vote_cnt_1", "vote_cnt_2", "vote_cnt_3",
			"participant_list", "created_at",
		},
		ListFields: []string{
			"id", "state", "film_1", "film_2", "film_3",
			"vote_cnt_1", "vote_cnt_2", "vote_cnt_3", "created_at",
		},
		FilterFields: []string{"state"},
		Nested: map[string]*resource.Descriptor{
			"film_1": slot,
			"film_2": slot,
			"film_3": slot,
		},
		DirtyActions: []string{
			audit.ActionCreate, audit.ActionEdit, audit.ActionDelete,
			audit.ActionVote, audit.ActionSignin,
		},
	}
}

// slotDescriptor is the disc projection embedded in a ballot slot.
func slotDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name: "show_slot",
		Fields: []string{
			"id", "call_number", "title_en", "title_ch", "avail_type",
			"cover_url", "rank",
		},
	}
}

// Codec converts shows to and from their record form.
type Codec struct{}

func (Codec) New() *Show {
	return &Show{State: StateDraft, CreatedAt: time.Now()}
}

func (Codec) ID(s *Show) int64        { return s.ID }
func (Codec) SetID(s *Show, id int64) { s.ID = id }

func (Codec) Fields(s *Show) resource.Record {
	rec := resource.Record{
		"id":               s.ID,
		"state":            s.State,
		"participant_list": append([]int64(nil), s.Participants...),
		"remarks":          s.Remarks,
		"created_at":       s.CreatedAt,
	}
	diskCodec := disk.Codec{}
	for i := 0; i < SlotCount; i++ {
		key := fmt.Sprintf("film_%d", i+1)
		if s.Slots[i] != nil {
			rec[key] = diskCodec.Fields(s.Slots[i])
		} else {
			rec[key] = nil
		}
		rec[fmt.Sprintf("vote_cnt_%d", i+1)] = s.VoteCounts[i]
	}
	return rec
}

func (Codec) Apply(s *Show, payload resource.Record) error {
	if v, ok := payload["state"].(string); ok {
		s.State = v
	}
	if v, ok := payload["remarks"].(string); ok {
		s.Remarks = v
	}
	for i := 0; i < SlotCount; i++ {
		key := fmt.Sprintf("film_%d", i+1)
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if raw == nil {
			s.SlotIDs[i] = nil
			s.Slots[i] = nil
			continue
		}
		if id, ok := toInt64(raw); ok {
			s.SlotIDs[i] = &id
		}
	}
	return nil
}

func (Codec) Label(s *Show) string {
	return fmt.Sprintf("regular film show %d", s.ID)
}

func (Codec) Subject(*Show) *string { return nil }

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
