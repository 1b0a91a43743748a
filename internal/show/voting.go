// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package show

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// Hooks is the voting state machine's half that rides the resource
// engine: it validates state transitions on edit and performs their
// side effects on the candidate discs inside the save pipeline.
type Hooks struct {
	resource.NopHooks[Show]
	shows Store
	disks disk.Store
}

func NewHooks(shows Store, disks disk.Store) *Hooks {
	return &Hooks{shows: shows, disks: disks}
}

func (h *Hooks) Validate(ctx context.Context, _ resource.RequestContext, payload resource.Record, current *Show) error {
	newState, stateGiven := payload["state"].(string)
	if stateGiven {
		if _, known := stateOrder[newState]; !known {
			return apperr.ValidationMsg("Unknown show state")
		}
	}

	if current == nil {
		if stateGiven && newState != StateDraft {
			return apperr.BusinessRule("A new show starts as Draft")
		}
		return h.validateSlots(payload, nil)
	}

	if stateGiven && newState != current.State {
		if stateOrder[newState] < stateOrder[current.State] {
			return apperr.BusinessRule("Show state never moves backwards")
		}
		if newState == StateOpen {
			open, err := h.shows.OpenCount(ctx)
			if err != nil {
				return dberr.Wrap(err, "count open shows")
			}
			if open > 0 {
				return apperr.BusinessRule("Another show is already open for voting")
			}
			for _, id := range current.SlotIDs {
				if id == nil {
					return apperr.BusinessRule("All three slots must be filled before voting opens")
				}
			}
		}
		if newState == StatePending || newState == StatePassed {
			latest, err := h.shows.Latest(ctx)
			if err != nil && err != dberr.ErrNotFound {
				return dberr.Wrap(err, "load latest show")
			}
			if latest == nil || latest.ID != current.ID {
				return apperr.BusinessRule("Only the latest show can conclude")
			}
		}
	}

	if current.State != StateDraft {
		return h.validateSlots(payload, current)
	}
	return h.validateSlots(payload, nil)
}

// validateSlots rejects slot edits on non-Draft shows and checks that
// referenced discs exist.
func (h *Hooks) validateSlots(payload resource.Record, frozen *Show) error {
	for i := 0; i < SlotCount; i++ {
		key := fmt.Sprintf("film_%d", i+1)
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if frozen != nil {
			id, _ := toInt64(raw)
			unchanged := (raw == nil && frozen.SlotIDs[i] == nil) ||
				(frozen.SlotIDs[i] != nil && id == *frozen.SlotIDs[i])
			if !unchanged {
				return apperr.BusinessRule("Candidates of a non-draft show cannot change")
			}
			continue
		}
		if raw == nil {
			continue
		}
		if _, ok := toInt64(raw); !ok {
			return apperr.ValidationMsg("Slot must reference a disk id")
		}
	}
	return nil
}

// BeforeSave applies the disc side effects of a state transition. The
// previous state is re-read from the store, since the entity already
// carries the new one.
func (h *Hooks) BeforeSave(ctx context.Context, _ resource.RequestContext, s *Show, _ resource.Record) error {
	var prevState string
	if s.ID != 0 {
		if prev, err := h.shows.Get(ctx, s.ID); err == nil {
			prevState = prev.State
		} else if err != dberr.ErrNotFound {
			return dberr.Wrap(err, "load previous show state")
		}
	}
	if prevState == s.State || s.State == StateDraft {
		return nil
	}

	switch s.State {
	case StateOpen:
		// A stale ballot elsewhere never survives a new one opening.
		if err := h.resetBallotDiscs(ctx, 0); err != nil {
			return err
		}
		for i, id := range s.SlotIDs {
			if id == nil {
				continue
			}
			d, err := h.disks.Get(ctx, *id)
			if err != nil {
				return dberr.Wrap(err, "load candidate disk")
			}
			d.AvailType = disk.StateVoting
			d.HoldByID = nil
			d.HoldBy = nil
			d.ReservedByID = nil
			d.ReservedBy = nil
			d.DueAt = nil
			if err := h.disks.Update(ctx, d); err != nil {
				return dberr.Wrap(err, "put candidate on ballot")
			}
			s.Slots[i] = d
		}
	case StatePending:
		if prevState != StateOpen {
			return nil
		}
		winner := s.WinningSlot()
		winnerID := s.SlotIDs[winner-1]
		var keep int64
		if winnerID != nil {
			keep = *winnerID
		}
		if err := h.resetBallotDiscs(ctx, keep); err != nil {
			return err
		}
		if winnerID != nil {
			d, err := h.disks.Get(ctx, *winnerID)
			if err != nil {
				return dberr.Wrap(err, "load winning disk")
			}
			d.AvailType = disk.StateOnshow
			if err := h.disks.Update(ctx, d); err != nil {
				return dberr.Wrap(err, "mark winner onshow")
			}
			s.Slots[winner-1] = d
		}
	case StatePassed:
		if err := h.resetBallotDiscs(ctx, 0); err != nil {
			return err
		}
	}
	return nil
}

// resetBallotDiscs returns every Voting/Onshow disc to Available,
// except the one id to keep (0 keeps none).
func (h *Hooks) resetBallotDiscs(ctx context.Context, keep int64) error {
	discs, err := h.disks.InStates(ctx, disk.StateVoting, disk.StateOnshow)
	if err != nil {
		return dberr.Wrap(err, "load ballot disks")
	}
	for _, d := range discs {
		if keep != 0 && d.ID == keep {
			continue
		}
		d.AvailType = disk.StateAvailable
		d.HoldByID = nil
		d.HoldBy = nil
		d.ReservedByID = nil
		d.ReservedBy = nil
		d.DueAt = nil
		if err := h.disks.Update(ctx, d); err != nil {
			return dberr.Wrap(err, "release ballot disk")
		}
	}
	return nil
}

func (h *Hooks) BeforeDelete(_ context.Context, _ resource.RequestContext, s *Show) error {
	if s.State == StateOpen || s.State == StatePending {
		return apperr.BusinessRule("A running show cannot be deleted")
	}
	return nil
}

// VotingService handles the member-facing ballot operations: voting
// while Open and signing in while Pending. Both are derived-count
// operations over the audit log, same as rating.
type VotingService struct {
	shows   Store
	members member.Store
	audit   audit.Store
	log     *slog.Logger
}

func NewVotingService(shows Store, members member.Store, auditStore audit.Store, log *slog.Logger) *VotingService {
	return &VotingService{
		shows:   shows,
		members: members,
		audit:   auditStore,
		log:     log.With(slog.String("component", "voting")),
	}
}

// AddVote casts the acting member's vote for one slot of an open show.
// A member gets two votes across the show's lifetime and never two on
// the same slot; both limits come from scanning the member's vote
// entries for this show.
func (s *VotingService) AddVote(ctx context.Context, rc resource.RequestContext, showID int64, slot int) (*Show, error) {
	if slot < 1 || slot > SlotCount {
		return nil, apperr.ValidationMsg("Slot must be 1, 2 or 3")
	}
	actor, err := s.activeMember(ctx, rc.ActorID)
	if err != nil {
		return nil, err
	}
	sh, err := s.fetch(ctx, showID)
	if err != nil {
		return nil, err
	}
	if sh.State != StateOpen {
		return nil, apperr.BusinessRule("The show is not open for voting")
	}

	content := fmt.Sprintf("vote slot %d", slot)
	entries, err := s.audit.History(ctx, "show", sh.ID, audit.ActionVote)
	if err != nil {
		return nil, dberr.Wrap(err, "load vote history")
	}
	votes := 0
	for _, e := range entries {
		if e.AffectedUser == nil || *e.AffectedUser != actor.ITSC {
			continue
		}
		if e.Content == content {
			return nil, apperr.BusinessRule("You have voted for this slot")
		}
		votes++
	}
	if votes >= constants.VoteQuota {
		return nil, apperr.BusinessRule("Vote quota exceeded")
	}

	sh.VoteCounts[slot-1]++
	if err := s.shows.Update(ctx, sh); err != nil {
		return nil, dberr.Wrap(err, "count vote")
	}
	if err := s.audit.Append(ctx, &audit.Entry{
		EntityType:   "show",
		Action:       audit.ActionVote,
		EntityID:     sh.ID,
		AffectedUser: pointer.To(actor.ITSC),
		ActingAdmin:  rc.AdminRef(),
		Content:      content,
	}); err != nil {
		return nil, dberr.Wrap(err, "append vote entry")
	}
	return sh, nil
}

// SignInUser records a member's attendance at the pending show, once,
// and bumps their lifetime participation counter.
func (s *VotingService) SignInUser(ctx context.Context, rc resource.RequestContext, showID, memberID int64) (*Show, error) {
	m, err := s.activeMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	sh, err := s.fetch(ctx, showID)
	if err != nil {
		return nil, err
	}
	if sh.State != StatePending {
		return nil, apperr.BusinessRule("The show is not taking attendance")
	}
	if sh.HasParticipant(m.ID) {
		return nil, apperr.BusinessRule("Already signed in")
	}

	sh.Participants = append(sh.Participants, m.ID)
	if err := s.shows.Update(ctx, sh); err != nil {
		return nil, dberr.Wrap(err, "record participant")
	}
	m.RFSCount++
	if err := s.members.Update(ctx, m); err != nil {
		return nil, dberr.Wrap(err, "bump participation count")
	}
	if err := s.audit.Append(ctx, &audit.Entry{
		EntityType:   "show",
		Action:       audit.ActionSignin,
		EntityID:     sh.ID,
		AffectedUser: pointer.To(m.ITSC),
		ActingAdmin:  rc.AdminRef(),
		Content:      "signin " + m.ITSC,
	}); err != nil {
		return nil, dberr.Wrap(err, "append signin entry")
	}
	return sh, nil
}

func (s *VotingService) activeMember(ctx context.Context, memberID int64) (*member.Member, error) {
	if memberID == 0 {
		return nil, apperr.Unauthorized("User not login")
	}
	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		if err == dberr.ErrNotFound {
			return nil, apperr.BusinessRule("Not a registered member")
		}
		return nil, dberr.Wrap(err, "load member")
	}
	if !m.Active() {
		return nil, apperr.BusinessRule("Membership expired")
	}
	return m, nil
}

func (s *VotingService) fetch(ctx context.Context, showID int64) (*Show, error) {
	sh, err := s.shows.Get(ctx, showID)
	if err != nil {
		if err == dberr.ErrNotFound {
			return nil, apperr.NotFound("Object")
		}
		return nil, dberr.Wrap(err, "get show")
	}
	return sh, nil
}
