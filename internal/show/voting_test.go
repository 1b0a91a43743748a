// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package show

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

type votingFixture struct {
	engine  *resource.Engine[Show]
	voting  *VotingService
	shows   *MemoryStore
	disks   *disk.MemoryStore
	members *member.MemoryStore
	audit   *audit.MemoryStore
}

func newVotingFixture(t *testing.T) *votingFixture {
	t.Helper()
	members := member.NewMemoryStore()
	disks := disk.NewMemoryStore(members)
	shows := NewMemoryStore(disks)
	auditStore := audit.NewMemoryStore()

	f := &votingFixture{
		shows:   shows,
		disks:   disks,
		members: members,
		audit:   auditStore,
	}
	f.engine = resource.NewEngine[Show](
		NewDescriptor(), shows, Codec{}, NewHooks(shows, disks),
		auditStore, slog.Default())
	f.voting = NewVotingService(shows, members, auditStore, slog.Default())
	return f
}

func (f *votingFixture) addMember(t *testing.T, id int64, itsc string) *member.Member {
	t.Helper()
	m := &member.Member{ID: id, ITSC: itsc, MemberType: member.TypeFull}
	require.NoError(t, f.members.Insert(context.Background(), m))
	return m
}

func (f *votingFixture) addDisk(t *testing.T, id int64, state string) *disk.Disk {
	t.Helper()
	d := &disk.Disk{ID: id, DiskType: disk.TypeDVD, TitleEn: "T", AvailType: state}
	require.NoError(t, f.disks.Insert(context.Background(), d))
	return d
}

// addShow creates a Draft show with the three given candidate discs
// through the engine, so the creation pipeline runs for real.
func (f *votingFixture) addShow(t *testing.T, slots [3]int64) int64 {
	t.Helper()
	record, err := f.engine.Create(context.Background(), adminCtx("create"), resource.Record{
		"film_1": slots[0],
		"film_2": slots[1],
		"film_3": slots[2],
	})
	require.NoError(t, err)
	return record["id"].(int64)
}

func adminCtx(action string) resource.RequestContext {
	return resource.RequestContext{ActorID: 99, ActorITSC: "exco", Admin: true, Action: action}
}

func memberCtx(id int64, itsc string) resource.RequestContext {
	return resource.RequestContext{ActorID: id, ActorITSC: itsc}
}

func TestOpenTransition(t *testing.T) {
	ctx := context.Background()
	f := newVotingFixture(t)
	f.addMember(t, 1, "chanwk")

	// One candidate is currently reserved; opening must strip that.
	reserved := f.addDisk(t, 10, disk.StateReserved)
	reserved.ReservedByID = pointer.To(int64(1))
	require.NoError(t, f.disks.Update(ctx, reserved))
	f.addDisk(t, 11, disk.StateAvailable)
	f.addDisk(t, 12, disk.StateAvailable)

	// A leftover from an earlier cycle is still marked Onshow.
	f.addDisk(t, 13, disk.StateOnshow)

	id := f.addShow(t, [3]int64{10, 11, 12})
	_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateOpen})
	require.NoError(t, err)

	for _, diskID := range []int64{10, 11, 12} {
		d, err := f.disks.Get(ctx, diskID)
		require.NoError(t, err)
		assert.Equal(t, disk.StateVoting, d.AvailType, "disk %d", diskID)
		assert.Nil(t, d.ReservedByID)
		assert.Nil(t, d.HoldByID)
		assert.Nil(t, d.DueAt)
	}

	leftover, err := f.disks.Get(ctx, 13)
	require.NoError(t, err)
	assert.Equal(t, disk.StateAvailable, leftover.AvailType)
}

func TestStateRules(t *testing.T) {
	ctx := context.Background()

	t.Run("at most one open show", func(t *testing.T) {
		f := newVotingFixture(t)
		for id := int64(10); id < 16; id++ {
			f.addDisk(t, id, disk.StateAvailable)
		}
		first := f.addShow(t, [3]int64{10, 11, 12})
		second := f.addShow(t, [3]int64{13, 14, 15})

		_, err := f.engine.Edit(ctx, adminCtx("edit"), first, resource.Record{"state": StateOpen})
		require.NoError(t, err)

		_, err = f.engine.Edit(ctx, adminCtx("edit"), second, resource.Record{"state": StateOpen})
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	t.Run("state never moves backwards", func(t *testing.T) {
		f := newVotingFixture(t)
		for id := int64(10); id < 13; id++ {
			f.addDisk(t, id, disk.StateAvailable)
		}
		id := f.addShow(t, [3]int64{10, 11, 12})
		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateOpen})
		require.NoError(t, err)

		_, err = f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateDraft})
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	t.Run("non draft slots frozen", func(t *testing.T) {
		f := newVotingFixture(t)
		for id := int64(10); id < 14; id++ {
			f.addDisk(t, id, disk.StateAvailable)
		}
		id := f.addShow(t, [3]int64{10, 11, 12})
		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateOpen})
		require.NoError(t, err)

		_, err = f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"film_1": int64(13)})
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))

		// Re-sending the unchanged slot is fine.
		_, err = f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"film_1": int64(10), "remarks": "double bill"})
		assert.NoError(t, err)
	})

	t.Run("only the latest show concludes", func(t *testing.T) {
		f := newVotingFixture(t)
		for id := int64(10); id < 16; id++ {
			f.addDisk(t, id, disk.StateAvailable)
		}
		first := f.addShow(t, [3]int64{10, 11, 12})
		_, err := f.engine.Edit(ctx, adminCtx("edit"), first, resource.Record{"state": StateOpen})
		require.NoError(t, err)
		_ = f.addShow(t, [3]int64{13, 14, 15})

		_, err = f.engine.Edit(ctx, adminCtx("edit"), first, resource.Record{"state": StatePending})
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})
}

func TestPendingTransition(t *testing.T) {
	ctx := context.Background()

	openShow := func(t *testing.T, f *votingFixture) int64 {
		for id := int64(10); id < 13; id++ {
			f.addDisk(t, id, disk.StateAvailable)
		}
		id := f.addShow(t, [3]int64{10, 11, 12})
		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateOpen})
		require.NoError(t, err)
		return id
	}

	t.Run("highest vote wins", func(t *testing.T) {
		f := newVotingFixture(t)
		id := openShow(t, f)
		f.addMember(t, 1, "chanwk")
		f.addMember(t, 2, "leungty")

		_, err := f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 2)
		require.NoError(t, err)
		_, err = f.voting.AddVote(ctx, memberCtx(2, "leungty"), id, 2)
		require.NoError(t, err)
		_, err = f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 3)
		require.NoError(t, err)

		_, err = f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StatePending})
		require.NoError(t, err)

		winner, err := f.disks.Get(ctx, 11)
		require.NoError(t, err)
		assert.Equal(t, disk.StateOnshow, winner.AvailType)
		for _, loser := range []int64{10, 12} {
			d, err := f.disks.Get(ctx, loser)
			require.NoError(t, err)
			assert.Equal(t, disk.StateAvailable, d.AvailType)
		}
	})

	t.Run("no votes crowns slot one", func(t *testing.T) {
		f := newVotingFixture(t)
		id := openShow(t, f)

		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StatePending})
		require.NoError(t, err)

		first, err := f.disks.Get(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, disk.StateOnshow, first.AvailType)
	})

	t.Run("passed releases everything", func(t *testing.T) {
		f := newVotingFixture(t)
		id := openShow(t, f)
		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StatePending})
		require.NoError(t, err)

		_, err = f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StatePassed})
		require.NoError(t, err)

		for diskID := int64(10); diskID < 13; diskID++ {
			d, err := f.disks.Get(ctx, diskID)
			require.NoError(t, err)
			assert.Equal(t, disk.StateAvailable, d.AvailType)
		}
	})
}

func TestAddVote(t *testing.T) {
	ctx := context.Background()

	openShow := func(t *testing.T, f *votingFixture) int64 {
		for id := int64(10); id < 13; id++ {
			f.addDisk(t, id, disk.StateAvailable)
		}
		id := f.addShow(t, [3]int64{10, 11, 12})
		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateOpen})
		require.NoError(t, err)
		return id
	}

	t.Run("two votes, different slots", func(t *testing.T) {
		f := newVotingFixture(t)
		id := openShow(t, f)
		f.addMember(t, 1, "chanwk")

		s, err := f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, s.VoteCounts[0])

		_, err = f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 1)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err), "same slot twice")

		_, err = f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 2)
		require.NoError(t, err)

		_, err = f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 3)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err), "third vote")
	})

	t.Run("only while open", func(t *testing.T) {
		f := newVotingFixture(t)
		id := openShow(t, f)
		f.addMember(t, 1, "chanwk")
		_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StatePending})
		require.NoError(t, err)

		_, err = f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 1)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	t.Run("expired member refused", func(t *testing.T) {
		f := newVotingFixture(t)
		id := openShow(t, f)
		m := f.addMember(t, 1, "chanwk")
		m.MemberType = member.TypeExpired
		require.NoError(t, f.members.Update(ctx, m))

		_, err := f.voting.AddVote(ctx, memberCtx(1, "chanwk"), id, 1)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})
}

func TestSignInUser(t *testing.T) {
	ctx := context.Background()
	f := newVotingFixture(t)
	for id := int64(10); id < 13; id++ {
		f.addDisk(t, id, disk.StateAvailable)
	}
	id := f.addShow(t, [3]int64{10, 11, 12})
	f.addMember(t, 1, "chanwk")

	_, err := f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StateOpen})
	require.NoError(t, err)

	t.Run("only while pending", func(t *testing.T) {
		_, err := f.voting.SignInUser(ctx, adminCtx("signin"), id, 1)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))
	})

	_, err = f.engine.Edit(ctx, adminCtx("edit"), id, resource.Record{"state": StatePending})
	require.NoError(t, err)

	t.Run("records once and bumps participation", func(t *testing.T) {
		s, err := f.voting.SignInUser(ctx, adminCtx("signin"), id, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, s.Participants)

		m, err := f.members.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, m.RFSCount)

		_, err = f.voting.SignInUser(ctx, adminCtx("signin"), id, 1)
		require.Error(t, err)
		assert.True(t, apperr.IsBusinessRule(err))

		m, err = f.members.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, m.RFSCount, "refused signin changes nothing")
	})
}
