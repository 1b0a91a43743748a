// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/apperr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
	"github.com/johnmave126/filmsoc-website-backend/pkg/pointer"
)

// Review is a member's written review of a disc. Reviews ride the
// generic resource pipeline unchanged; members create their own,
// admins moderate.
type Review struct {
	ID        int64
	DiskID    int64
	PosterID  int64
	Content   string
	CreatedAt time.Time

	Poster *member.Member
}

// NewReviewDescriptor declares the disk review resource.
func NewReviewDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:         "review",
		Fields:       []string{"id", "disk_id", "poster", "content", "created_at"},
		ReadOnly:     []string{"disk_id", "poster", "created_at"},
		ListFields:   []string{"id", "disk_id", "poster", "created_at"},
		FilterFields: []string{"disk_id", "poster__itsc"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"content"},
		},
		Nested: map[string]*resource.Descriptor{
			"poster": member.SummaryDescriptor(),
		},
		DirtyActions:       []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
		PurgeAuditOnDelete: true,
	}
}

// ReviewCodec converts reviews to and from their record form.
type ReviewCodec struct{}

func (ReviewCodec) New() *Review              { return &Review{CreatedAt: time.Now()} }
func (ReviewCodec) ID(r *Review) int64        { return r.ID }
func (ReviewCodec) SetID(r *Review, id int64) { r.ID = id }

func (ReviewCodec) Fields(r *Review) resource.Record {
	rec := resource.Record{
		"id":         r.ID,
		"disk_id":    r.DiskID,
		"content":    r.Content,
		"created_at": r.CreatedAt,
	}
	if r.Poster != nil {
		rec["poster"] = member.Summary(r.Poster)
	} else {
		rec["poster"] = nil
	}
	return rec
}

func (ReviewCodec) Apply(r *Review, payload resource.Record) error {
	if v, ok := payload["content"].(string); ok {
		r.Content = v
	}
	if v, ok := intField(payload, "disk_id"); ok {
		r.DiskID = int64(v)
	}
	return nil
}

func (ReviewCodec) Label(r *Review) string {
	return "review of disk " + strconv.FormatInt(r.DiskID, 10)
}

func (ReviewCodec) Subject(r *Review) *string {
	if r.Poster != nil {
		return pointer.To(r.Poster.ITSC)
	}
	return nil
}

// ReviewHooks requires a published disc and stamps the poster.
type ReviewHooks struct {
	resource.NopHooks[Review]
	disks   Store
	members member.Store
}

func NewReviewHooks(disks Store, members member.Store) *ReviewHooks {
	return &ReviewHooks{disks: disks, members: members}
}

func (h *ReviewHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *Review) error {
	if current != nil && !rc.Admin && rc.ActorID != current.PosterID {
		return apperr.Forbidden("Authorization Forbidden")
	}
	v := validate.New()
	if content, ok := payload["content"].(string); ok || current == nil {
		v.Required("content", content, "Review content is required")
	}
	if current == nil {
		diskID, ok := intField(payload, "disk_id")
		if !ok {
			return apperr.ValidationMsg("A review must reference a disk")
		}
		d, err := h.disks.Get(ctx, int64(diskID))
		if err != nil {
			if err == dberr.ErrNotFound {
				return apperr.NotFound("Object")
			}
			return dberr.Wrap(err, "load reviewed disk")
		}
		if d.AvailType == StateDraft {
			return businessRule("The disk is not published")
		}
	}
	return v.Err()
}

func (h *ReviewHooks) BeforeDelete(ctx context.Context, rc resource.RequestContext, r *Review) error {
	if rc.Admin || rc.ActorID == r.PosterID {
		return nil
	}
	return apperr.Forbidden("Authorization Forbidden")
}

func (h *ReviewHooks) BeforeSave(ctx context.Context, rc resource.RequestContext, r *Review, _ resource.Record) error {
	if r.PosterID != 0 {
		return nil
	}
	if rc.ActorID == 0 {
		return apperr.Unauthorized("User not login")
	}
	r.PosterID = rc.ActorID
	m, err := h.members.Get(ctx, rc.ActorID)
	if err == nil {
		r.Poster = m
	}
	return nil
}

// ReviewPostgresStore is the production review Store.
type ReviewPostgresStore struct {
	db *pgxpool.Pool
}

func NewReviewPostgresStore(db *pgxpool.Pool) *ReviewPostgresStore {
	return &ReviewPostgresStore{db: db}
}

const reviewSelect = `
	SELECT
		v.id, v.disk_id, v.poster, v.content, v.created_at,
		p.id, p.itsc, p.full_name, p.pen_name, p.member_type
	FROM disk_review v
	LEFT JOIN member p ON p.id = v.poster`

func (store *ReviewPostgresStore) All(ctx context.Context) ([]*Review, error) {
	rows, err := store.db.Query(ctx, reviewSelect+` ORDER BY v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (store *ReviewPostgresStore) Get(ctx context.Context, id int64) (*Review, error) {
	row := store.db.QueryRow(ctx, reviewSelect+` WHERE v.id = $1`, id)
	return scanReview(row)
}

func (store *ReviewPostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('disk_review', 'id'))`).Scan(&id)
	return id, err
}

func (store *ReviewPostgresStore) Insert(ctx context.Context, r *Review) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO disk_review (id, disk_id, poster, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.DiskID, r.PosterID, r.Content, r.CreatedAt)
	return err
}

func (store *ReviewPostgresStore) Update(ctx context.Context, r *Review) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE disk_review SET disk_id = $2, poster = $3, content = $4
		WHERE id = $1`,
		r.ID, r.DiskID, r.PosterID, r.Content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *ReviewPostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM disk_review WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (*Review, error) {
	var r Review
	var poster memberSummaryRow
	err := row.Scan(
		&r.ID, &r.DiskID, &r.PosterID, &r.Content, &r.CreatedAt,
		&poster.id, &poster.itsc, &poster.fullName, &poster.penName, &poster.memberType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	r.Poster = poster.member()
	return &r, nil
}
