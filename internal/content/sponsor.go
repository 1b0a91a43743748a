// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package content

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// Sponsor is a sponsor logo pinned onto the sponsors page. X, Y, W
// and H place the logo as percentages of the page canvas.
type Sponsor struct {
	ID        int64
	Name      string
	ImgURL    string
	URL       string
	X         int
	Y         int
	W         int
	H         int
	CreatedAt time.Time
}

func NewSponsorDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:       "sponsor",
		Fields:     []string{"id", "name", "img_url", "url", "x", "y", "w", "h", "create_time"},
		ReadOnly:   []string{"create_time"},
		ListFields: []string{"id", "name", "img_url", "url", "x", "y", "w", "h"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"name"},
		},
		DirtyActions: []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
	}
}

type SponsorCodec struct{}

func (SponsorCodec) New() *Sponsor              { return &Sponsor{CreatedAt: time.Now()} }
func (SponsorCodec) ID(s *Sponsor) int64        { return s.ID }
func (SponsorCodec) SetID(s *Sponsor, id int64) { s.ID = id }

func (SponsorCodec) Fields(s *Sponsor) resource.Record {
	return resource.Record{
		"id":          s.ID,
		"name":        s.Name,
		"img_url":     s.ImgURL,
		"url":         s.URL,
		"x":           s.X,
		"y":           s.Y,
		"w":           s.W,
		"h":           s.H,
		"create_time": s.CreatedAt,
	}
}

func (SponsorCodec) Apply(s *Sponsor, payload resource.Record) error {
	stringInto(payload, "name", &s.Name)
	stringInto(payload, "img_url", &s.ImgURL)
	stringInto(payload, "url", &s.URL)
	intInto(payload, "x", &s.X)
	intInto(payload, "y", &s.Y)
	intInto(payload, "w", &s.W)
	intInto(payload, "h", &s.H)
	return nil
}

func (SponsorCodec) Label(s *Sponsor) string    { return "sponsor " + s.Name }
func (SponsorCodec) Subject(s *Sponsor) *string { return nil }

type SponsorHooks struct {
	resource.NopHooks[Sponsor]
}

func (SponsorHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *Sponsor) error {
	v := validate.New()
	if s, ok := payload["name"].(string); ok || current == nil {
		v.Required("name", s, "Name Missing")
	}
	for _, key := range []string{"x", "y", "w", "h"} {
		n, ok := intField(payload, key)
		if !ok && current != nil {
			continue
		}
		if !ok {
			v.Custom(key, true, "Location Missing")
			continue
		}
		v.Range(key, n, 0, 100, "Out of Range")
	}
	return v.Err()
}

// SponsorPostgresStore is the production sponsor Store.
type SponsorPostgresStore struct {
	db *pgxpool.Pool
}

func NewSponsorPostgresStore(db *pgxpool.Pool) *SponsorPostgresStore {
	return &SponsorPostgresStore{db: db}
}

const sponsorColumns = `id, name, img_url, url, x, y, w, h, created_at`

func (store *SponsorPostgresStore) All(ctx context.Context) ([]*Sponsor, error) {
	rows, err := store.db.Query(ctx,
		`SELECT `+sponsorColumns+` FROM sponsor ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Sponsor
	for rows.Next() {
		s, err := scanSponsor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (store *SponsorPostgresStore) Get(ctx context.Context, id int64) (*Sponsor, error) {
	row := store.db.QueryRow(ctx,
		`SELECT `+sponsorColumns+` FROM sponsor WHERE id = $1`, id)
	return scanSponsor(row)
}

func (store *SponsorPostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('sponsor', 'id'))`).Scan(&id)
	return id, err
}

func (store *SponsorPostgresStore) Insert(ctx context.Context, s *Sponsor) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO sponsor (id, name, img_url, url, x, y, w, h, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Name, s.ImgURL, s.URL, s.X, s.Y, s.W, s.H, s.CreatedAt)
	return err
}

func (store *SponsorPostgresStore) Update(ctx context.Context, s *Sponsor) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE sponsor
		SET name = $2, img_url = $3, url = $4, x = $5, y = $6, w = $7, h = $8
		WHERE id = $1`,
		s.ID, s.Name, s.ImgURL, s.URL, s.X, s.Y, s.W, s.H)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *SponsorPostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM sponsor WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanSponsor(row pgx.Row) (*Sponsor, error) {
	var s Sponsor
	err := row.Scan(&s.ID, &s.Name, &s.ImgURL, &s.URL, &s.X, &s.Y, &s.W, &s.H, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
