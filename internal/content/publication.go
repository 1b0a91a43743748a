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

// Publication kinds.
const (
	PubMagazine      = "Magazine"
	PubMicroMagazine = "MicroMagazine"
)

// Publication is an issue of the society magazine or micro-magazine.
type Publication struct {
	ID        int64
	Title     string
	PubType   string
	DocURL    string
	CoverURL  string
	CreatedAt time.Time
}

func NewPublicationDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:         "publication",
		Fields:       []string{"id", "title", "pub_type", "doc_url", "cover_url", "create_time"},
		ReadOnly:     []string{"create_time"},
		ListFields:   []string{"id", "title", "pub_type", "cover_url", "create_time"},
		FilterFields: []string{"pub_type"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"title"},
		},
		DirtyActions: []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
	}
}

type PublicationCodec struct{}

func (PublicationCodec) New() *Publication              { return &Publication{CreatedAt: time.Now()} }
func (PublicationCodec) ID(p *Publication) int64        { return p.ID }
func (PublicationCodec) SetID(p *Publication, id int64) { p.ID = id }

func (PublicationCodec) Fields(p *Publication) resource.Record {
	return resource.Record{
		"id":          p.ID,
		"title":       p.Title,
		"pub_type":    p.PubType,
		"doc_url":     p.DocURL,
		"cover_url":   p.CoverURL,
		"create_time": p.CreatedAt,
	}
}

func (PublicationCodec) Apply(p *Publication, payload resource.Record) error {
	stringInto(payload, "title", &p.Title)
	stringInto(payload, "pub_type", &p.PubType)
	stringInto(payload, "doc_url", &p.DocURL)
	stringInto(payload, "cover_url", &p.CoverURL)
	return nil
}

func (PublicationCodec) Label(p *Publication) string    { return "publication " + p.Title }
func (PublicationCodec) Subject(p *Publication) *string { return nil }

type PublicationHooks struct {
	resource.NopHooks[Publication]
}

func (PublicationHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *Publication) error {
	v := validate.New()
	if s, ok := payload["title"].(string); ok || current == nil {
		v.Required("title", s, "Title Missing")
	}
	if s, ok := payload["pub_type"].(string); ok || current == nil {
		v.Required("pub_type", s, "Type Missing")
		if s != "" {
			v.OneOf("pub_type", s, "Invalid Type", PubMagazine, PubMicroMagazine)
		}
	}
	return v.Err()
}

// PublicationPostgresStore is the production publication Store.
type PublicationPostgresStore struct {
	db *pgxpool.Pool
}

func NewPublicationPostgresStore(db *pgxpool.Pool) *PublicationPostgresStore {
	return &PublicationPostgresStore{db: db}
}

const publicationColumns = `id, title, pub_type, doc_url, cover_url, created_at`

func (store *PublicationPostgresStore) All(ctx context.Context) ([]*Publication, error) {
	rows, err := store.db.Query(ctx,
		`SELECT `+publicationColumns+` FROM publication ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (store *PublicationPostgresStore) Get(ctx context.Context, id int64) (*Publication, error) {
	row := store.db.QueryRow(ctx,
		`SELECT `+publicationColumns+` FROM publication WHERE id = $1`, id)
	return scanPublication(row)
}

func (store *PublicationPostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('publication', 'id'))`).Scan(&id)
	return id, err
}

func (store *PublicationPostgresStore) Insert(ctx context.Context, p *Publication) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO publication (id, title, pub_type, doc_url, cover_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Title, p.PubType, p.DocURL, p.CoverURL, p.CreatedAt)
	return err
}

func (store *PublicationPostgresStore) Update(ctx context.Context, p *Publication) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE publication
		SET title = $2, pub_type = $3, doc_url = $4, cover_url = $5
		WHERE id = $1`,
		p.ID, p.Title, p.PubType, p.DocURL, p.CoverURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PublicationPostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM publication WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanPublication(row pgx.Row) (*Publication, error) {
	var p Publication
	err := row.Scan(&p.ID, &p.Title, &p.PubType, &p.DocURL, &p.CoverURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
