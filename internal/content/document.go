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

// Document is a downloadable society document (constitution, AGM
// minutes and the like). The file itself lives behind DocURL.
type Document struct {
	ID        int64
	Title     string
	DocURL    string
	CreatedAt time.Time
}

func NewDocumentDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:       "document",
		Fields:     []string{"id", "title", "doc_url", "create_time"},
		ReadOnly:   []string{"create_time"},
		ListFields: []string{"id", "title", "doc_url", "create_time"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"title"},
		},
		DirtyActions: []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
	}
}

type DocumentCodec struct{}

func (DocumentCodec) New() *Document              { return &Document{CreatedAt: time.Now()} }
func (DocumentCodec) ID(d *Document) int64        { return d.ID }
func (DocumentCodec) SetID(d *Document, id int64) { d.ID = id }

func (DocumentCodec) Fields(d *Document) resource.Record {
	return resource.Record{
		"id":          d.ID,
		"title":       d.Title,
		"doc_url":     d.DocURL,
		"create_time": d.CreatedAt,
	}
}

func (DocumentCodec) Apply(d *Document, payload resource.Record) error {
	stringInto(payload, "title", &d.Title)
	stringInto(payload, "doc_url", &d.DocURL)
	return nil
}

func (DocumentCodec) Label(d *Document) string    { return "document " + d.Title }
func (DocumentCodec) Subject(d *Document) *string { return nil }

type DocumentHooks struct {
	resource.NopHooks[Document]
}

func (DocumentHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *Document) error {
	v := validate.New()
	if s, ok := payload["title"].(string); ok || current == nil {
		v.Required("title", s, "Title Missing")
	}
	return v.Err()
}

// DocumentPostgresStore is the production document Store.
type DocumentPostgresStore struct {
	db *pgxpool.Pool
}

func NewDocumentPostgresStore(db *pgxpool.Pool) *DocumentPostgresStore {
	return &DocumentPostgresStore{db: db}
}

func (store *DocumentPostgresStore) All(ctx context.Context) ([]*Document, error) {
	rows, err := store.db.Query(ctx,
		`SELECT id, title, doc_url, created_at FROM document ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (store *DocumentPostgresStore) Get(ctx context.Context, id int64) (*Document, error) {
	row := store.db.QueryRow(ctx,
		`SELECT id, title, doc_url, created_at FROM document WHERE id = $1`, id)
	return scanDocument(row)
}

func (store *DocumentPostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('document', 'id'))`).Scan(&id)
	return id, err
}

func (store *DocumentPostgresStore) Insert(ctx context.Context, d *Document) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO document (id, title, doc_url, created_at)
		VALUES ($1, $2, $3, $4)`,
		d.ID, d.Title, d.DocURL, d.CreatedAt)
	return err
}

func (store *DocumentPostgresStore) Update(ctx context.Context, d *Document) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE document SET title = $2, doc_url = $3 WHERE id = $1`,
		d.ID, d.Title, d.DocURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *DocumentPostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM document WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Title, &d.DocURL, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
