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

// OneSentence is a film quote shown in rotation on the front page.
type OneSentence struct {
	ID        int64
	Film      string
	Content   string
	CreatedAt time.Time
}

func NewOneSentenceDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:       "onesentence",
		Fields:     []string{"id", "film", "content", "create_time"},
		ReadOnly:   []string{"create_time"},
		ListFields: []string{"id", "film", "content"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"film", "content"},
		},
		DirtyActions: []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
	}
}

type OneSentenceCodec struct{}

func (OneSentenceCodec) New() *OneSentence              { return &OneSentence{CreatedAt: time.Now()} }
func (OneSentenceCodec) ID(o *OneSentence) int64        { return o.ID }
func (OneSentenceCodec) SetID(o *OneSentence, id int64) { o.ID = id }

func (OneSentenceCodec) Fields(o *OneSentence) resource.Record {
	return resource.Record{
		"id":          o.ID,
		"film":        o.Film,
		"content":     o.Content,
		"create_time": o.CreatedAt,
	}
}

func (OneSentenceCodec) Apply(o *OneSentence, payload resource.Record) error {
	stringInto(payload, "film", &o.Film)
	stringInto(payload, "content", &o.Content)
	return nil
}

func (OneSentenceCodec) Label(o *OneSentence) string    { return "one sentence from " + o.Film }
func (OneSentenceCodec) Subject(o *OneSentence) *string { return nil }

type OneSentenceHooks struct {
	resource.NopHooks[OneSentence]
}

func (OneSentenceHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *OneSentence) error {
	v := validate.New()
	if s, ok := payload["film"].(string); ok || current == nil {
		v.Required("film", s, "Origin Film Missing")
	}
	if s, ok := payload["content"].(string); ok || current == nil {
		v.Required("content", s, "Content Missing")
	}
	return v.Err()
}

// OneSentencePostgresStore is the production quote Store.
type OneSentencePostgresStore struct {
	db *pgxpool.Pool
}

func NewOneSentencePostgresStore(db *pgxpool.Pool) *OneSentencePostgresStore {
	return &OneSentencePostgresStore{db: db}
}

func (store *OneSentencePostgresStore) All(ctx context.Context) ([]*OneSentence, error) {
	rows, err := store.db.Query(ctx,
		`SELECT id, film, content, created_at FROM one_sentence ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*OneSentence
	for rows.Next() {
		o, err := scanOneSentence(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (store *OneSentencePostgresStore) Get(ctx context.Context, id int64) (*OneSentence, error) {
	row := store.db.QueryRow(ctx,
		`SELECT id, film, content, created_at FROM one_sentence WHERE id = $1`, id)
	return scanOneSentence(row)
}

func (store *OneSentencePostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('one_sentence', 'id'))`).Scan(&id)
	return id, err
}

func (store *OneSentencePostgresStore) Insert(ctx context.Context, o *OneSentence) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO one_sentence (id, film, content, created_at)
		VALUES ($1, $2, $3, $4)`,
		o.ID, o.Film, o.Content, o.CreatedAt)
	return err
}

func (store *OneSentencePostgresStore) Update(ctx context.Context, o *OneSentence) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE one_sentence SET film = $2, content = $3 WHERE id = $1`,
		o.ID, o.Film, o.Content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *OneSentencePostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM one_sentence WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanOneSentence(row pgx.Row) (*OneSentence, error) {
	var o OneSentence
	err := row.Scan(&o.ID, &o.Film, &o.Content, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
