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

// News is an announcement post on the front page.
type News struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
}

func NewNewsDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:       "news",
		Fields:     []string{"id", "title", "content", "create_time"},
		ReadOnly:   []string{"create_time"},
		ListFields: []string{"id", "title", "create_time"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"title", "content"},
		},
		DirtyActions: []string{audit.ActionCreate, audit.ActionEdit, audit.ActionDelete},
	}
}

type NewsCodec struct{}

func (NewsCodec) New() *News              { return &News{CreatedAt: time.Now()} }
func (NewsCodec) ID(n *News) int64        { return n.ID }
func (NewsCodec) SetID(n *News, id int64) { n.ID = id }

func (NewsCodec) Fields(n *News) resource.Record {
	return resource.Record{
		"id":          n.ID,
		"title":       n.Title,
		"content":     n.Content,
		"create_time": n.CreatedAt,
	}
}

func (NewsCodec) Apply(n *News, payload resource.Record) error {
	stringInto(payload, "title", &n.Title)
	stringInto(payload, "content", &n.Content)
	return nil
}

func (NewsCodec) Label(n *News) string    { return "news " + n.Title }
func (NewsCodec) Subject(n *News) *string { return nil }

type NewsHooks struct {
	resource.NopHooks[News]
}

func (NewsHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *News) error {
	v := validate.New()
	if s, ok := payload["title"].(string); ok || current == nil {
		v.Required("title", s, "Title Missing")
	}
	if s, ok := payload["content"].(string); ok || current == nil {
		v.Required("content", s, "Content Missing")
	}
	return v.Err()
}

// NewsPostgresStore is the production news Store.
type NewsPostgresStore struct {
	db *pgxpool.Pool
}

func NewNewsPostgresStore(db *pgxpool.Pool) *NewsPostgresStore {
	return &NewsPostgresStore{db: db}
}

func (store *NewsPostgresStore) All(ctx context.Context) ([]*News, error) {
	rows, err := store.db.Query(ctx,
		`SELECT id, title, content, created_at FROM news ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (store *NewsPostgresStore) Get(ctx context.Context, id int64) (*News, error) {
	row := store.db.QueryRow(ctx,
		`SELECT id, title, content, created_at FROM news WHERE id = $1`, id)
	return scanNews(row)
}

func (store *NewsPostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('news', 'id'))`).Scan(&id)
	return id, err
}

func (store *NewsPostgresStore) Insert(ctx context.Context, n *News) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO news (id, title, content, created_at)
		VALUES ($1, $2, $3, $4)`,
		n.ID, n.Title, n.Content, n.CreatedAt)
	return err
}

func (store *NewsPostgresStore) Update(ctx context.Context, n *News) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE news SET title = $2, content = $3 WHERE id = $1`,
		n.ID, n.Title, n.Content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *NewsPostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanNews(row pgx.Row) (*News, error) {
	var n News
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
