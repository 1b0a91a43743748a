// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/audit"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/validate"
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// File is the metadata record of an uploaded asset (covers, documents,
// sponsor logos). The bytes themselves live on the static host; Key is
// the storage name assigned at creation and never changes afterwards.
type File struct {
	ID        int64
	Name      string
	Key       string
	URL       string
	CreatedAt time.Time
}

func NewFileDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:       "file",
		Fields:     []string{"id", "name", "key", "url", "create_time"},
		ReadOnly:   []string{"key", "create_time"},
		ListFields: []string{"id", "name", "url", "create_time"},
		SearchGroups: map[string][]string{
			resource.DefaultSearchGroup: {"name"},
		},
		DirtyActions:       []string{audit.ActionCreate, audit.ActionDelete},
		AdminOnlyFeed:      true,
		PurgeAuditOnDelete: true,
	}
}

type FileCodec struct{}

func (FileCodec) New() *File              { return &File{CreatedAt: time.Now()} }
func (FileCodec) ID(f *File) int64        { return f.ID }
func (FileCodec) SetID(f *File, id int64) { f.ID = id }

func (FileCodec) Fields(f *File) resource.Record {
	return resource.Record{
		"id":          f.ID,
		"name":        f.Name,
		"key":         f.Key,
		"url":         f.URL,
		"create_time": f.CreatedAt,
	}
}

func (FileCodec) Apply(f *File, payload resource.Record) error {
	stringInto(payload, "name", &f.Name)
	stringInto(payload, "url", &f.URL)
	return nil
}

func (FileCodec) Label(f *File) string    { return "file " + f.Name }
func (FileCodec) Subject(f *File) *string { return nil }

// FileHooks assigns the storage key on creation. UUIDv7 keys sort by
// upload time on the static host.
type FileHooks struct {
	resource.NopHooks[File]
}

func (FileHooks) Validate(ctx context.Context, rc resource.RequestContext, payload resource.Record, current *File) error {
	v := validate.New()
	if s, ok := payload["name"].(string); ok || current == nil {
		v.Required("name", s, "File name Missing")
	}
	return v.Err()
}

func (FileHooks) BeforeSave(ctx context.Context, rc resource.RequestContext, f *File, _ resource.Record) error {
	if f.Key != "" {
		return nil
	}
	key, err := uuid.NewV7()
	if err != nil {
		return err
	}
	f.Key = key.String()
	return nil
}

// FilePostgresStore is the production file metadata Store.
type FilePostgresStore struct {
	db *pgxpool.Pool
}

func NewFilePostgresStore(db *pgxpool.Pool) *FilePostgresStore {
	return &FilePostgresStore{db: db}
}

const fileColumns = `id, name, key, url, created_at`

func (store *FilePostgresStore) All(ctx context.Context) ([]*File, error) {
	rows, err := store.db.Query(ctx,
		`SELECT `+fileColumns+` FROM file ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (store *FilePostgresStore) Get(ctx context.Context, id int64) (*File, error) {
	row := store.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM file WHERE id = $1`, id)
	return scanFile(row)
}

func (store *FilePostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('file', 'id'))`).Scan(&id)
	return id, err
}

func (store *FilePostgresStore) Insert(ctx context.Context, f *File) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO file (id, name, key, url, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.Name, f.Key, f.URL, f.CreatedAt)
	return err
}

func (store *FilePostgresStore) Update(ctx context.Context, f *File) error {
	tag, err := store.db.Exec(ctx,
		`UPDATE file SET name = $2, url = $3 WHERE id = $1`,
		f.ID, f.Name, f.URL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *FilePostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM file WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanFile(row pgx.Row) (*File, error) {
	var f File
	err := row.Scan(&f.ID, &f.Name, &f.Key, &f.URL, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}
