// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, entity_type, action, entity_id, affected_user, acting_admin, content, created_at`

func (store *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_log (entity_type, action, entity_id, affected_user, acting_admin, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := store.db.QueryRow(ctx, query,
		entry.EntityType, entry.Action, entry.EntityID,
		entry.AffectedUser, entry.ActingAdmin, entry.Content,
	).Scan(&entry.ID, &entry.CreatedAt)
	return dberr.Wrap(err, "append_audit_entry")
}

func (store *PostgresStore) History(ctx context.Context, entityType string, entityID int64, action string) ([]*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
	`
	args := []any{entityType, entityID}

	if action != "" {
		query += ` AND action = $3`
		args = append(args, action)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := store.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "history")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.EntityType, &e.Action, &e.EntityID,
			&e.AffectedUser, &e.ActingAdmin, &e.Content, &e.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_audit_entry")
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (store *PostgresStore) List(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	where := ` WHERE TRUE`
	args := []any{}

	appendClause := func(clause string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(clause, len(args))
	}

	if filter.EntityType != "" {
		appendClause(` AND entity_type = $%d`, filter.EntityType)
	}
	if filter.Action != "" {
		appendClause(` AND action = $%d`, filter.Action)
	}
	if filter.EntityID != 0 {
		appendClause(` AND entity_id = $%d`, filter.EntityID)
	}
	if filter.AffectedUser != "" {
		appendClause(` AND affected_user = $%d`, filter.AffectedUser)
	}

	var total int
	if err := store.db.QueryRow(ctx, `SELECT count(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_audit_entries")
	}

	query := `SELECT ` + entryColumns + ` FROM audit_log` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := store.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_audit_entries")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.EntityType, &e.Action, &e.EntityID,
			&e.AffectedUser, &e.ActingAdmin, &e.Content, &e.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_audit_entry")
		}
		entries = append(entries, e)
	}

	return entries, total, nil
}

func (store *PostgresStore) ChangedSince(ctx context.Context, entityType string, actions []string, since time.Time) ([]int64, error) {
	// Strictly greater than: an entry exactly at the window boundary is
	// not reported.
	query := `
		SELECT DISTINCT entity_id
		FROM audit_log
		WHERE entity_type = $1 AND action = ANY($2) AND created_at > $3
		ORDER BY entity_id
	`

	rows, err := store.db.Query(ctx, query, entityType, actions, since)
	if err != nil {
		return nil, dberr.Wrap(err, "changed_since")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_changed_id")
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (store *PostgresStore) DeleteForEntity(ctx context.Context, entityType string, entityID int64) error {
	_, err := store.db.Exec(ctx,
		`DELETE FROM audit_log WHERE entity_type = $1 AND entity_id = $2`,
		entityType, entityID,
	)
	return dberr.Wrap(err, "delete_audit_entries")
}
