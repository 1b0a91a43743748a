// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package ticket

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// PostgresStore is the production ticket Store.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = `
	id, state, title_en, title_ch, desc_en, desc_ch, apply_deadline, created_at`

func (store *PostgresStore) All(ctx context.Context) ([]*Ticket, error) {
	rows, err := store.db.Query(ctx,
		`SELECT`+ticketColumns+` FROM ticket ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Ticket, error) {
	row := store.db.QueryRow(ctx,
		`SELECT`+ticketColumns+` FROM ticket WHERE id = $1`, id)
	return scanTicket(row)
}

func (store *PostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('ticket', 'id'))`).Scan(&id)
	return id, err
}

func (store *PostgresStore) Insert(ctx context.Context, t *Ticket) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO ticket (id, state, title_en, title_ch, desc_en, desc_ch, apply_deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.State, t.TitleEn, t.TitleCh, t.DescEn, t.DescCh, t.ApplyDeadline, t.CreatedAt)
	return err
}

func (store *PostgresStore) Update(ctx context.Context, t *Ticket) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE ticket
		SET state = $2, title_en = $3, title_ch = $4, desc_en = $5,
			desc_ch = $6, apply_deadline = $7
		WHERE id = $1`,
		t.ID, t.State, t.TitleEn, t.TitleCh, t.DescEn, t.DescCh, t.ApplyDeadline)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM ticket WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(
		&t.ID, &t.State, &t.TitleEn, &t.TitleCh, &t.DescEn, &t.DescCh,
		&t.ApplyDeadline, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
