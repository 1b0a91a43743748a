// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package show

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/disk"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// PostgresStore is the production show Store. Slots are hydrated
// through the disk store so the ballot always carries current disc
// state.
type PostgresStore struct {
	db    *pgxpool.Pool
	disks disk.Store
}

func NewPostgresStore(db *pgxpool.Pool, disks disk.Store) *PostgresStore {
	return &PostgresStore{db: db, disks: disks}
}

const showColumns = `
	id, state, film_1, film_2, film_3, vote_cnt_1, vote_cnt_2,
	vote_cnt_3, participant_list, remarks, created_at`

func (store *PostgresStore) All(ctx context.Context) ([]*Show, error) {
	rows, err := store.db.Query(ctx, `SELECT`+showColumns+` FROM film_show ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shows []*Show
	for rows.Next() {
		s, err := store.scanShow(ctx, rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Show, error) {
	row := store.db.QueryRow(ctx, `SELECT`+showColumns+` FROM film_show WHERE id = $1`, id)
	return store.scanShow(ctx, row)
}

func (store *PostgresStore) Latest(ctx context.Context) (*Show, error) {
	row := store.db.QueryRow(ctx,
		`SELECT`+showColumns+` FROM film_show ORDER BY id DESC LIMIT 1`)
	return store.scanShow(ctx, row)
}

func (store *PostgresStore) OpenCount(ctx context.Context) (int, error) {
	var count int
	err := store.db.QueryRow(ctx,
		`SELECT count(*) FROM film_show WHERE state = $1`, StateOpen).Scan(&count)
	return count, err
}

func (store *PostgresStore) ReferencesDisk(ctx context.Context, diskID int64) (bool, error) {
	var referenced bool
	err := store.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM film_show
			WHERE film_1 = $1 OR film_2 = $1 OR film_3 = $1
		)`, diskID).Scan(&referenced)
	return referenced, err
}

func (store *PostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('film_show', 'id'))`).Scan(&id)
	return id, err
}

func (store *PostgresStore) Insert(ctx context.Context, s *Show) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO film_show (
			id, state, film_1, film_2, film_3, vote_cnt_1, vote_cnt_2,
			vote_cnt_3, participant_list, remarks, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.State, s.SlotIDs[0], s.SlotIDs[1], s.SlotIDs[2],
		s.VoteCounts[0], s.VoteCounts[1], s.VoteCounts[2],
		s.Participants, s.Remarks, s.CreatedAt)
	return err
}

func (store *PostgresStore) Update(ctx context.Context, s *Show) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE film_show SET
			state = $2, film_1 = $3, film_2 = $4, film_3 = $5,
			vote_cnt_1 = $6, vote_cnt_2 = $7, vote_cnt_3 = $8,
			participant_list = $9, remarks = $10
		WHERE id = $1`,
		s.ID, s.State, s.SlotIDs[0], s.SlotIDs[1], s.SlotIDs[2],
		s.VoteCounts[0], s.VoteCounts[1], s.VoteCounts[2],
		s.Participants, s.Remarks)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM film_show WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) scanShow(ctx context.Context, row pgx.Row) (*Show, error) {
	var s Show
	err := row.Scan(
		&s.ID, &s.State, &s.SlotIDs[0], &s.SlotIDs[1], &s.SlotIDs[2],
		&s.VoteCounts[0], &s.VoteCounts[1], &s.VoteCounts[2],
		&s.Participants, &s.Remarks, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	for i, id := range s.SlotIDs {
		if id == nil {
			continue
		}
		d, err := store.disks.Get(ctx, *id)
		if err != nil {
			if err == dberr.ErrNotFound {
				continue
			}
			return nil, err
		}
		s.Slots[i] = d
	}
	return &s, nil
}
