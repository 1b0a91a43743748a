// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/member"
	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// PostgresStore is the production disc Store. Every read hydrates the
// holder and reserver summaries in one query; the lending flow touches
// them on almost every operation.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const diskSelect = `
	SELECT
		d.id, d.disk_type, d.title_en, d.title_ch, d.desc_en, d.desc_ch,
		d.director_en, d.director_ch, d.actors, d.show_year, d.imdb_url,
		d.length, d.category, d.tags, d.cover_url, d.avail_type,
		d.due_at, d.hold_by, d.reserved_by, d.borrow_cnt, d.rank,
		h.id, h.itsc, h.full_name, h.pen_name, h.member_type,
		r.id, r.itsc, r.full_name, r.pen_name, r.member_type
	FROM disk d
	LEFT JOIN member h ON h.id = d.hold_by
	LEFT JOIN member r ON r.id = d.reserved_by`

func (store *PostgresStore) All(ctx context.Context) ([]*Disk, error) {
	rows, err := store.db.Query(ctx, diskSelect+` ORDER BY d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDisks(rows)
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Disk, error) {
	row := store.db.QueryRow(ctx, diskSelect+` WHERE d.id = $1`, id)
	return scanDisk(row)
}

func (store *PostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('disk', 'id'))`).Scan(&id)
	return id, err
}

func (store *PostgresStore) Insert(ctx context.Context, d *Disk) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO disk (
			id, disk_type, title_en, title_ch, desc_en, desc_ch,
			director_en, director_ch, actors, show_year, imdb_url,
			length, category, tags, cover_url, avail_type, due_at,
			hold_by, reserved_by, borrow_cnt, rank
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		d.ID, d.DiskType, d.TitleEn, d.TitleCh, d.DescEn, d.DescCh,
		d.DirectorEn, d.DirectorCh, d.Actors, d.ShowYear, d.ImdbURL,
		d.Length, d.Category, d.Tags, d.CoverURL, d.AvailType, d.DueAt,
		d.HoldByID, d.ReservedByID, d.BorrowCount, d.Rank)
	return err
}

func (store *PostgresStore) Update(ctx context.Context, d *Disk) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE disk SET
			disk_type = $2, title_en = $3, title_ch = $4, desc_en = $5,
			desc_ch = $6, director_en = $7, director_ch = $8,
			actors = $9, show_year = $10, imdb_url = $11, length = $12,
			category = $13, tags = $14, cover_url = $15,
			avail_type = $16, due_at = $17, hold_by = $18,
			reserved_by = $19, borrow_cnt = $20, rank = $21
		WHERE id = $1`,
		d.ID, d.DiskType, d.TitleEn, d.TitleCh, d.DescEn, d.DescCh,
		d.DirectorEn, d.DirectorCh, d.Actors, d.ShowYear, d.ImdbURL,
		d.Length, d.Category, d.Tags, d.CoverURL, d.AvailType, d.DueAt,
		d.HoldByID, d.ReservedByID, d.BorrowCount, d.Rank)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM disk WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) CountReservedBy(ctx context.Context, memberID int64) (int, error) {
	var count int
	err := store.db.QueryRow(ctx, `
		SELECT count(*) FROM disk
		WHERE reserved_by = $1 AND avail_type = ANY($2)`,
		memberID, []string{StateReserved, StateReservedCounter, StateOnDelivery}).Scan(&count)
	return count, err
}

func (store *PostgresStore) CountHeldBy(ctx context.Context, memberID int64) (int, error) {
	var count int
	err := store.db.QueryRow(ctx, `
		SELECT count(*) FROM disk
		WHERE hold_by = $1 AND avail_type = $2`,
		memberID, StateBorrowed).Scan(&count)
	return count, err
}

func (store *PostgresStore) CountActiveFor(ctx context.Context, memberID int64) (int, error) {
	var count int
	err := store.db.QueryRow(ctx, `
		SELECT count(*) FROM disk
		WHERE hold_by = $1 OR reserved_by = $1`, memberID).Scan(&count)
	return count, err
}

func (store *PostgresStore) DueOn(ctx context.Context, date time.Time) ([]*Disk, error) {
	rows, err := store.db.Query(ctx,
		diskSelect+` WHERE d.avail_type = $1 AND d.due_at = $2 ORDER BY d.id`,
		StateBorrowed, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDisks(rows)
}

func (store *PostgresStore) Overdue(ctx context.Context, date time.Time) ([]*Disk, error) {
	rows, err := store.db.Query(ctx,
		diskSelect+` WHERE d.avail_type = $1 AND d.due_at < $2 ORDER BY d.id`,
		StateBorrowed, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDisks(rows)
}

func (store *PostgresStore) InStates(ctx context.Context, states ...string) ([]*Disk, error) {
	rows, err := store.db.Query(ctx,
		diskSelect+` WHERE d.avail_type = ANY($1) ORDER BY d.id`, states)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDisks(rows)
}

func scanDisks(rows pgx.Rows) ([]*Disk, error) {
	var discs []*Disk
	for rows.Next() {
		d, err := scanDisk(rows)
		if err != nil {
			return nil, err
		}
		discs = append(discs, d)
	}
	return discs, rows.Err()
}

func scanDisk(row pgx.Row) (*Disk, error) {
	var d Disk
	var holder, reserver memberSummaryRow
	err := row.Scan(
		&d.ID, &d.DiskType, &d.TitleEn, &d.TitleCh, &d.DescEn, &d.DescCh,
		&d.DirectorEn, &d.DirectorCh, &d.Actors, &d.ShowYear, &d.ImdbURL,
		&d.Length, &d.Category, &d.Tags, &d.CoverURL, &d.AvailType,
		&d.DueAt, &d.HoldByID, &d.ReservedByID, &d.BorrowCount, &d.Rank,
		&holder.id, &holder.itsc, &holder.fullName, &holder.penName, &holder.memberType,
		&reserver.id, &reserver.itsc, &reserver.fullName, &reserver.penName, &reserver.memberType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	d.HoldBy = holder.member()
	d.ReservedBy = reserver.member()
	return &d, nil
}

// memberSummaryRow scans the nullable joined member columns.
type memberSummaryRow struct {
	id         *int64
	itsc       *string
	fullName   *string
	penName    *string
	memberType *string
}

func (r memberSummaryRow) member() *member.Member {
	if r.id == nil {
		return nil
	}
	m := &member.Member{ID: *r.id}
	if r.itsc != nil {
		m.ITSC = *r.itsc
	}
	if r.fullName != nil {
		m.FullName = *r.fullName
	}
	if r.penName != nil {
		m.PenName = *r.penName
	}
	if r.memberType != nil {
		m.MemberType = *r.memberType
	}
	return m
}
