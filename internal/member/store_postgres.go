// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package member

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// PostgresStore is the production member Store.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const memberColumns = `
	id, itsc, student_id, university_id, mobile, full_name, pen_name,
	member_type, penalized, admin, join_at, expire_at, last_login,
	this_login, login_count, rfs_count`

func (store *PostgresStore) All(ctx context.Context) ([]*Member, error) {
	rows, err := store.db.Query(ctx, `SELECT`+memberColumns+` FROM member ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Member, error) {
	row := store.db.QueryRow(ctx, `SELECT`+memberColumns+` FROM member WHERE id = $1`, id)
	return scanMember(row)
}

func (store *PostgresStore) FindByITSC(ctx context.Context, itsc string) (*Member, error) {
	row := store.db.QueryRow(ctx, `SELECT`+memberColumns+` FROM member WHERE itsc = $1`, itsc)
	return scanMember(row)
}

func (store *PostgresStore) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := store.db.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('member', 'id'))`).Scan(&id)
	return id, err
}

func (store *PostgresStore) Insert(ctx context.Context, m *Member) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO member (
			id, itsc, student_id, university_id, mobile, full_name,
			pen_name, member_type, penalized, admin, join_at, expire_at,
			last_login, this_login, login_count, rfs_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		m.ID, m.ITSC, m.StudentID, m.UniversityID, m.Mobile, m.FullName,
		m.PenName, m.MemberType, m.Penalized, m.Admin, m.JoinAt, m.ExpireAt,
		m.LastLogin, m.ThisLogin, m.LoginCount, m.RFSCount)
	return err
}

func (store *PostgresStore) Update(ctx context.Context, m *Member) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE member SET
			itsc = $2, student_id = $3, university_id = $4, mobile = $5,
			full_name = $6, pen_name = $7, member_type = $8,
			penalized = $9, admin = $10, join_at = $11, expire_at = $12,
			last_login = $13, this_login = $14, login_count = $15,
			rfs_count = $16
		WHERE id = $1`,
		m.ID, m.ITSC, m.StudentID, m.UniversityID, m.Mobile, m.FullName,
		m.PenName, m.MemberType, m.Penalized, m.Admin, m.JoinAt, m.ExpireAt,
		m.LastLogin, m.ThisLogin, m.LoginCount, m.RFSCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := store.db.Exec(ctx, `DELETE FROM member WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE member SET
			last_login = this_login,
			this_login = $2,
			login_count = login_count + 1
		WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) Expiring(ctx context.Context, cutoff time.Time) ([]*Member, error) {
	rows, err := store.db.Query(ctx, `
		SELECT`+memberColumns+`
		FROM member
		WHERE member_type <> $1 AND expire_at IS NOT NULL AND expire_at <= $2
		ORDER BY id`, TypeExpired, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func scanMembers(rows pgx.Rows) ([]*Member, error) {
	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.ITSC, &m.StudentID, &m.UniversityID, &m.Mobile,
		&m.FullName, &m.PenName, &m.MemberType, &m.Penalized, &m.Admin,
		&m.JoinAt, &m.ExpireAt, &m.LastLogin, &m.ThisLogin, &m.LoginCount,
		&m.RFSCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
