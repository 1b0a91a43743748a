// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package site

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/dberr"
)

// PostgresStore persists settings in a key/value table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := store.db.QueryRow(ctx,
		`SELECT value FROM site_settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", dberr.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (store *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := store.db.Exec(ctx, `
		INSERT INTO site_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}

func (store *PostgresStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := store.db.Query(ctx, `SELECT key, value FROM site_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
