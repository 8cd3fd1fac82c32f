package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS kv_entries (
    path       TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const getEntry = `SELECT value FROM kv_entries WHERE path = $1`

const setEntry = `
INSERT INTO kv_entries (path, value, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (path) DO UPDATE
SET value = EXCLUDED.value, updated_at = now()`

const updateEntry = `
INSERT INTO kv_entries (path, value, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (path) DO UPDATE
SET value = CASE
        WHEN jsonb_typeof(kv_entries.value) = 'object' THEN kv_entries.value || EXCLUDED.value
        ELSE EXCLUDED.value
    END,
    updated_at = now()`

const removeEntries = `
DELETE FROM kv_entries
WHERE path = $1 OR left(path, length($1) + 1) = $1 || '/'`

const listChildren = `
SELECT substr(path, length($1) + 2) AS key, value
FROM kv_entries
WHERE left(path, length($1) + 1) = $1 || '/'
  AND strpos(substr(path, length($1) + 2), '/') = 0`

// Postgres is a Store backed by a single JSONB table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps db and makes sure the entries table exists.
func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if _, err := db.ExecContext(ctx, createEntriesTable); err != nil {
		return nil, fmt.Errorf("failed to create kv_entries table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, path string) (json.RawMessage, error) {
	path, err := validPath(path)
	if err != nil {
		return nil, err
	}

	var value pqtype.NullRawMessage
	if err := p.db.QueryRowContext(ctx, getEntry, path).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", path, err)
	}
	if !value.Valid {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return value.RawMessage, nil
}

func (p *Postgres) Set(ctx context.Context, path string, value any) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", path, err)
	}

	if _, err := p.db.ExecContext(ctx, setEntry, path, string(data)); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, path string, fields map[string]any) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}
	data, err := mergeObject(nil, fields)
	if err != nil {
		return err
	}

	if _, err := p.db.ExecContext(ctx, updateEntry, path, string(data)); err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, path string) error {
	path, err := validPath(path)
	if err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx, removeEntries, path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Debug().Str("path", path).Int64("rows", n).Msg("removed entries")
	}
	return nil
}

func (p *Postgres) Children(ctx context.Context, parent string) (map[string]json.RawMessage, error) {
	parent, err := validPath(parent)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, listChildren, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", parent, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value pqtype.NullRawMessage
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan child of %s: %w", parent, err)
		}
		if value.Valid {
			out[key] = value.RawMessage
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate children of %s: %w", parent, err)
	}
	return out, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
