// Package sqlite stores form meta and site keys in SQLite through the pure Go
// modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/model"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS webform_postmeta (
	meta_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id    INTEGER NOT NULL,
	meta_key   TEXT    NOT NULL,
	meta_value TEXT
);
CREATE INDEX IF NOT EXISTS webform_postmeta_lookup ON webform_postmeta (meta_key, meta_value);
CREATE INDEX IF NOT EXISTS webform_postmeta_post ON webform_postmeta (post_id, meta_id);
CREATE TABLE IF NOT EXISTS webform_site_keys (
	prefix TEXT NOT NULL,
	id     TEXT NOT NULL,
	secret TEXT NOT NULL DEFAULT '',
	token  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (prefix, id)
);`

// Store is a SQLite repository.
type Store struct {
	DB *sql.DB
}

// Open opens dsn and applies the schema. A blank dsn opens MemoryDSN.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	s := &Store{DB: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) FindPostIDByToken(ctx context.Context, token string) (int64, bool, error) {
	var postID int64
	err := s.DB.QueryRowContext(ctx, `SELECT post_id FROM webform_postmeta
WHERE meta_value = ? AND meta_key = ? ORDER BY meta_id LIMIT 1`, token, model.KeyToken).Scan(&postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite: find post by token: %w", err)
	}
	return postID, true, nil
}

func (s *Store) PostMeta(ctx context.Context, postID int64) ([]model.Row, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT meta_key, meta_value FROM webform_postmeta
WHERE post_id = ? ORDER BY meta_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: post meta: %w", err)
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		var row model.Row
		var value sql.NullString
		if err := rows.Scan(&row.Key, &value); err != nil {
			return nil, fmt.Errorf("sqlite: scan post meta: %w", err)
		}
		row.Value = value.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) MetaValue(ctx context.Context, postID int64, key string) (string, bool, error) {
	var value sql.NullString
	err := s.DB.QueryRowContext(ctx, `SELECT meta_value FROM webform_postmeta
WHERE post_id = ? AND meta_key = ? ORDER BY meta_id LIMIT 1`, postID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: meta value: %w", err)
	}
	return value.String, true, nil
}

func (s *Store) SiteKey(ctx context.Context, prefix, id string) (apikeys.Key, bool, error) {
	key := apikeys.Key{ID: id}
	err := s.DB.QueryRowContext(ctx, `SELECT secret, token FROM webform_site_keys
WHERE prefix = ? AND id = ?`, prefix, id).Scan(&key.Key, &key.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return apikeys.Key{}, false, nil
	}
	if err != nil {
		return apikeys.Key{}, false, fmt.Errorf("sqlite: site key: %w", err)
	}
	return key, true, nil
}

// PutMeta appends rows to a post in order.
func (s *Store) PutMeta(ctx context.Context, postID int64, rows ...model.Row) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO webform_postmeta (post_id, meta_key, meta_value)
VALUES (?, ?, ?)`, postID, row.Key, row.Value); err != nil {
			return fmt.Errorf("sqlite: insert meta %q: %w", row.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// PutSiteKey inserts or replaces a site key.
func (s *Store) PutSiteKey(ctx context.Context, prefix string, key apikeys.Key) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO webform_site_keys (prefix, id, secret, token)
VALUES (?, ?, ?, ?)
ON CONFLICT (prefix, id) DO UPDATE SET secret = excluded.secret, token = excluded.token`,
		prefix, key.ID, key.Key, key.Token)
	if err != nil {
		return fmt.Errorf("sqlite: put site key: %w", err)
	}
	return nil
}
