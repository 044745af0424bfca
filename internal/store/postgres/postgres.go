// Package postgres stores form meta and site keys in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS webform_postmeta (
	meta_id    BIGSERIAL PRIMARY KEY,
	post_id    BIGINT NOT NULL,
	meta_key   TEXT   NOT NULL,
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

// Store is a PostgreSQL repository.
type Store struct {
	DB *pgxpool.Pool
}

// New wraps an existing pool.
func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.DB.Close()
	return nil
}

func (s *Store) FindPostIDByToken(ctx context.Context, token string) (int64, bool, error) {
	var postID int64
	err := s.DB.QueryRow(ctx, `SELECT post_id FROM webform_postmeta
WHERE meta_value = $1 AND meta_key = $2 ORDER BY meta_id LIMIT 1`, token, model.KeyToken).Scan(&postID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: find post by token: %w", err)
	}
	return postID, true, nil
}

func (s *Store) PostMeta(ctx context.Context, postID int64) ([]model.Row, error) {
	rows, err := s.DB.Query(ctx, `SELECT meta_key, COALESCE(meta_value, '') FROM webform_postmeta
WHERE post_id = $1 ORDER BY meta_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("postgres: post meta: %w", err)
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		var row model.Row
		if err := rows.Scan(&row.Key, &row.Value); err != nil {
			return nil, fmt.Errorf("postgres: scan post meta: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) MetaValue(ctx context.Context, postID int64, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRow(ctx, `SELECT COALESCE(meta_value, '') FROM webform_postmeta
WHERE post_id = $1 AND meta_key = $2 ORDER BY meta_id LIMIT 1`, postID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: meta value: %w", err)
	}
	return value, true, nil
}

func (s *Store) SiteKey(ctx context.Context, prefix, id string) (apikeys.Key, bool, error) {
	key := apikeys.Key{ID: id}
	err := s.DB.QueryRow(ctx, `SELECT secret, token FROM webform_site_keys
WHERE prefix = $1 AND id = $2`, prefix, id).Scan(&key.Key, &key.Token)
	if errors.Is(err, pgx.ErrNoRows) {
		return apikeys.Key{}, false, nil
	}
	if err != nil {
		return apikeys.Key{}, false, fmt.Errorf("postgres: site key: %w", err)
	}
	return key, true, nil
}

// PutMeta appends rows to a post in order.
func (s *Store) PutMeta(ctx context.Context, postID int64, rows ...model.Row) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, row := range rows {
		if _, err := tx.Exec(ctx, `INSERT INTO webform_postmeta (post_id, meta_key, meta_value)
VALUES ($1, $2, $3)`, postID, row.Key, row.Value); err != nil {
			return fmt.Errorf("postgres: insert meta %q: %w", row.Key, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// PutSiteKey inserts or replaces a site key.
func (s *Store) PutSiteKey(ctx context.Context, prefix string, key apikeys.Key) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO webform_site_keys (prefix, id, secret, token)
VALUES ($1, $2, $3, $4)
ON CONFLICT (prefix, id) DO UPDATE SET secret = EXCLUDED.secret, token = EXCLUDED.token`,
		prefix, key.ID, key.Key, key.Token)
	if err != nil {
		return fmt.Errorf("postgres: put site key: %w", err)
	}
	return nil
}
