// Package store opens the form meta and site key repositories backing the
// webform server.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-webform/internal/store/postgres"
	"github.com/goliatone/go-webform/internal/store/sqlite"
	"github.com/goliatone/go-webform/pkg/apikeys"
	"github.com/goliatone/go-webform/pkg/metastore"
	"github.com/goliatone/go-webform/pkg/model"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository is the persistence contract shared by every driver.
type Repository interface {
	metastore.Repository
	apikeys.KeyRepository

	Migrate(ctx context.Context) error
	PutMeta(ctx context.Context, postID int64, rows ...model.Row) error
	PutSiteKey(ctx context.Context, prefix string, key apikeys.Key) error
	Close() error
}

var (
	_ Repository = (*postgres.Store)(nil)
	_ Repository = (*sqlite.Store)(nil)
)

// Open connects to driver at dsn.
func Open(ctx context.Context, driver, dsn string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "pgx":
		return postgres.Open(ctx, dsn)
	case DriverSQLite, "":
		return sqlite.Open(ctx, dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
}
