// Package repomanager vends repositories bound to a dbx.DBTX for one storage
// dialect and runs that dialect's schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/archived"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/buckets"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/events"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Events(db dbx.DBTX) events.Repository
	Archive(db dbx.DBTX) archived.Repository
	Buckets(db dbx.DBTX) buckets.Repository
	// RetryPolicy is applied to every write transaction on this backend.
	RetryPolicy() dbx.RetryPolicy
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New returns the manager for driver ("postgres" or "sqlite").
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}
