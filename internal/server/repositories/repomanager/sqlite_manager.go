package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/migrations"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/archived"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/buckets"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/events"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	// SQL driver name registered by modernc.org/sqlite.
	SQLiteSQLDriver = "sqlite"
)

// SQLiteRepositoryManager vends repositories over an embedded SQLite file.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Events(db dbx.DBTX) events.Repository {
	return events.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Archive(db dbx.DBTX) archived.Repository {
	return archived.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Buckets(db dbx.DBTX) buckets.Repository {
	return buckets.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RetryPolicy() dbx.RetryPolicy {
	return dbx.SQLiteRetryPolicy
}

// RunMigrations applies the embedded sqlite migrations.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "sqlite")
}
