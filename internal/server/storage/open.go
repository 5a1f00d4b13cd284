// Package storage opens the configured database and brings its schema up
// to date.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open connects to dsn with driver ("postgres" or "sqlite"), pings it and
// runs the embedded migrations. The caller owns the returned *sql.DB.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	repos, err := repomanager.New(driver)
	if err != nil {
		return nil, nil, err
	}

	sqlDriver := repomanager.PostgresSQLDriver
	if driver == repomanager.DriverSQLite {
		sqlDriver = repomanager.SQLiteSQLDriver
	}

	db, err := sqlOpen(sqlDriver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps
	// ":memory:" databases alive across calls.
	if driver == repomanager.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return db, repos, nil
}
