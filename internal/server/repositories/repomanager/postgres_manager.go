package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/migrations"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/archived"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/buckets"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/events"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	DriverPostgres = "postgres"
	// SQL driver name registered by pgx/v5/stdlib.
	PostgresSQLDriver = "pgx"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Events(db dbx.DBTX) events.Repository {
	return events.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Archive(db dbx.DBTX) archived.Repository {
	return archived.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Buckets(db dbx.DBTX) buckets.Repository {
	return buckets.NewPostgresRepository(db)
}

// RetryPolicy never retries; Postgres reports conflicts as real errors.
func (m *PostgresRepositoryManager) RetryPolicy() dbx.RetryPolicy {
	return dbx.RetryPolicy{}
}

// RunMigrations applies the embedded postgres migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Postgres)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "postgres")
}
