// Package archive holds the archive partition: events moved out of the live
// table once they are old enough, and the sweeper that moves them.
package archive

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
)

// Store keeps archived copies of events.
type Store interface {
	Put(ctx context.Context, a *models.ArchivedEvent) error
	// Get returns common.ErrorNotFound when no archived copy exists.
	Get(ctx context.Context, id string) (*models.ArchivedEvent, error)
	// Delete removes the archived copy; a missing copy is not an error.
	Delete(ctx context.Context, id string) error
}

// DBStore keeps archived copies in the archived_events table of the main
// database.
type DBStore struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewDBStore(db *sql.DB, repos repomanager.RepositoryManager) *DBStore {
	return &DBStore{db: db, repos: repos}
}

func (s *DBStore) Put(ctx context.Context, a *models.ArchivedEvent) error {
	return s.repos.RetryPolicy().Do(ctx, func() error {
		return s.repos.Archive(s.db).Put(ctx, a)
	})
}

func (s *DBStore) Get(ctx context.Context, id string) (*models.ArchivedEvent, error) {
	return s.repos.Archive(s.db).Get(ctx, id)
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	return dbx.WithTxRetry(ctx, s.db, nil, s.repos.RetryPolicy(), func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Archive(tx).Delete(ctx, id)
	})
}
