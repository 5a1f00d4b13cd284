package archived

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/converter"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// SQLiteRepository keeps archived_at as RFC 3339 text.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, a *models.ArchivedEvent) error {
	doc, err := converter.ToDocument(a.Event, a.ArchivedAt)
	if err != nil {
		return err
	}

	query := `insert into archived_events (id, doc, archived_at) values (?, ?, ?)
		on conflict(id) do update set doc = excluded.doc, archived_at = excluded.archived_at`
	at := a.ArchivedAt.UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx, query, a.Event.ID, string(doc), at); err != nil {
		return fmt.Errorf("failed to archive event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.ArchivedEvent, error) {
	var doc []byte
	var at string

	err := r.db.QueryRowContext(ctx, `select doc, archived_at from archived_events where id=?`, id).Scan(&doc, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	archivedAt, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("bad archived_at %q: %w", at, err)
	}
	e, err := converter.FromDocument(id, doc)
	if err != nil {
		return nil, err
	}
	e.IsArchived = true
	return &models.ArchivedEvent{Event: e, ArchivedAt: archivedAt}, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from archived_events where id=?`, id); err != nil {
		return fmt.Errorf("failed to delete archived event: %w", err)
	}
	return nil
}
