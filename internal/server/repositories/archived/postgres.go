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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, a *models.ArchivedEvent) error {
	doc, err := converter.ToDocument(a.Event, a.ArchivedAt)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO archived_events (id, doc, archived_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (id)
		DO UPDATE SET doc = EXCLUDED.doc, archived_at = EXCLUDED.archived_at
	`
	if _, err := r.db.ExecContext(ctx, query, a.Event.ID, string(doc), a.ArchivedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.ArchivedEvent, error) {
	var doc []byte
	var at time.Time

	err := r.db.QueryRowContext(ctx, `SELECT doc, archived_at FROM archived_events WHERE id = $1`, id).Scan(&doc, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	e, err := converter.FromDocument(id, doc)
	if err != nil {
		return nil, err
	}
	e.IsArchived = true
	return &models.ArchivedEvent{Event: e, ArchivedAt: at}, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM archived_events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
