package events

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// PostgresRepository implements event storage over a dbx.DBTX (*sql.DB or *sql.Tx).
// Documents are stored as JSONB.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces the document stored under e.ID.
func (r *PostgresRepository) Upsert(ctx context.Context, e *models.Event) error {
	rw, err := toRow(e)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO events (id, department_id, related_group_id, recurrence_group_id, recurrence_index, start_date, end_date, doc, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, now())
		ON CONFLICT (id)
		DO UPDATE SET
			department_id = EXCLUDED.department_id,
			related_group_id = EXCLUDED.related_group_id,
			recurrence_group_id = EXCLUDED.recurrence_group_id,
			recurrence_index = EXCLUDED.recurrence_index,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			doc = EXCLUDED.doc,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = r.db.ExecContext(ctx, query,
		rw.id, rw.departmentID, rw.relatedGroupID, rw.recurrenceGroupID, rw.recurrenceIndex, rw.startDate, rw.endDate, rw.doc)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the document; a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the document stored under id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return scanOne(r.db.QueryRowContext(ctx, `SELECT id, doc FROM events WHERE id = $1`, id))
}

// ListByRelatedGroup returns every sibling sharing groupID.
func (r *PostgresRepository) ListByRelatedGroup(ctx context.Context, groupID string) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, doc FROM events WHERE related_group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}

// ListBySeries returns every occurrence sharing seriesID.
func (r *PostgresRepository) ListBySeries(ctx context.Context, seriesID string) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, doc FROM events WHERE recurrence_group_id = $1 ORDER BY recurrence_index, id`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}

// ListByDepartment returns the department's events overlapping [from, to].
func (r *PostgresRepository) ListByDepartment(ctx context.Context, deptID, from, to string) ([]*models.Event, error) {
	query := `
		SELECT id, doc FROM events
		WHERE department_id = $1
			AND ($2 = '' OR end_date >= $2)
			AND ($3 = '' OR start_date <= $3)
		ORDER BY start_date, id
	`
	rows, err := r.db.QueryContext(ctx, query, deptID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}

// ListEndedBefore returns up to limit events that ended before date.
func (r *PostgresRepository) ListEndedBefore(ctx context.Context, date string, limit int) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, doc FROM events WHERE end_date < $1 ORDER BY end_date, id LIMIT $2`, date, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}
