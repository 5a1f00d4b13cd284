package events

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// Documents are stored as JSON text.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or replaces the document stored under e.ID.
func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.Event) error {
	rw, err := toRow(e)
	if err != nil {
		return err
	}

	query := ` INSERT INTO events (id, department_id, related_group_id, recurrence_group_id, recurrence_index, start_date, end_date, doc, updated_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET department_id = excluded.department_id,
				related_group_id = excluded.related_group_id,
				recurrence_group_id = excluded.recurrence_group_id,
				recurrence_index = excluded.recurrence_index,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				doc = excluded.doc,
				updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		rw.id, rw.departmentID, rw.relatedGroupID, rw.recurrenceGroupID, rw.recurrenceIndex, rw.startDate, rw.endDate, rw.doc)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	return nil
}

// Delete removes the document; a missing row is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from events where id=?`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// GetByID returns the document stored under id.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return scanOne(r.db.QueryRowContext(ctx, `select id, doc from events where id=?`, id))
}

// ListByRelatedGroup returns every sibling sharing groupID.
func (r *SQLiteRepository) ListByRelatedGroup(ctx context.Context, groupID string) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `select id, doc from events where related_group_id=? order by id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}

// ListBySeries returns every occurrence sharing seriesID.
func (r *SQLiteRepository) ListBySeries(ctx context.Context, seriesID string) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, doc from events where recurrence_group_id=? order by recurrence_index, id`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}

// ListByDepartment returns the department's events overlapping [from, to].
func (r *SQLiteRepository) ListByDepartment(ctx context.Context, deptID, from, to string) ([]*models.Event, error) {
	query := `select id, doc from events
		where department_id=?
			and (?='' or end_date>=?)
			and (?='' or start_date<=?)
		order by start_date, id`
	rows, err := r.db.QueryContext(ctx, query, deptID, from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}

// ListEndedBefore returns up to limit events that ended before date.
func (r *SQLiteRepository) ListEndedBefore(ctx context.Context, date string, limit int) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`select id, doc from events where end_date<? order by end_date, id limit ?`, date, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return scanAll(rows)
}
