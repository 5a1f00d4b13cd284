package buckets

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, it *models.BucketItem) error {
	query :=
		`INSERT INTO bucket_items (id, title, target_month, department_id, priority, author_id, author_name, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.Title, it.TargetMonth, it.DepartmentID, it.Priority, it.AuthorID, it.AuthorName, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.BucketItem, error) {
	query := `SELECT id, title, target_month, department_id, priority, author_id, author_name, created_at
		FROM bucket_items WHERE id = $1`
	return scanItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByMonth(ctx context.Context, month string) ([]*models.BucketItem, error) {
	query := `SELECT id, title, target_month, department_id, priority, author_id, author_name, created_at
		FROM bucket_items WHERE target_month = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return scanItems(rows)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bucket_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
