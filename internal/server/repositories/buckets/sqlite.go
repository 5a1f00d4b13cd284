package buckets

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventsync/internal/dbx"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, it *models.BucketItem) error {
	query := `insert into bucket_items (id, title, target_month, department_id, priority, author_id, author_name, created_at)
		values (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.Title, it.TargetMonth, it.DepartmentID, it.Priority, it.AuthorID, it.AuthorName, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bucket item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.BucketItem, error) {
	query := `select id, title, target_month, department_id, priority, author_id, author_name, created_at
		from bucket_items where id=?`
	return scanItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ListByMonth(ctx context.Context, month string) ([]*models.BucketItem, error) {
	query := `select id, title, target_month, department_id, priority, author_id, author_name, created_at
		from bucket_items where target_month=? order by created_at, id`
	rows, err := r.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to select bucket items: %w", err)
	}
	return scanItems(rows)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `delete from bucket_items where id=?`, id); err != nil {
		return fmt.Errorf("failed to delete bucket item: %w", err)
	}
	return nil
}
