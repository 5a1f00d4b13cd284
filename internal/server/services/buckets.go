package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const monthLayout = "2006-01"

// BucketService manages provisional items pinned to a month.
type BucketService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	now    func() time.Time
	logger logging.Logger
}

func NewBucketService(db *sql.DB, repos repomanager.RepositoryManager, logger logging.Logger) *BucketService {
	return &BucketService{
		db:     db,
		repos:  repos,
		now:    time.Now,
		logger: logger.With("module", "buckets"),
	}
}

func (s *BucketService) Create(ctx context.Context, item models.BucketItem) (*models.BucketItem, error) {
	if item.Title == "" {
		return nil, fmt.Errorf("%w: empty title", common.ErrorIncorrectInput)
	}
	if _, err := time.Parse(monthLayout, item.TargetMonth); err != nil {
		return nil, fmt.Errorf("%w: target month %q", common.ErrorIncorrectInput, item.TargetMonth)
	}
	switch item.Priority {
	case "":
		item.Priority = "medium"
	case "high", "medium", "low":
	default:
		return nil, fmt.Errorf("%w: priority %q", common.ErrorIncorrectInput, item.Priority)
	}

	item.ID = uuid.NewString()
	item.CreatedAt = s.now().UTC().Format(time.RFC3339)

	err := s.repos.RetryPolicy().Do(ctx, func() error {
		return s.repos.Buckets(s.db).Create(ctx, &item)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "bucket item created", "bucket_id", item.ID, "month", item.TargetMonth)
	return &item, nil
}

func (s *BucketService) ListByMonth(ctx context.Context, month string) ([]*models.BucketItem, error) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return nil, fmt.Errorf("%w: month %q", common.ErrorIncorrectInput, month)
	}
	return s.repos.Buckets(s.db).ListByMonth(ctx, month)
}

func (s *BucketService) Delete(ctx context.Context, id string) error {
	return s.repos.RetryPolicy().Do(ctx, func() error {
		return s.repos.Buckets(s.db).Delete(ctx, id)
	})
}
