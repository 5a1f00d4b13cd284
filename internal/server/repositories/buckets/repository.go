// Package buckets declares the repository contract for provisional bucket
// items: ideas pinned to a target month before they become real events.
package buckets

import (
	"context"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// Repository defines operations on bucket items.
type Repository interface {
	// Create stores a new item. The caller assigns the id.
	Create(ctx context.Context, item *models.BucketItem) error

	// Get returns common.ErrorNotFound when the item does not exist.
	Get(ctx context.Context, id string) (*models.BucketItem, error)

	// ListByMonth returns the items pinned to month (YYYY-MM).
	ListByMonth(ctx context.Context, month string) ([]*models.BucketItem, error)

	// Delete removes an item. Deleting a missing item is not an error.
	Delete(ctx context.Context, id string) error
}
