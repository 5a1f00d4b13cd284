// Package events persists calendar event documents. Each row holds the
// converted document plus the few fields the sync engine queries on,
// projected into indexed columns.
package events

import (
	"context"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// Repository describes storage operations for event documents.
type Repository interface {
	// Upsert writes e under e.ID, replacing any stored document.
	Upsert(ctx context.Context, e *models.Event) error

	// Delete removes the document with the given id. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, id string) error

	// GetByID returns common.ErrorNotFound when no document exists.
	GetByID(ctx context.Context, id string) (*models.Event, error)

	// ListByRelatedGroup returns every sibling of a linked group.
	ListByRelatedGroup(ctx context.Context, groupID string) ([]*models.Event, error)

	// ListBySeries returns every occurrence of a series ordered by index.
	ListBySeries(ctx context.Context, seriesID string) ([]*models.Event, error)

	// ListByDepartment returns the department's events overlapping
	// [from, to]. Empty bounds are open.
	ListByDepartment(ctx context.Context, deptID, from, to string) ([]*models.Event, error)

	// ListEndedBefore returns up to limit events whose end date is before date.
	ListEndedBefore(ctx context.Context, date string, limit int) ([]*models.Event, error)
}
