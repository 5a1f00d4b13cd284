// Package archived stores events moved out of the live table by the
// archive sweeper.
package archived

import (
	"context"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// Repository defines operations on the archived_events table.
type Repository interface {
	// Put writes the archived copy, replacing an earlier copy with the same id.
	Put(ctx context.Context, a *models.ArchivedEvent) error

	// Get returns common.ErrorNotFound when no archived copy exists.
	Get(ctx context.Context, id string) (*models.ArchivedEvent, error)

	// Delete removes the archived copy. A missing copy is not an error.
	Delete(ctx context.Context, id string) error
}
