package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
)

// KnownEvents is the caller's view of the calendar used to classify deletes
// and attendance updates. It is not used for linked-group deletion, which
// always reads the siblings from storage.
type KnownEvents interface {
	Series(ctx context.Context, seriesID string) ([]*models.Event, error)
	Linked(ctx context.Context, groupID string) ([]*models.Event, error)
}

// EventList is a KnownEvents over events the caller already holds.
type EventList []*models.Event

func (l EventList) Series(_ context.Context, seriesID string) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range l {
		if e.RecurrenceGroupID == seriesID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l EventList) Linked(_ context.Context, groupID string) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range l {
		if e.RelatedGroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

// StoredEvents answers KnownEvents straight from the events table.
type StoredEvents struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewStoredEvents(db *sql.DB, repos repomanager.RepositoryManager) *StoredEvents {
	return &StoredEvents{db: db, repos: repos}
}

func (s *StoredEvents) Series(ctx context.Context, seriesID string) ([]*models.Event, error) {
	return s.repos.Events(s.db).ListBySeries(ctx, seriesID)
}

func (s *StoredEvents) Linked(ctx context.Context, groupID string) ([]*models.Event, error) {
	return s.repos.Events(s.db).ListByRelatedGroup(ctx, groupID)
}
