package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/archive"
	"github.com/dmitrijs2005/eventsync/internal/server/batch"
	"github.com/dmitrijs2005/eventsync/internal/server/linkgroup"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/recurrence"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NewGroupID returns a fresh relatedGroupId.
func NewGroupID() string {
	return "group_" + uuid.NewString()
}

// SaveInput is one Save call. OccurrenceCount and Event.IsArchived steer the
// save and are never stored.
type SaveInput struct {
	Event           models.Event
	OccurrenceCount int
	PendingBucketID string
}

type SaveResult struct {
	// Written is the number of committed upserts and deletes.
	Written int
	Events  []*models.Event
	Deleted []string
}

type DeleteResult struct {
	Deleted int
}

// EventService persists calendar events that may recur and may be shared
// by several departments, keeping every stored copy consistent.
type EventService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	writer     *batch.Writer
	archive    archive.Store
	known      KnownEvents
	newGroupID func() string
	now        func() time.Time
	logger     logging.Logger
}

func NewEventService(db *sql.DB, repos repomanager.RepositoryManager, writer *batch.Writer,
	archiveStore archive.Store, logger logging.Logger) *EventService {
	return &EventService{
		db:         db,
		repos:      repos,
		writer:     writer,
		archive:    archiveStore,
		known:      NewStoredEvents(db, repos),
		newGroupID: NewGroupID,
		now:        time.Now,
		logger:     logger.With("module", "events"),
	}
}

// WithKnownEvents returns a copy of s that classifies deletes and
// attendance updates against k.
func (s *EventService) WithKnownEvents(k KnownEvents) *EventService {
	c := *s
	c.known = k
	return &c
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.repos.Events(s.db).GetByID(ctx, id)
}

func (s *EventService) ListByDepartment(ctx context.Context, deptID, from, to string) ([]*models.Event, error) {
	return s.repos.Events(s.db).ListByDepartment(ctx, deptID, from, to)
}

// Save writes in.Event, expanding it into a series when a count above one
// accompanies a repeating rule and otherwise reconciling its department
// copies. An event loaded from the archive has its archived copy removed
// once the writes are planned and before they are committed; a failed
// commit puts the copy back. The pending bucket item is removed only after
// the commit.
func (s *EventService) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	e := in.Event.Clone()

	if !e.RecurrenceType.Valid() {
		return nil, fmt.Errorf("%w: recurrence type %q", common.ErrorIncorrectInput, e.RecurrenceType)
	}

	fromArchive := e.IsArchived
	e.IsArchived = false

	targets := e.TargetDepartments()
	stamp := s.now().UTC().Format(time.RFC3339)

	var upserts []*models.Event
	var deletes []string

	if in.OccurrenceCount > 1 && e.RecurrenceType.Repeats() {
		occurrences, err := recurrence.Expand(e, e.RecurrenceType, in.OccurrenceCount, targets, s.newGroupID)
		if err != nil {
			if errors.Is(err, recurrence.ErrUnknownRecurrence) {
				return nil, fmt.Errorf("%w: %v", common.ErrorIncorrectInput, err)
			}
			return nil, err
		}
		upserts = occurrences
	} else {
		var existing []*models.Event
		if e.RelatedGroupID != "" {
			var err error
			existing, err = s.repos.Events(s.db).ListByRelatedGroup(ctx, e.RelatedGroupID)
			if err != nil {
				s.logger.Error(ctx, "sibling lookup failed", "group_id", e.RelatedGroupID, "error", err)
				return nil, fmt.Errorf("load linked group %s: %w", e.RelatedGroupID, err)
			}
		}
		plan := linkgroup.Reconcile(e, targets, existing, s.newGroupID)
		upserts, deletes = plan.Upserts, plan.Deletes
	}

	ops := make([]batch.Op, 0, len(upserts)+len(deletes))
	for _, u := range upserts {
		if u.CreatedAt == "" {
			u.CreatedAt = stamp
		}
		ops = append(ops, batch.Upsert(u))
	}
	for _, id := range deletes {
		ops = append(ops, batch.Delete(id))
	}

	// restore from the archive only once the writes are planned
	var restored *models.ArchivedEvent
	if fromArchive {
		var err error
		restored, err = s.takeFromArchive(ctx, e.ID)
		if err != nil {
			s.logger.Error(ctx, "archive restore failed", "event_id", e.ID, "error", err)
			return nil, fmt.Errorf("restore %s from archive: %w", e.ID, err)
		}
	}

	n, err := s.writer.Commit(ctx, ops)
	if err != nil {
		s.logger.Error(ctx, "save failed", "event_id", e.ID, "committed", n, "error", err)
		s.putBackArchived(ctx, restored)
		return nil, err
	}

	if in.PendingBucketID != "" {
		if err := s.deleteBucket(ctx, in.PendingBucketID); err != nil {
			s.logger.Error(ctx, "bucket cleanup failed", "bucket_id", in.PendingBucketID, "error", err)
			return nil, fmt.Errorf("remove bucket item %s: %w", in.PendingBucketID, err)
		}
	}

	s.logger.Info(ctx, "event saved", "event_id", e.ID, "upserts", len(upserts), "deletes", len(deletes))
	return &SaveResult{Written: n, Events: upserts, Deleted: deletes}, nil
}

// takeFromArchive removes id's archived copy and returns it, or nil when
// there was none.
func (s *EventService) takeFromArchive(ctx context.Context, id string) (*models.ArchivedEvent, error) {
	a, err := s.archive.Get(ctx, id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		a = nil
	case err != nil:
		return nil, err
	}
	if err := s.archive.Delete(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

// putBackArchived re-archives a copy taken by a save whose commit failed.
func (s *EventService) putBackArchived(ctx context.Context, a *models.ArchivedEvent) {
	if a == nil {
		return
	}
	if err := s.archive.Put(ctx, a); err != nil {
		s.logger.Error(ctx, "archived copy lost", "event_id", a.Event.ID, "error", err)
	}
}

func (s *EventService) deleteBucket(ctx context.Context, id string) error {
	return s.repos.RetryPolicy().Do(ctx, func() error {
		return s.repos.Buckets(s.db).Delete(ctx, id)
	})
}

// Delete removes id. Without event only that document goes. With event,
// a recurring occurrence asks whether to delete it and every later
// occurrence, and a linked copy asks whether to delete every department's
// copy. Nothing is written until all prompts are answered.
func (s *EventService) Delete(ctx context.Context, id string, event *models.Event, confirm Confirmer) (*DeleteResult, error) {
	var ids []string
	var err error

	switch {
	case event == nil:
		ids = []string{id}
	case event.RecurrenceGroupID != "" && event.RecurrenceIndex > 0:
		ids, err = s.planSeriesDelete(ctx, id, event, confirm)
	default:
		ids, err = s.planLinkedDelete(ctx, id, event, confirm, false)
	}
	if err != nil {
		return nil, err
	}

	ops := make([]batch.Op, 0, len(ids))
	for _, d := range ids {
		ops = append(ops, batch.Delete(d))
	}

	n, err := s.writer.Commit(ctx, ops)
	if err != nil {
		s.logger.Error(ctx, "delete failed", "event_id", id, "committed", n, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "event deleted", "event_id", id, "deleted", n)
	return &DeleteResult{Deleted: n}, nil
}

func (s *EventService) planSeriesDelete(ctx context.Context, id string, event *models.Event, confirm Confirmer) ([]string, error) {
	forward, err := confirm.Confirm(ctx, PromptDeleteSeriesForward)
	if err != nil {
		return nil, err
	}
	if !forward {
		return s.planLinkedDelete(ctx, id, event, confirm, true)
	}

	series, err := s.known.Series(ctx, event.RecurrenceGroupID)
	if err != nil {
		return nil, fmt.Errorf("load series %s: %w", event.RecurrenceGroupID, err)
	}

	var ids []string
	for _, o := range series {
		if o.RecurrenceIndex >= event.RecurrenceIndex {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

// planLinkedDelete decides between the current copy and the whole linked
// group. fromKnown selects the caller's known events for the sibling check
// instead of a fresh lookup; the group itself is always read fresh.
func (s *EventService) planLinkedDelete(ctx context.Context, id string, event *models.Event, confirm Confirmer, fromKnown bool) ([]string, error) {
	if event.RelatedGroupID == "" {
		return []string{id}, nil
	}

	var group []*models.Event
	var err error
	if fromKnown {
		group, err = s.known.Linked(ctx, event.RelatedGroupID)
	} else {
		group, err = s.repos.Events(s.db).ListByRelatedGroup(ctx, event.RelatedGroupID)
	}
	if err != nil {
		return nil, fmt.Errorf("load linked group %s: %w", event.RelatedGroupID, err)
	}

	if !hasOther(group, id) {
		return []string{id}, nil
	}

	all, err := confirm.Confirm(ctx, PromptDeleteLinkedGroup)
	if err != nil {
		return nil, err
	}
	if !all {
		return []string{id}, nil
	}

	if fromKnown {
		group, err = s.repos.Events(s.db).ListByRelatedGroup(ctx, event.RelatedGroupID)
		if err != nil {
			return nil, fmt.Errorf("load linked group %s: %w", event.RelatedGroupID, err)
		}
	}
	ids := make([]string, 0, len(group))
	for _, g := range group {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func hasOther(group []*models.Event, id string) bool {
	for _, g := range group {
		if g.ID != id {
			return true
		}
	}
	return false
}

// BatchUpdateAttendance sets participantID's status on every known
// occurrence of seriesID, keeping the other participants' answers. It
// returns the number of occurrences touched, which may be zero.
func (s *EventService) BatchUpdateAttendance(ctx context.Context, seriesID, participantID string, status models.AttendanceStatus) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: attendance status %q", common.ErrorIncorrectInput, status)
	}

	series, err := s.known.Series(ctx, seriesID)
	if err != nil {
		return 0, fmt.Errorf("load series %s: %w", seriesID, err)
	}

	ops := make([]batch.Op, 0, len(series))
	for _, e := range series {
		ops = append(ops, batch.MergeAttendance(e.ID, participantID, status))
	}

	n, err := s.writer.Commit(ctx, ops)
	if err != nil {
		s.logger.Error(ctx, "attendance update failed", "series_id", seriesID, "committed", n, "error", err)
		return n, err
	}

	s.logger.Info(ctx, "attendance updated", "series_id", seriesID, "participant_id", participantID, "events", n)
	return n, nil
}
