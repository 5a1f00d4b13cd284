package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/archive"
	"github.com/dmitrijs2005/eventsync/internal/server/batch"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	svc   *EventService
	arch  *archive.DBStore
}

func newEnv(t *testing.T, limit int) *env {
	t.Helper()
	db, err := sql.Open(repomanager.SQLiteSQLDriver, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	repos := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, repos.RunMigrations(context.Background(), db))

	arch := archive.NewDBStore(db, repos)
	svc := NewEventService(db, repos, batch.NewWriter(db, repos, limit, logging.Discard()), arch, logging.Discard())

	n := 0
	svc.newGroupID = func() string {
		n++
		return fmt.Sprintf("group_%d", n)
	}
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

	return &env{db: db, repos: repos, svc: svc, arch: arch}
}

func (e *env) ids(t *testing.T) []string {
	t.Helper()
	rows, err := e.db.Query(`SELECT id FROM events ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		out = append(out, id)
	}
	require.NoError(t, rows.Err())
	return out
}

func (e *env) get(t *testing.T, id string) *models.Event {
	t.Helper()
	ev, err := e.repos.Events(e.db).GetByID(context.Background(), id)
	require.NoError(t, err, id)
	return ev
}

func never(t *testing.T) Confirmer {
	return ConfirmFunc(func(ctx context.Context, p Prompt) (bool, error) {
		t.Fatalf("unexpected prompt %s", p)
		return false, nil
	})
}

func TestSave_SingleDepartmentHasNoGroup(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)

	res, err := e.svc.Save(context.Background(), SaveInput{Event: models.Event{
		ID: "e1", Title: "Parent meeting", DepartmentID: "d1", StartDate: "2026-11-02", EndDate: "2026-11-02",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	got := e.get(t, "e1")
	assert.Empty(t, got.RelatedGroupID)
	assert.Equal(t, []string{"d1"}, got.DepartmentIDs)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "2026-10-19T09:00:00Z", got.CreatedAt)
}

func TestSave_MultiDepartmentCreatesSiblings(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)

	_, err := e.svc.Save(context.Background(), SaveInput{Event: models.Event{
		ID: "e1", DepartmentID: "d1", DepartmentIDs: []string{"d1", "math/high"},
		StartDate: "2026-11-02", EndDate: "2026-11-03", Version: 4,
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"e1", "e1_math_high"}, e.ids(t))
	for _, id := range []string{"e1", "e1_math_high"} {
		got := e.get(t, id)
		assert.Equal(t, "group_1", got.RelatedGroupID)
		assert.Equal(t, []string{"d1", "math/high"}, got.DepartmentIDs)
		assert.Equal(t, int64(5), got.Version)
	}
	assert.Equal(t, "math/high", e.get(t, "e1_math_high").DepartmentID)
}

func TestSave_ResaveReconcilesExistingGroup(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()
	live := e.repos.Events(e.db)

	// legacy sibling id that predates the current naming
	for _, s := range []*models.Event{
		{ID: "e1", DepartmentID: "d1", DepartmentIDs: []string{"d1", "d2", "d3"}, RelatedGroupID: "g", CreatedAt: "x", Version: 2},
		{ID: "legacy-d2", DepartmentID: "d2", DepartmentIDs: []string{"d1", "d2", "d3"}, RelatedGroupID: "g", CreatedAt: "x", Version: 2},
		{ID: "e1_d3", DepartmentID: "d3", DepartmentIDs: []string{"d1", "d2", "d3"}, RelatedGroupID: "g", CreatedAt: "x", Version: 2},
	} {
		require.NoError(t, live.Upsert(ctx, s))
	}

	res, err := e.svc.Save(ctx, SaveInput{Event: models.Event{
		ID: "e1", Title: "Moved", DepartmentID: "d1", DepartmentIDs: []string{"d1", "d2", "d4"},
		RelatedGroupID: "g", CreatedAt: "x", Version: 2,
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1_d3"}, res.Deleted)
	assert.Equal(t, 4, res.Written)

	assert.Equal(t, []string{"e1", "e1_d4", "legacy-d2"}, e.ids(t))
	assert.Equal(t, "Moved", e.get(t, "legacy-d2").Title)
	assert.Equal(t, int64(3), e.get(t, "e1_d4").Version)
}

func TestSave_DepartmentReassignmentDropsOldPrimary(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()

	require.NoError(t, e.repos.Events(e.db).Upsert(ctx, &models.Event{ID: "e1", DepartmentID: "d1", CreatedAt: "x"}))

	_, err := e.svc.Save(ctx, SaveInput{Event: models.Event{
		ID: "e1", DepartmentID: "d1", DepartmentIDs: []string{"d2"}, CreatedAt: "x",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1_d2"}, e.ids(t))
}

func TestSave_RecurrenceExpandsAcrossChunks(t *testing.T) {
	e := newEnv(t, 3)

	res, err := e.svc.Save(context.Background(), SaveInput{
		Event: models.Event{
			ID: "s", Title: "Weekly lab", DepartmentID: "d1", DepartmentIDs: []string{"d1", "d2"},
			StartDate: "2026-01-31", EndDate: "2026-02-01", RecurrenceType: models.RecurrenceMonthly,
		},
		OccurrenceCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Written)

	assert.Equal(t, []string{"s", "s_d2", "s_r2", "s_r2_d2", "s_r3", "s_r3_d2"}, e.ids(t))

	second := e.get(t, "s_r2_d2")
	assert.Equal(t, "2026-02-28", second.StartDate)
	assert.Equal(t, "2026-03-01", second.EndDate)
	assert.Equal(t, "s", second.RecurrenceGroupID)
	assert.Equal(t, 2, second.RecurrenceIndex)
	assert.Equal(t, "group_2", second.RelatedGroupID)
	assert.Equal(t, "group_2", e.get(t, "s_r2").RelatedGroupID)
	assert.NotEqual(t, e.get(t, "s").RelatedGroupID, second.RelatedGroupID)
}

func TestSave_CountOfOneTakesSinglePath(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)

	_, err := e.svc.Save(context.Background(), SaveInput{
		Event:           models.Event{ID: "s", DepartmentID: "d1", StartDate: "2026-01-01", EndDate: "2026-01-01", RecurrenceType: models.RecurrenceDaily},
		OccurrenceCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, e.ids(t))
	assert.Empty(t, e.get(t, "s").RecurrenceGroupID)
}

func TestSave_UnknownRecurrenceRejected(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)

	_, err := e.svc.Save(context.Background(), SaveInput{
		Event:           models.Event{ID: "s", DepartmentID: "d1", StartDate: "2026-01-01", EndDate: "2026-01-01", RecurrenceType: "fortnightly"},
		OccurrenceCount: 4,
	})
	assert.ErrorIs(t, err, common.ErrorIncorrectInput)
	assert.Empty(t, e.ids(t))
}

func TestSave_RestoresArchivedEvent(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()

	old := &models.Event{ID: "e1", DepartmentID: "d1", StartDate: "2023-05-01", EndDate: "2023-05-01"}
	require.NoError(t, e.arch.Put(ctx, &models.ArchivedEvent{Event: old, ArchivedAt: time.Now()}))

	in := *old
	in.IsArchived = true
	_, err := e.svc.Save(ctx, SaveInput{Event: in})
	require.NoError(t, err)

	_, err = e.arch.Get(ctx, "e1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.False(t, e.get(t, "e1").IsArchived)
}

type failingArchive struct{ archive.Store }

func (failingArchive) Get(context.Context, string) (*models.ArchivedEvent, error) {
	return nil, common.ErrorNotFound
}

func (failingArchive) Delete(context.Context, string) error { return errors.New("archive offline") }

func TestSave_ArchiveFailureAbortsAndKeepsBucket(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()
	e.svc.archive = failingArchive{}

	require.NoError(t, e.repos.Buckets(e.db).Create(ctx, &models.BucketItem{ID: "b1", Title: "idea", TargetMonth: "2026-11", Priority: "low", CreatedAt: "x"}))

	_, err := e.svc.Save(ctx, SaveInput{
		Event:           models.Event{ID: "e1", DepartmentID: "d1", IsArchived: true},
		PendingBucketID: "b1",
	})
	require.Error(t, err)
	assert.Empty(t, e.ids(t))

	_, err = e.repos.Buckets(e.db).Get(ctx, "b1")
	assert.NoError(t, err)
}

func TestSave_RejectedArchivedSeriesKeepsArchivedCopy(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()

	old := &models.Event{ID: "old", DepartmentID: "d1", StartDate: "2020-01-01", EndDate: "2020-01-01"}
	require.NoError(t, e.arch.Put(ctx, &models.ArchivedEvent{Event: old, ArchivedAt: time.Now()}))

	_, err := e.svc.Save(ctx, SaveInput{
		Event: models.Event{
			ID: "old", DepartmentID: "d1", StartDate: "2020/01/01", EndDate: "2020-01-01",
			RecurrenceType: models.RecurrenceWeekly, IsArchived: true,
		},
		OccurrenceCount: 3,
	})
	require.ErrorIs(t, err, common.ErrorIncorrectInput)

	got, err := e.arch.Get(ctx, "old")
	require.NoError(t, err, "archived copy survives a rejected save")
	assert.Equal(t, "2020-01-01", got.Event.StartDate)
	assert.Empty(t, e.ids(t))
}

func TestSave_FailedCommitPutsArchivedCopyBack(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()

	old := &models.Event{ID: "old", DepartmentID: "d1", Title: "Graduation", StartDate: "2021-02-10", EndDate: "2021-02-10"}
	require.NoError(t, e.arch.Put(ctx, &models.ArchivedEvent{Event: old, ArchivedAt: time.Now()}))

	_, err := e.db.Exec(`DROP TABLE events`)
	require.NoError(t, err)

	in := *old
	in.IsArchived = true
	_, err = e.svc.Save(ctx, SaveInput{Event: in})
	require.Error(t, err)

	got, err := e.arch.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "Graduation", got.Event.Title)
}

func TestSave_SecondDepartmentJoinsUnderFreshGroup(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()

	_, err := e.svc.Save(ctx, SaveInput{Event: models.Event{
		ID: "e1", Title: "Open class", DepartmentID: "A", DepartmentIDs: []string{"A"},
		StartDate: "2026-11-10", EndDate: "2026-11-10",
	}})
	require.NoError(t, err)
	assert.Empty(t, e.get(t, "e1").RelatedGroupID)

	stored := e.get(t, "e1")
	stored.DepartmentIDs = []string{"A", "B"}
	res, err := e.svc.Save(ctx, SaveInput{Event: *stored})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Empty(t, res.Deleted)

	assert.Equal(t, []string{"e1", "e1_B"}, e.ids(t))
	a, b := e.get(t, "e1"), e.get(t, "e1_B")
	assert.Equal(t, "group_1", a.RelatedGroupID)
	assert.Equal(t, a.RelatedGroupID, b.RelatedGroupID)
	assert.Equal(t, "A", a.DepartmentID)
	assert.Equal(t, "B", b.DepartmentID)
	assert.Equal(t, []string{"A", "B"}, b.DepartmentIDs)
}

func TestSave_BucketRemovedOnlyAfterCommit(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()
	buckets := e.repos.Buckets(e.db)

	require.NoError(t, buckets.Create(ctx, &models.BucketItem{ID: "b1", Title: "idea", TargetMonth: "2026-11", Priority: "low", CreatedAt: "x"}))
	require.NoError(t, buckets.Create(ctx, &models.BucketItem{ID: "b2", Title: "idea", TargetMonth: "2026-11", Priority: "low", CreatedAt: "x"}))

	_, err := e.svc.Save(ctx, SaveInput{Event: models.Event{ID: "e1", DepartmentID: "d1"}, PendingBucketID: "b1"})
	require.NoError(t, err)
	_, err = buckets.Get(ctx, "b1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.db.Exec(`DROP TABLE events`)
	require.NoError(t, err)

	_, err = e.svc.Save(ctx, SaveInput{Event: models.Event{ID: "e2", DepartmentID: "d1"}, PendingBucketID: "b2"})
	require.Error(t, err)
	_, err = buckets.Get(ctx, "b2")
	assert.NoError(t, err, "bucket item survives a failed save")
}

func seedSeries(t *testing.T, e *env, n int, depts ...string) {
	t.Helper()
	if len(depts) == 0 {
		depts = []string{"d1"}
	}
	_, err := e.svc.Save(context.Background(), SaveInput{
		Event: models.Event{
			ID: "s", DepartmentID: depts[0], DepartmentIDs: depts,
			StartDate: "2026-03-02", EndDate: "2026-03-02", RecurrenceType: models.RecurrenceWeekly,
		},
		OccurrenceCount: n,
	})
	require.NoError(t, err)
}

func TestDelete_SeriesForward(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	seedSeries(t, e, 5)

	res, err := e.svc.Delete(context.Background(), "s_r2", e.get(t, "s_r2"), Answers{PromptDeleteSeriesForward: true})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Deleted)
	assert.Equal(t, []string{"s"}, e.ids(t))
}

func TestDelete_SeriesSingleOccurrenceUsesKnownEvents(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	seedSeries(t, e, 2, "d1", "d2")
	target := e.get(t, "s_r2")

	// The caller's view has no linked copies, so no linked prompt is asked.
	svc := e.svc.WithKnownEvents(EventList{target})
	res, err := svc.Delete(context.Background(), "s_r2", target, Answers{PromptDeleteSeriesForward: false})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, []string{"s", "s_d2", "s_r2_d2"}, e.ids(t))
}

func TestDelete_SeriesSingleOccurrenceThenLinkedGroup(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	seedSeries(t, e, 2, "d1", "d2")

	var asked []Prompt
	confirm := ConfirmFunc(func(ctx context.Context, p Prompt) (bool, error) {
		asked = append(asked, p)
		return p == PromptDeleteLinkedGroup, nil
	})

	res, err := e.svc.Delete(context.Background(), "s_r2", e.get(t, "s_r2"), confirm)
	require.NoError(t, err)
	assert.Equal(t, []Prompt{PromptDeleteSeriesForward, PromptDeleteLinkedGroup}, asked)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, []string{"s", "s_d2"}, e.ids(t))
}

func TestDelete_LinkedDirect(t *testing.T) {
	ctx := context.Background()
	save := func(e *env) {
		_, err := e.svc.Save(ctx, SaveInput{Event: models.Event{ID: "e1", DepartmentID: "d1", DepartmentIDs: []string{"d1", "d2", "d3"}}})
		require.NoError(t, err)
	}

	t.Run("all", func(t *testing.T) {
		e := newEnv(t, batch.DefaultLimit)
		save(e)
		res, err := e.svc.Delete(ctx, "e1_d2", e.get(t, "e1_d2"), Answers{PromptDeleteLinkedGroup: true})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Deleted)
		assert.Empty(t, e.ids(t))
	})

	t.Run("current only", func(t *testing.T) {
		e := newEnv(t, batch.DefaultLimit)
		save(e)
		res, err := e.svc.Delete(ctx, "e1_d2", e.get(t, "e1_d2"), Answers{PromptDeleteLinkedGroup: false})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Deleted)
		assert.Equal(t, []string{"e1", "e1_d3"}, e.ids(t))
	})
}

func TestDelete_PlainNeedsNoConfirmation(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()
	_, err := e.svc.Save(ctx, SaveInput{Event: models.Event{ID: "e1", DepartmentID: "d1"}})
	require.NoError(t, err)

	res, err := e.svc.Delete(ctx, "e1", e.get(t, "e1"), never(t))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)

	res, err = e.svc.Delete(ctx, "ghost", nil, never(t))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
}

func TestDelete_LoneGroupMemberNeedsNoConfirmation(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	ctx := context.Background()
	require.NoError(t, e.repos.Events(e.db).Upsert(ctx, &models.Event{ID: "e1", DepartmentID: "d1", RelatedGroupID: "g"}))

	_, err := e.svc.Delete(ctx, "e1", e.get(t, "e1"), never(t))
	require.NoError(t, err)
	assert.Empty(t, e.ids(t))
}

func TestDelete_UnansweredPromptWritesNothing(t *testing.T) {
	e := newEnv(t, batch.DefaultLimit)
	seedSeries(t, e, 3, "d1", "d2")
	before := e.ids(t)

	_, err := e.svc.Delete(context.Background(), "s_r2", e.get(t, "s_r2"), Answers{PromptDeleteSeriesForward: false})
	assert.ErrorIs(t, err, common.ErrConfirmationRequired)
	assert.Equal(t, before, e.ids(t))
}

func TestBatchUpdateAttendance(t *testing.T) {
	e := newEnv(t, 2)
	ctx := context.Background()
	seedSeries(t, e, 3)

	n, err := e.svc.BatchUpdateAttendance(ctx, "s", "u1", models.AttendanceJoined)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = e.svc.BatchUpdateAttendance(ctx, "s", "u2", models.AttendanceDeclined)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want := map[string]models.AttendanceStatus{"u1": models.AttendanceJoined, "u2": models.AttendanceDeclined}
	for _, id := range []string{"s", "s_r2", "s_r3"} {
		if diff := cmp.Diff(want, e.get(t, id).Attendance); diff != "" {
			t.Fatalf("%s attendance mismatch (-want +got):\n%s", id, diff)
		}
	}

	n, err = e.svc.BatchUpdateAttendance(ctx, "nope", "u1", models.AttendanceJoined)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = e.svc.BatchUpdateAttendance(ctx, "s", "u1", "maybe")
	assert.ErrorIs(t, err, common.ErrorIncorrectInput)
}
