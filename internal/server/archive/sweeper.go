package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/batch"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
	"github.com/robfig/cron/v3"
)

const (
	DefaultSchedule      = "0 0 * * *"
	DefaultTimezone      = "Asia/Seoul"
	DefaultLookbackYears = 2
	DefaultSweepLimit    = 450
)

type SweeperOptions struct {
	LookbackYears int
	Limit         int
	Location      *time.Location
}

// Sweeper moves events that ended more than LookbackYears ago from the live
// table into the archive store.
type Sweeper struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  Store
	writer *batch.Writer
	opts   SweeperOptions
	now    func() time.Time
	logger logging.Logger
}

func NewSweeper(db *sql.DB, repos repomanager.RepositoryManager, store Store, writer *batch.Writer,
	opts SweeperOptions, logger logging.Logger) *Sweeper {
	if opts.LookbackYears <= 0 {
		opts.LookbackYears = DefaultLookbackYears
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSweepLimit
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Sweeper{
		db:     db,
		repos:  repos,
		store:  store,
		writer: writer,
		opts:   opts,
		now:    time.Now,
		logger: logger.With("module", "archive"),
	}
}

// Cutoff returns the first end date that is still kept live.
func (s *Sweeper) Cutoff() string {
	return s.now().In(s.opts.Location).AddDate(-s.opts.LookbackYears, 0, 0).Format(common.DateLayout)
}

// RunOnce archives one batch of expired events and returns how many moved.
// Copies are written before the live documents are deleted, so a failure
// leaves at worst a duplicate that the next run overwrites.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.Cutoff()
	s.logger.Info(ctx, "archive sweep started", "cutoff", cutoff, "lookback_years", s.opts.LookbackYears)

	expired, err := s.repos.Events(s.db).ListEndedBefore(ctx, cutoff, s.opts.Limit)
	if err != nil {
		return 0, fmt.Errorf("list expired events: %w", err)
	}
	if len(expired) == 0 {
		s.logger.Info(ctx, "no events to archive")
		return 0, nil
	}

	archivedAt := s.now().UTC()
	ops := make([]batch.Op, 0, len(expired))
	for _, e := range expired {
		if err := s.store.Put(ctx, &models.ArchivedEvent{Event: e, ArchivedAt: archivedAt}); err != nil {
			return 0, err
		}
		ops = append(ops, batch.Delete(e.ID))
	}

	n, err := s.writer.Commit(ctx, ops)
	if err != nil {
		return n, err
	}
	s.logger.Info(ctx, "archive sweep finished", "archived", n)
	return n, nil
}

// Schedule registers RunOnce on a cron spec evaluated in the sweeper's
// location. The caller starts and stops the returned scheduler.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.opts.Location))
	_, err := c.AddFunc(spec, func() {
		ctx := context.Background()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error(ctx, "archive sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("bad archive schedule %q: %w", spec, err)
	}
	return c, nil
}
