// Package server wires the event sync engine together: storage, the batch
// writer, the archive backend and sweeper, the services and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/archive"
	"github.com/dmitrijs2005/eventsync/internal/server/batch"
	"github.com/dmitrijs2005/eventsync/internal/server/config"
	"github.com/dmitrijs2005/eventsync/internal/server/httpapi"
	"github.com/dmitrijs2005/eventsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventsync/internal/server/services"
	"github.com/dmitrijs2005/eventsync/internal/server/storage"
)

// Components holds everything built from a Config. The server and the
// operator CLI share it.
type Components struct {
	DB      *sql.DB
	Repos   repomanager.RepositoryManager
	Writer  *batch.Writer
	Archive archive.Store
	Events  *services.EventService
	Buckets *services.BucketService
	Sweeper *archive.Sweeper
}

// newS3Store is a seam for tests.
var newS3Store = func(ctx context.Context, cfg archive.S3Config) (archive.Store, error) {
	return archive.NewS3Store(ctx, cfg)
}

// Build opens storage and constructs the services for cfg.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, repos, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var store archive.Store
	switch cfg.ArchiveBackend {
	case config.ArchiveS3:
		store, err = newS3Store(ctx, archive.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3RootUser,
			SecretKey: cfg.S3RootPassword,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
	default:
		store = archive.NewDBStore(db, repos)
	}

	writer := batch.NewWriter(db, repos, cfg.BatchLimit, logger)

	return &Components{
		DB:      db,
		Repos:   repos,
		Writer:  writer,
		Archive: store,
		Events:  services.NewEventService(db, repos, writer, store, logger),
		Buckets: services.NewBucketService(db, repos, logger),
		Sweeper: archive.NewSweeper(db, repos, store, writer, archive.SweeperOptions{
			LookbackYears: cfg.ArchiveLookbackYears,
			Limit:         cfg.ArchiveSweepLimit,
			Location:      cfg.Location(),
		}, logger),
	}, nil
}

func (c *Components) Close() error {
	return c.DB.Close()
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	components *Components
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	components, err := Build(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, components: components}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.components.Events, app.components.Buckets,
		app.config.SecretKey, app.config.Location(), app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startSweeper(ctx context.Context, cancelFunc context.CancelFunc) {
	c, err := app.components.Sweeper.Schedule(app.config.ArchiveSchedule)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	c.Start()
	app.logger.Info(ctx, "Archive sweeper scheduled", "schedule", app.config.ArchiveSchedule, "timezone", app.config.Timezone)

	<-ctx.Done()
	// wait for a running sweep to finish
	<-c.Stop().Done()
}

// Run serves until a termination signal arrives or a component fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startSweeper(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.components.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
