// Package httpapi exposes the event sync engine over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/logging"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/services"
	"github.com/gin-gonic/gin"
)

// EventService is the part of services.EventService the API needs.
type EventService interface {
	Save(ctx context.Context, in services.SaveInput) (*services.SaveResult, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	ListByDepartment(ctx context.Context, deptID, from, to string) ([]*models.Event, error)
	Delete(ctx context.Context, id string, event *models.Event, confirm services.Confirmer) (*services.DeleteResult, error)
	BatchUpdateAttendance(ctx context.Context, seriesID, participantID string, status models.AttendanceStatus) (int, error)
}

// BucketService is the part of services.BucketService the API needs.
type BucketService interface {
	Create(ctx context.Context, item models.BucketItem) (*models.BucketItem, error)
	ListByMonth(ctx context.Context, month string) ([]*models.BucketItem, error)
	Delete(ctx context.Context, id string) error
}

type HTTPServer struct {
	address         string
	events          EventService
	buckets         BucketService
	logger          logging.Logger
	jwtSecret       []byte
	location        *time.Location
	shutdownTimeout time.Duration
	now             func() time.Time
}

func NewHTTPServer(a string, l logging.Logger, es EventService, bs BucketService, secretKey string,
	loc *time.Location, shutdownTimeout time.Duration) *HTTPServer {
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		events:          es,
		buckets:         bs,
		jwtSecret:       []byte(secretKey),
		location:        loc,
		shutdownTimeout: shutdownTimeout,
		now:             time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.Use(s.authMiddleware())
	{
		api.POST("/events", s.saveEvent)
		api.GET("/events/:id", s.getEvent)
		api.DELETE("/events/:id", s.deleteEvent)

		api.POST("/series/:id/attendance", s.updateAttendance)

		api.GET("/departments/:id/events", s.listDepartmentEvents)
		api.GET("/departments/:id/calendar.ics", s.departmentCalendar)

		api.POST("/buckets", s.createBucket)
		api.GET("/buckets", s.listBuckets)
		api.DELETE("/buckets/:id", s.deleteBucket)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
