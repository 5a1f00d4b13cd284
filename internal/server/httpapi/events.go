package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/icsexport"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/dmitrijs2005/eventsync/internal/server/services"
	"github.com/gin-gonic/gin"
)

type saveEventRequest struct {
	models.Event
	OccurrenceCount int    `json:"occurrenceCount"`
	PendingBucketID string `json:"pendingBucketId"`
}

type attendanceRequest struct {
	ParticipantID string                  `json:"participantId"`
	Status        models.AttendanceStatus `json:"status" binding:"required"`
}

func (s *HTTPServer) saveEvent(c *gin.Context) {
	var req saveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.ID == "" || req.DepartmentID == "" || req.StartDate == "" || req.EndDate == "" {
		jsonError(c, http.StatusBadRequest, "id, departmentId, startDate and endDate are required")
		return
	}

	if claims := claimsFrom(c); claims != nil {
		if req.AuthorID == "" {
			req.AuthorID = claims.UserID
		}
		if req.AuthorName == "" {
			req.AuthorName = claims.Name
		}
	}

	res, err := s.events.Save(c.Request.Context(), services.SaveInput{
		Event:           req.Event,
		OccurrenceCount: req.OccurrenceCount,
		PendingBucketID: req.PendingBucketID,
	})
	if err != nil {
		s.writeError(c, "save event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"written": res.Written,
		"events":  res.Events,
		"deleted": res.Deleted,
	})
}

func (s *HTTPServer) getEvent(c *gin.Context) {
	e, err := s.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, "get event", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// queryConfirmer answers delete prompts from the request query:
// series=forward|single and linked=all|single. The first prompt without an
// answer is remembered so the response can name it.
type queryConfirmer struct {
	answers services.Answers
	missing services.Prompt
}

func newQueryConfirmer(c *gin.Context) (*queryConfirmer, error) {
	q := &queryConfirmer{answers: services.Answers{}}

	switch v := c.Query("series"); v {
	case "":
	case "forward":
		q.answers[services.PromptDeleteSeriesForward] = true
	case "single":
		q.answers[services.PromptDeleteSeriesForward] = false
	default:
		return nil, fmt.Errorf("%w: series=%q", common.ErrorIncorrectInput, v)
	}

	switch v := c.Query("linked"); v {
	case "":
	case "all":
		q.answers[services.PromptDeleteLinkedGroup] = true
	case "single":
		q.answers[services.PromptDeleteLinkedGroup] = false
	default:
		return nil, fmt.Errorf("%w: linked=%q", common.ErrorIncorrectInput, v)
	}
	return q, nil
}

func (q *queryConfirmer) Confirm(ctx context.Context, p services.Prompt) (bool, error) {
	yes, err := q.answers.Confirm(ctx, p)
	if err != nil && q.missing == "" {
		q.missing = p
	}
	return yes, err
}

func (s *HTTPServer) deleteEvent(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	confirm, err := newQueryConfirmer(c)
	if err != nil {
		s.writeError(c, "delete event", err)
		return
	}

	var current *models.Event
	switch e, err := s.events.Get(ctx, id); {
	case err == nil:
		current = e
	case errors.Is(err, common.ErrorNotFound):
	default:
		s.writeError(c, "delete event", err)
		return
	}

	res, err := s.events.Delete(ctx, id, current, confirm)
	if err != nil {
		if errors.Is(err, common.ErrConfirmationRequired) {
			c.JSON(http.StatusPreconditionRequired, gin.H{
				"error":  "confirmation required",
				"prompt": string(confirm.missing),
			})
			return
		}
		s.writeError(c, "delete event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": res.Deleted})
}

func (s *HTTPServer) updateAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.ParticipantID == "" {
		if claims := claimsFrom(c); claims != nil {
			req.ParticipantID = claims.UserID
		}
	}

	n, err := s.events.BatchUpdateAttendance(c.Request.Context(), c.Param("id"), req.ParticipantID, req.Status)
	if err != nil {
		s.writeError(c, "update attendance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (s *HTTPServer) listDepartmentEvents(c *gin.Context) {
	events, err := s.events.ListByDepartment(c.Request.Context(), c.Param("id"), c.Query("from"), c.Query("to"))
	if err != nil {
		s.writeError(c, "list events", err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (s *HTTPServer) departmentCalendar(c *gin.Context) {
	dept := c.Param("id")
	events, err := s.events.ListByDepartment(c.Request.Context(), dept, c.Query("from"), c.Query("to"))
	if err != nil {
		s.writeError(c, "export calendar", err)
		return
	}

	body, err := icsexport.Render(dept, events, s.location, s.now())
	if err != nil {
		s.writeError(c, "export calendar", err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
