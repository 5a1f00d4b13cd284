package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) createBucket(c *gin.Context) {
	var item models.BucketItem
	if err := c.ShouldBindJSON(&item); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if claims := claimsFrom(c); claims != nil {
		if item.AuthorID == "" {
			item.AuthorID = claims.UserID
		}
		if item.AuthorName == "" {
			item.AuthorName = claims.Name
		}
	}

	created, err := s.buckets.Create(c.Request.Context(), item)
	if err != nil {
		s.writeError(c, "create bucket item", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *HTTPServer) listBuckets(c *gin.Context) {
	items, err := s.buckets.ListByMonth(c.Request.Context(), c.Query("month"))
	if err != nil {
		s.writeError(c, "list bucket items", err)
		return
	}
	if items == nil {
		items = []*models.BucketItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *HTTPServer) deleteBucket(c *gin.Context) {
	if err := s.buckets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, "delete bucket item", err)
		return
	}
	c.Status(http.StatusNoContent)
}
