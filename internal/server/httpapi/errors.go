package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/gin-gonic/gin"
)

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

// writeError maps service errors onto status codes. Anything unexpected is
// logged and reported as a generic failure.
func (s *HTTPServer) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, common.ErrorIncorrectInput):
		jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		jsonError(c, http.StatusNotFound, "not found")
	default:
		s.logger.Error(c.Request.Context(), op+" failed", "error", err)
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}
