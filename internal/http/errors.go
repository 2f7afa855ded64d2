package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker-go/internal/ledger"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response. Server errors are logged and hidden from
// the client.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error("request failed")
		c.JSON(status, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
