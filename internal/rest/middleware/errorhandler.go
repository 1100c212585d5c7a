package middleware

import (
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders errors collected during the request as the standard
// error envelope. Handlers funnel failures through c.Error and return.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"status", status,
				"error", err)
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
