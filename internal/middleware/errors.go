package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/volpulse/internal/domain/dto"
	"github.com/guttosm/volpulse/internal/logger"
)

// ErrorHandler converts errors attached to the Gin context (via c.Error)
// into a standardized 500 JSON response, unless a handler already wrote one.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	logger.L().Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled request error")
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
}

// AbortWithError writes a standardized error response with the given status
// and aborts the handler chain.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
