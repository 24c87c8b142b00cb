package middleware

import (
	"github.com/gin-gonic/gin"

	resp "flickhub/internal/transport/http/response"
)

// RecoveryResponder is the gin.RecoveryFunc used after a panic has been logged.
func RecoveryResponder(c *gin.Context, _ any) {
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(resp.StatusServerError, resp.Error(resp.StatusServerError, ""))
}

// NotFound keeps unknown routes on the API failure shape.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(resp.StatusNotFound, resp.Error(resp.StatusNotFound, ""))
	}
}
