package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "flickhub/internal/transport/http/response"
)

// ConcurrencyLimit caps in-flight requests. Requests that cannot get a slot immediately
// are shed with 503.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, resp.Error(resp.StatusUnavailable, "Server busy, please retry"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
