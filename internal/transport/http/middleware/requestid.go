package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	resp "flickhub/internal/transport/http/response"
)

const KeyRequestID = resp.HeaderRequestID

const maxRequestIDLen = 128

// RequestID reuses a sane inbound X-Request-ID or mints a UUID, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
