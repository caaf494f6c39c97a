package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosk404/scrivener/internal/pkg/core"
)

const headerRequestID = "X-Request-ID"

// RequestID tags every request with an id, honoring one supplied by the
// caller so traces can cross service boundaries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(core.RequestIDKey, rid)
		c.Header(headerRequestID, rid)
		c.Next()
	}
}
