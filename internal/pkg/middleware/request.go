package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const HeaderRequestID = "X-Request-Id"

// RequestID tags each request with the caller's id or a fresh uuid and logs
// the outcome under it.
func RequestID(c *gin.Context) {
	id := c.GetHeader(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(HeaderRequestID, id)
	c.Header(HeaderRequestID, id)

	begin := time.Now()
	c.Next()
	log.WithFields(log.Fields{
		"request_id": id,
		"status":     c.Writer.Status(),
		"cost":       time.Since(begin).String(),
	}).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
}

// Timeout bounds the request context; stores and engines stop at the
// deadline and the handler answers with the resulting error.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
