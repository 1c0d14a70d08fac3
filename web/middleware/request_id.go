package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIdHeader = "X-Request-Id"
	requestIdKey    = "request_id"
)

// RequestIdMiddleware tags every request with an id, reusing the caller's
// when it is a valid UUID.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIdKey, id)
		c.Header(RequestIdHeader, id)
		c.Next()
	}
}

// GetRequestId returns the id assigned by RequestIdMiddleware.
func GetRequestId(c *gin.Context) string {
	return c.GetString(requestIdKey)
}
