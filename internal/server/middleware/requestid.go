package middleware

import (
	"github.com/gin-gonic/gin"

	"lilly/internal/pkg/id"
)

// RequestIDHeader 请求 ID 的 header
const RequestIDHeader = "X-Request-ID"

// RequestID 请求 ID 中间件，沿用调用方传入的 ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = id.New()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
