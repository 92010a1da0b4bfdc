package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apihttp "lilly/internal/pkg/http"
)

// Recovery 异常恢复中间件
// 响应已开始写出 (流式回复中途 panic) 时只能中断连接
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Str("method", c.Request.Method).
					Str("request_id", c.GetString("request_id")).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apihttp.NewErrorResponse(apihttp.CodePanic, "Internal Server Error"))
			}
		}()
		c.Next()
	}
}
