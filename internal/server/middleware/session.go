package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"lilly/internal/config"
	"lilly/internal/pkg/ctxutil"
	"lilly/internal/pkg/id"
)

// SessionIDKey gin context 中会话 ID 的 key
const SessionIDKey = "session_id"

// Session 会话中间件
// 依次从 header、cookie 读取会话 ID，无效或缺失时生成新的并下发 cookie
func Session(cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL / time.Second)

	return func(c *gin.Context) {
		sessionID := ""
		if cfg.Header != "" {
			sessionID = c.GetHeader(cfg.Header)
		}
		if sessionID == "" {
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				sessionID = cookie
			}
		}

		if !id.IsValid(sessionID) {
			sessionID = id.New()
			c.SetCookie(cfg.CookieName, sessionID, maxAge, "/", "", false, true)
		}
		if cfg.Header != "" {
			c.Header(cfg.Header, sessionID)
		}

		c.Set(SessionIDKey, sessionID)
		c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}
