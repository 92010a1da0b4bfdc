package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"lilly/internal/config"
	apihttp "lilly/internal/pkg/http"
)

// SessionRateLimiter 按会话的令牌桶限流
// 限流器保存在 LRU 中，数量上限与会话数一致
type SessionRateLimiter struct {
	limit     rate.Limit
	burst     int
	perMinute int

	mu       sync.Mutex
	limiters *lru.Cache
}

// NewSessionRateLimiter 创建限流器
func NewSessionRateLimiter(cfg config.RateLimitConfig, maxSessions int) (*SessionRateLimiter, error) {
	if cfg.MessagesPerMinute <= 0 {
		return nil, fmt.Errorf("invalid messages_per_minute: %d", cfg.MessagesPerMinute)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.MessagesPerMinute
	}
	limiters, err := lru.New(maxSessions)
	if err != nil {
		return nil, err
	}
	return &SessionRateLimiter{
		limit:     rate.Every(time.Minute / time.Duration(cfg.MessagesPerMinute)),
		burst:     burst,
		perMinute: cfg.MessagesPerMinute,
		limiters:  limiters,
	}, nil
}

func (l *SessionRateLimiter) limiter(sessionID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(sessionID); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(sessionID, lim)
	return lim
}

// Middleware 限流中间件，需要挂在 Session 之后
func (l *SessionRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(SessionIDKey)
		lim := l.limiter(sessionID)

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.perMinute))

		r := lim.Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			log.Warn().Str("session_id", sessionID).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apihttp.NewErrorResponse(apihttp.CodeRateLimited, "Too many messages, please slow down"))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		c.Next()
	}
}
