package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lilly/internal/config"
)

// CORS 跨域中间件
// 未配置来源或包含 "*" 时允许所有来源
func CORS(cfg config.CORSConfig, sessionHeader string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, RequestIDHeader)
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	if sessionHeader != "" {
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, sessionHeader)
		corsConfig.ExposeHeaders = append(corsConfig.ExposeHeaders, sessionHeader)
	}

	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}
