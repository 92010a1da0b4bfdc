package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"lilly/internal/backend"
	"lilly/internal/config"
	"lilly/internal/conversation"
	"lilly/internal/handler"
	"lilly/internal/pkg/cache"
	"lilly/internal/pkg/mongodb"
	"lilly/internal/repository"
	"lilly/internal/server/middleware"
	"lilly/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
	chat   *service.ChatService
}

// New 创建服务器实例
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	b, err := backend.New(ctx, &cfg.Backend)
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", cfg.Backend.Provider).Str("model", cfg.Backend.Model).Msg("initialized backend")

	return NewWithBackend(cfg, b)
}

// NewWithBackend 使用给定的后端创建服务器实例
func NewWithBackend(cfg *config.Config, b backend.Backend) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	storeOpts := conversation.StoreOptions{
		SystemPrompt: cfg.Assistant.SystemPrompt,
		MaxSessions:  cfg.Session.MaxSessions,
		SnapshotTTL:  cfg.Session.TTL,
	}

	// 初始化 MongoDB (可选)，用于对话归档
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			// 创建索引
			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
			storeOpts.Archive = repository.NewConversationRepo(mongoClient.Database())
		}
	}

	// 初始化 Redis (可选)，用于会话快照
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
			storeOpts.Cache = redisCache
		}
	}

	store, err := conversation.NewStore(storeOpts)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
		chat:   service.NewChatService(b, store, cfg.Assistant),
	}

	// 设置路由
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.CORS(s.cfg.CORS, s.cfg.Session.Header))
	s.engine.Use(middleware.Logger())

	// 健康检查
	deps := make(map[string]handler.Pinger)
	if s.mongo != nil {
		deps["mongo"] = s.mongo
	}
	if s.redis != nil {
		deps["redis"] = s.redis
	}
	healthHandler := handler.NewHealthHandler(deps)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	chatHandler := handler.NewChatHandler(s.chat)
	convHandler := handler.NewConversationHandler(s.chat)

	api := s.engine.Group("/api/lilly")
	api.Use(middleware.Session(s.cfg.Session))
	{
		api.POST("/clear", convHandler.Clear)
		api.GET("/history", convHandler.History)

		// 生成回复的接口按会话限流
		gen := api.Group("")
		if s.cfg.RateLimit.Enabled {
			limiter, err := middleware.NewSessionRateLimiter(s.cfg.RateLimit, s.cfg.Session.MaxSessions)
			if err != nil {
				return err
			}
			gen.Use(limiter.Middleware())
		}
		gen.POST("/chat", chatHandler.Chat)
		gen.POST("/enrich_cve", chatHandler.EnrichCVE)
		gen.POST("/simplify_cve", chatHandler.SimplifyCVE)
	}

	return nil
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// 进行中的回复结束后再关闭连接，最后的助手消息仍能持久化
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return err
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
