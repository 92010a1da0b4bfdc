package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// 后端类型
const (
	ProviderLlama  = "llama"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderArk    = "ark"
)

// BackendConfig 模型推理后端配置
// llama 走 OpenAI 兼容的流式 HTTP 接口 (llama.cpp server)，其余走 eino ChatModel
type BackendConfig struct {
	Provider   string               `mapstructure:"provider"`
	URL        string               `mapstructure:"url"`
	Model      string               `mapstructure:"model"`
	APIKey     string               `mapstructure:"api_key"`
	BaseURL    string               `mapstructure:"base_url"`
	Timeout    time.Duration        `mapstructure:"timeout"`     // 等待响应头的超时，0 表示不限制
	MaxRetries int                  `mapstructure:"max_retries"` // 503 重试次数
	RetryDelay time.Duration        `mapstructure:"retry_delay"` // 首次重试间隔，之后指数增长
	Options    BackendOptionsConfig `mapstructure:"options"`
}

// BackendOptionsConfig 模型采样参数
type BackendOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// AssistantConfig 助手配置
type AssistantConfig struct {
	Name         string `mapstructure:"name"`          // 显示名称，用于诊断信息
	SystemPrompt string `mapstructure:"system_prompt"` // 每个会话的第一条消息
	EmptyAnswer  string `mapstructure:"empty_answer"`  // 非流式调用得到空结果时的替代文本
}

// SessionConfig 会话配置
type SessionConfig struct {
	CookieName  string        `mapstructure:"cookie_name"`
	Header      string        `mapstructure:"header"`
	MaxSessions int           `mapstructure:"max_sessions"` // 内存中保留的会话数上限
	TTL         time.Duration `mapstructure:"ttl"`          // cookie 与快照的有效期
}

// RateLimitConfig 限流配置 (按会话)
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	MessagesPerMinute int  `mapstructure:"messages_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	switch c.Backend.Provider {
	case ProviderLlama:
		if c.Backend.URL == "" {
			return errors.New("backend url is required for provider llama")
		}
	case ProviderOpenAI, ProviderAzure, ProviderArk:
	default:
		return fmt.Errorf("unsupported backend provider: %s", c.Backend.Provider)
	}

	if c.Backend.MaxRetries < 0 {
		return errors.New("backend max_retries must not be negative")
	}

	if c.Session.MaxSessions <= 0 {
		return errors.New("session max_sessions must be positive")
	}

	if c.RateLimit.Enabled && c.RateLimit.MessagesPerMinute <= 0 {
		return errors.New("rate_limit messages_per_minute must be positive when enabled")
	}

	return nil
}
