package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8000, Mode: "release"},
		Backend: BackendConfig{Provider: ProviderLlama, URL: "http://localhost:8080/v1/chat/completions", MaxRetries: 3},
		Session: SessionConfig{MaxSessions: 1024, TTL: 30 * time.Minute},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			MessagesPerMinute: 20,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, true},
		{"unknown provider", func(c *Config) { c.Backend.Provider = "anthropic" }, true},
		{"llama without url", func(c *Config) { c.Backend.URL = "" }, true},
		{"ark without url", func(c *Config) { c.Backend.Provider = ProviderArk; c.Backend.URL = "" }, false},
		{"negative retries", func(c *Config) { c.Backend.MaxRetries = -1 }, true},
		{"no sessions", func(c *Config) { c.Session.MaxSessions = 0 }, true},
		{"rate limit without budget", func(c *Config) { c.RateLimit.MessagesPerMinute = 0 }, true},
		{"rate limit disabled", func(c *Config) { c.RateLimit = RateLimitConfig{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
