package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lilly/internal/config"
	"lilly/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lilly",
	Short: "Lilly - cybersecurity assistant API",
	Long: `Lilly streams answers from a language-model backend and reconstructs
readable text from the raw token stream as it arrives.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.lilly")
	}

	// 环境变量设置
	viper.SetEnvPrefix("LILLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "0s") // 流式回复不设写超时

	// Backend
	viper.SetDefault("backend.provider", config.ProviderLlama)
	viper.SetDefault("backend.url", "http://localhost:8080/v1/chat/completions")
	viper.SetDefault("backend.model", "")
	viper.SetDefault("backend.timeout", "60s")
	viper.SetDefault("backend.max_retries", 3)
	viper.SetDefault("backend.retry_delay", "500ms")
	viper.SetDefault("backend.options.temperature", 0.7)
	viper.SetDefault("backend.options.max_tokens", 1024)
	viper.SetDefault("backend.options.top_p", 1.0)

	// Assistant
	viper.SetDefault("assistant.name", "Lilly")
	viper.SetDefault("assistant.system_prompt", "You are Lilly, a helpful cybersecurity assistant.")
	viper.SetDefault("assistant.empty_answer", "No answer returned.")

	// Session
	viper.SetDefault("session.cookie_name", "lilly_session")
	viper.SetDefault("session.header", "X-Session-ID")
	viper.SetDefault("session.max_sessions", 1024)
	viper.SetDefault("session.ttl", "30m")

	// Rate limit
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.messages_per_minute", 20)
	viper.SetDefault("rate_limit.burst", 5)

	// CORS
	viper.SetDefault("cors.allow_origins", []string{"*"})

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB (可选，留空不启用归档)
	viper.SetDefault("mongo.uri", "")
	viper.SetDefault("mongo.database", "lilly")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)

	// Redis (可选，留空不启用快照)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
