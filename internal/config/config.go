package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage driver identifiers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	StorageDriver     string
	SQLitePath        string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	TokenTTL          time.Duration
	AnalyticsCacheTTL time.Duration
	AIProvider        string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	AnthropicAPIKey   string
	AnthropicBaseURL  string
	AnthropicModel    string
	GradingTimeout    time.Duration
	LoginRateLimit    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SMARTCIA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SmartCIA API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("sqlite.path", "smartcia.db")
	v.SetDefault("token.ttl", "12h")
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("grading.timeout", "30s")
	v.SetDefault("login.rate_limit", 10)

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("analytics.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	gradingTimeout, err := time.ParseDuration(v.GetString("grading.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		StorageDriver:     strings.ToLower(v.GetString("storage.driver")),
		SQLitePath:        v.GetString("sqlite.path"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		TokenTTL:          tokenTTL,
		AnalyticsCacheTTL: cacheTTL,
		AIProvider:        strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		OpenAIBaseURL:     v.GetString("openai_base_url"),
		OpenAIModel:       v.GetString("openai_model"),
		AnthropicAPIKey:   v.GetString("anthropic_api_key"),
		AnthropicBaseURL:  v.GetString("anthropic_base_url"),
		AnthropicModel:    v.GetString("anthropic_model"),
		GradingTimeout:    gradingTimeout,
		LoginRateLimit:    v.GetInt("login.rate_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for postgres storage")
		}
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.StorageDriver == StorageRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("redis url must be provided for redis storage")
	}

	return cfg, nil
}
