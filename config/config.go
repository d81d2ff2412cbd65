package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	WebPort              int           `mapstructure:"WEB_PORT"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	DebugMode            bool          `mapstructure:"DEBUG_MODE"`
	ProviderAPIKey       string        `mapstructure:"PROVIDER_API_KEY"`
	ProviderBaseURL      string        `mapstructure:"PROVIDER_BASE_URL"`
	EmbeddingModel       string        `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions  int           `mapstructure:"EMBEDDING_DIMENSIONS"`
	ChatModel            string        `mapstructure:"CHAT_MODEL"`
	ChatTemperature      float64       `mapstructure:"CHAT_TEMPERATURE"`
	DefaultResultCount   int           `mapstructure:"DEFAULT_RESULT_COUNT"`
	MaxResultCount       int           `mapstructure:"MAX_RESULT_COUNT"`
	ContextCharBudget    int           `mapstructure:"CONTEXT_CHAR_BUDGET"`
	ProviderTimeout      time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	DBMaxOpenConns       int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxIdleTime    time.Duration `mapstructure:"DB_CONN_MAX_IDLE_TIME"`
	RateLimitPerMinute   int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurstSize   int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	RateLimitMaxClients  int           `mapstructure:"RATE_LIMIT_MAX_CLIENTS"`
	PopulateBatchSize    int           `mapstructure:"POPULATE_BATCH_SIZE"`
	CurrentSeason        string        `mapstructure:"CURRENT_SEASON"`
	HighScoringThreshold int           `mapstructure:"HIGH_SCORING_THRESHOLD"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("WEB_PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DEBUG_MODE", false)
	viper.SetDefault("PROVIDER_API_KEY", "")
	viper.SetDefault("PROVIDER_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	viper.SetDefault("EMBEDDING_DIMENSIONS", 1536)
	viper.SetDefault("CHAT_MODEL", "gpt-4o-mini")
	viper.SetDefault("CHAT_TEMPERATURE", 0.1)
	viper.SetDefault("DEFAULT_RESULT_COUNT", 5)
	viper.SetDefault("MAX_RESULT_COUNT", 10)
	viper.SetDefault("CONTEXT_CHAR_BUDGET", 6000)
	viper.SetDefault("PROVIDER_TIMEOUT", 60)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME", 300)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 10)
	viper.SetDefault("RATE_LIMIT_MAX_CLIENTS", 4096)
	viper.SetDefault("POPULATE_BATCH_SIZE", 25)
	viper.SetDefault("CURRENT_SEASON", "2023/24")
	viper.SetDefault("HIGH_SCORING_THRESHOLD", 4)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.ProviderTimeout = config.ProviderTimeout * time.Second
	config.DBConnMaxIdleTime = config.DBConnMaxIdleTime * time.Second

	return &config
}

// Validate checks that every setting the request pipeline depends on is
// present, so a misconfigured deployment dies at startup instead of on the
// first paid provider call.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.DatabaseURL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if strings.TrimSpace(c.ProviderAPIKey) == "" {
		missing = append(missing, "PROVIDER_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.MaxResultCount < 1 {
		return fmt.Errorf("MAX_RESULT_COUNT must be at least 1, got %d", c.MaxResultCount)
	}
	if c.DefaultResultCount < 1 || c.DefaultResultCount > c.MaxResultCount {
		return fmt.Errorf("DEFAULT_RESULT_COUNT must be in [1, %d], got %d", c.MaxResultCount, c.DefaultResultCount)
	}
	return nil
}
