package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	NewsAPI    NewsAPIConfig    `envconfig:"NEWSAPI"`
	NLU        NLUConfig        `envconfig:"NLU"`
	Scheduler  SchedulerConfig  `envconfig:"SCHEDULER"`
	Workers    WorkersConfig    `envconfig:"WORKERS"`
	Trends     TrendsConfig     `envconfig:"TRENDS"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	API        APIConfig        `envconfig:"API"`
	Health     HealthConfig     `envconfig:"HEALTH"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// DatabaseConfig represents PostgreSQL connection parameters
type DatabaseConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"newspulse"`
	User           string `envconfig:"DB_USER" required:"true"`
	Password       string `envconfig:"DB_PASSWORD" required:"true"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

// RedisConfig represents Redis connection parameters (task queue + sweep lock)
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ClickHouseConfig represents the optional trend analytics sink
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"newspulse"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// NewsAPIConfig represents the external news source service
type NewsAPIConfig struct {
	BaseURL  string        `envconfig:"NEWSAPI_BASE_URL" default:"https://newsapi.org/v2"`
	APIKey   string        `envconfig:"NEWSAPI_API_KEY" required:"true"`
	Sources  []string      `envconfig:"NEWSAPI_SOURCES" default:"cnn,bbc-news,business-insider,ars-technica,techcrunch"`
	Language string        `envconfig:"NEWSAPI_LANGUAGE" default:"en"`
	PageSize int           `envconfig:"NEWSAPI_PAGE_SIZE" default:"100"`
	Timeout  time.Duration `envconfig:"NEWSAPI_TIMEOUT" default:"10s"`
}

// NLUConfig represents the external sentiment analysis service
type NLUConfig struct {
	BaseURL      string        `envconfig:"NLU_BASE_URL" required:"true"`
	APIKey       string        `envconfig:"NLU_API_KEY" required:"true"`
	Version      string        `envconfig:"NLU_VERSION" default:"2018-03-16"`
	KeywordLimit int           `envconfig:"NLU_KEYWORD_LIMIT" default:"5"`
	Timeout      time.Duration `envconfig:"NLU_TIMEOUT" default:"15s"`
}

// SchedulerConfig represents keyword refresh scheduling parameters
type SchedulerConfig struct {
	SweepInterval       time.Duration `envconfig:"SCHEDULER_SWEEP_INTERVAL" default:"5m"`
	DefaultRefreshHours int           `envconfig:"SCHEDULER_DEFAULT_REFRESH_HOURS" default:"2"`
	HistoricLookback    time.Duration `envconfig:"SCHEDULER_HISTORIC_LOOKBACK" default:"720h"`
}

// WorkersConfig represents the task queue consumer pool
type WorkersConfig struct {
	Concurrency int    `envconfig:"WORKERS_CONCURRENCY" default:"4"`
	QueueKey    string `envconfig:"WORKERS_QUEUE_KEY" default:"newspulse:tasks"`
}

// TrendsConfig represents trend snapshot parameters
type TrendsConfig struct {
	SnapshotInterval time.Duration `envconfig:"TRENDS_SNAPSHOT_INTERVAL" default:"1h"`
	SmoothingPeriod  int           `envconfig:"TRENDS_SMOOTHING_PERIOD" default:"3"`
	AlertThreshold   float64       `envconfig:"TRENDS_ALERT_THRESHOLD" default:"0.5"`
}

// TelegramConfig represents the optional trend alert channel
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// APIConfig represents the keyword management HTTP API
type APIConfig struct {
	Port string `envconfig:"API_PORT" default:"8090"`
}

// HealthConfig represents the health probe server
type HealthConfig struct {
	Port string `envconfig:"HEALTH_PORT" default:"8080"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.NewsAPI.PageSize < 1 || c.NewsAPI.PageSize > 100 {
		return fmt.Errorf("newsapi page_size must be between 1 and 100")
	}
	if c.Scheduler.DefaultRefreshHours < 1 {
		return fmt.Errorf("default_refresh_hours must be at least 1")
	}
	if c.Scheduler.HistoricLookback <= 0 {
		return fmt.Errorf("historic_lookback must be positive")
	}
	if c.Workers.Concurrency < 1 {
		return fmt.Errorf("workers concurrency must be at least 1")
	}
	if c.Trends.SmoothingPeriod < 1 {
		return fmt.Errorf("trends smoothing_period must be at least 1")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram alerts enabled but bot token or chat_id missing")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}
