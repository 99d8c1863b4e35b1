// Package config loads and validates application configuration from YAML or
// TOML files with environment-variable overrides. It provides typed structs
// for every subsystem (Server, Postgres, Kafka, Redis, Index, Search, etc.).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres" toml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka" toml:"kafka"`
	Redis     RedisConfig     `yaml:"redis" toml:"redis"`
	Index     IndexConfig     `yaml:"index" toml:"index"`
	Tokens    TokensConfig    `yaml:"tokens" toml:"tokens"`
	Search    SearchConfig    `yaml:"search" toml:"search"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
	Analytics AnalyticsConfig `yaml:"analytics" toml:"analytics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" toml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout" toml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" toml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" toml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" toml:"shutdownTimeout"`
	// RateLimit is the number of API requests a client address may make per
	// minute. Zero disables limiting.
	RateLimit   int      `yaml:"rateLimit" toml:"rateLimit"`
	CORSOrigins []string `yaml:"corsOrigins" toml:"corsOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port"`
	Database        string        `yaml:"database" toml:"database"`
	User            string        `yaml:"user" toml:"user"`
	Password        string        `yaml:"password" toml:"password"`
	SSLMode         string        `yaml:"sslMode" toml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns" toml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns" toml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" toml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers" toml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup" toml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics" toml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyticsEvents string `yaml:"analyticsEvents" toml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Addr     string        `yaml:"addr" toml:"addr"`
	Password string        `yaml:"password" toml:"password"`
	DB       int           `yaml:"db" toml:"db"`
	PoolSize int           `yaml:"poolSize" toml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL" toml:"cacheTTL"`
}

// IndexConfig selects the corpus the index is built from and the SMART
// weighting scheme applied to it.
type IndexConfig struct {
	Scheme     string `yaml:"scheme" toml:"scheme"`
	CorpusPath string `yaml:"corpusPath" toml:"corpusPath"`
	Format     string `yaml:"format" toml:"format"`
	Payloads   bool   `yaml:"payloads" toml:"payloads"`
}

// TokensConfig controls how corpus and query tokens are turned into terms.
type TokensConfig struct {
	// Tokenizer is "simple" (split on non-alphanumerics) or "whitespace".
	Tokenizer       string `yaml:"tokenizer" toml:"tokenizer"`
	Lowercase       bool   `yaml:"lowercase" toml:"lowercase"`
	RemoveStopwords bool   `yaml:"removeStopwords" toml:"removeStopwords"`
	Stem            bool   `yaml:"stem" toml:"stem"`
}

// SearchConfig controls query result limits.
type SearchConfig struct {
	MaxResults   int `yaml:"maxResults" toml:"maxResults"`
	DefaultLimit int `yaml:"defaultLimit" toml:"defaultLimit"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	Port    int  `yaml:"port" toml:"port"`
}

// AnalyticsConfig controls query event collection. With Publish set, events
// go through Kafka and are aggregated by a consumer; otherwise they are
// aggregated in process. A zero SnapshotInterval disables Postgres
// snapshots.
type AnalyticsConfig struct {
	Enabled          bool          `yaml:"enabled" toml:"enabled"`
	Publish          bool          `yaml:"publish" toml:"publish"`
	BufferSize       int           `yaml:"bufferSize" toml:"bufferSize"`
	BatchSize        int           `yaml:"batchSize" toml:"batchSize"`
	FlushInterval    time.Duration `yaml:"flushInterval" toml:"flushInterval"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval" toml:"snapshotInterval"`
	// SnapshotRetention is how many snapshots are kept; 0 keeps all.
	SnapshotRetention int `yaml:"snapshotRetention" toml:"snapshotRetention"`
}

// Load reads a YAML or TOML config file (if provided), chosen by extension,
// and applies environment-variable overrides. Missing values keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case ".yaml", ".yml", "":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("config file %s: unsupported extension, want .yaml, .yml or .toml", path)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, at index build or
// query time. The weighting scheme code itself is parsed by the indexer.
func (c *Config) Validate() error {
	if len(c.Index.Scheme) != 3 {
		return fmt.Errorf("index.scheme %q: want a three-letter SMART code", c.Index.Scheme)
	}
	switch strings.ToLower(c.Index.Format) {
	case "", "tdt", "jsonl", "web", "postgres", "pg":
	default:
		return fmt.Errorf("index.format %q: want tdt, jsonl or postgres", c.Index.Format)
	}
	switch strings.ToLower(c.Tokens.Tokenizer) {
	case "", "simple", "whitespace":
	default:
		return fmt.Errorf("tokens.tokenizer %q: want simple or whitespace", c.Tokens.Tokenizer)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit must not be negative")
	}
	if c.Search.DefaultLimit < 0 || c.Search.MaxResults < 0 {
		return fmt.Errorf("search limits must not be negative")
	}
	if c.Search.MaxResults > 0 && c.Search.DefaultLimit > c.Search.MaxResults {
		return fmt.Errorf("search.defaultLimit %d exceeds search.maxResults %d",
			c.Search.DefaultLimit, c.Search.MaxResults)
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "searchplatform",
			User:            "searchplatform",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "search-analytics",
			Topics: KafkaTopics{
				AnalyticsEvents: "analytics-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Index: IndexConfig{
			Scheme: "ltc",
			Format: "tdt",
		},
		Tokens: TokensConfig{
			Tokenizer: "simple",
			Lowercase: true,
		},
		Search: SearchConfig{
			MaxResults:   1000,
			DefaultLimit: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
		Analytics: AnalyticsConfig{
			BufferSize:        1000,
			BatchSize:         100,
			FlushInterval:     5 * time.Second,
			SnapshotRetention: 1440,
		},
	}
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SP_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("SP_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("SP_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SP_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SP_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SP_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SP_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("SP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("SP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SP_INDEX_SCHEME"); v != "" {
		cfg.Index.Scheme = v
	}
	if v := os.Getenv("SP_INDEX_CORPUS_PATH"); v != "" {
		cfg.Index.CorpusPath = v
	}
	if v := os.Getenv("SP_INDEX_FORMAT"); v != "" {
		cfg.Index.Format = v
	}
	if v := os.Getenv("SP_TOKENS_TOKENIZER"); v != "" {
		cfg.Tokens.Tokenizer = v
	}
	if v := os.Getenv("SP_ANALYTICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Enabled = enabled
		}
	}
	if v := os.Getenv("SP_ANALYTICS_PUBLISH"); v != "" {
		if publish, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Publish = publish
		}
	}
	if v := os.Getenv("SP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
