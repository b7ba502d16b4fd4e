package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendDisk     = "disk"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"

	DefaultGoalMinutes = 150
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// storage
	StorageBackend  string `toml:"storage_backend"`
	DataDir         string `toml:"data_dir"`
	RecordsArtifact string `toml:"records_artifact"`
	GoalArtifact    string `toml:"goal_artifact"`
	ChartPath       string `toml:"chart_path"`

	DefaultGoalMinutes int `toml:"default_goal_minutes"`

	// redis, used by the redis backend and the write rate limiter
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`
	RedisKeyPrefix string `toml:"redis_key_prefix"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// 0 disables rate limiting of the mutating routes
	WriteRateLimitPerMin int `toml:"write_rate_limit_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for the given env,
// with defaults applied for the omitted values.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "127.0.0.1"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "9090"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = BackendDisk
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.RecordsArtifact == "" {
		c.RecordsArtifact = "workouts.json"
	}
	if c.GoalArtifact == "" {
		c.GoalArtifact = "goal.json"
	}
	if c.ChartPath == "" {
		c.ChartPath = filepath.Join(c.DataDir, "chart.png")
	}
	if c.DefaultGoalMinutes == 0 {
		c.DefaultGoalMinutes = DefaultGoalMinutes
	}
	if c.RedisHost == "" {
		c.RedisHost = "localhost"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.RedisKeyPrefix == "" {
		c.RedisKeyPrefix = "workoutlog"
	}
	if c.PostgresHost == "" {
		c.PostgresHost = "localhost"
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresDBName == "" {
		c.PostgresDBName = "workoutlog"
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendDisk, BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown storage backend: %q", c.StorageBackend)
	}
	if c.DefaultGoalMinutes <= 0 {
		return errors.New("default goal minutes must be positive")
	}
	if c.WriteRateLimitPerMin < 0 {
		return errors.New("write rate limit cannot be negative")
	}
	if c.RecordsArtifact == c.GoalArtifact {
		return errors.New("records and goal artifacts must differ")
	}
	return nil
}

// UsesRedis reports whether a redis client is needed, either for storage or rate limiting.
func (c *Config) UsesRedis() bool {
	return c.StorageBackend == BackendRedis || c.WriteRateLimitPerMin > 0
}
