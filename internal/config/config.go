package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	EvaluationModeReactive = "reactive"
	EvaluationModeLegacy   = "legacy"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig        `mapstructure:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ConfigPath string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	// Path is the sqlite database file, used when Driver is sqlite.
	Path string
}

type LogConfig struct {
	File string `mapstructure:"file"`
	// Level overrides the level implied by the server mode.
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServiceName       string `mapstructure:"service_name"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type EvaluationConfig struct {
	// Mode selects the evaluation backend: reactive (in-process) or legacy (remote).
	Mode             string        `mapstructure:"mode"`
	LegacyURL        string        `mapstructure:"legacy_url"`
	LegacyTimeout    time.Duration `mapstructure:"legacy_timeout"`
	RollupMaxDepth   int           `mapstructure:"rollup_max_depth"`
	AncestryCacheTTL time.Duration `mapstructure:"ancestry_cache_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("tracing.service_name", "courseware-engine")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("evaluation.mode", EvaluationModeReactive)
	v.SetDefault("evaluation.legacy_timeout", 10*time.Second)
	v.SetDefault("evaluation.rollup_max_depth", 32)
	v.SetDefault("evaluation.ancestry_cache_ttl", 5*time.Minute)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("COURSEWARE")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("log.level", "LOG_LEVEL")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Evaluation
	v.BindEnv("evaluation.mode", "EVALUATION_MODE")
	v.BindEnv("evaluation.legacy_url", "EVALUATION_LEGACY_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the engine cannot run without.
func (c *Config) Validate() error {
	switch c.Evaluation.Mode {
	case EvaluationModeReactive:
	case EvaluationModeLegacy:
		if c.Evaluation.LegacyURL == "" {
			return fmt.Errorf("evaluation.legacy_url is required in %s mode", EvaluationModeLegacy)
		}
	default:
		return fmt.Errorf("unknown evaluation mode %q", c.Evaluation.Mode)
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}

	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowMinutes <= 0 {
		return fmt.Errorf("rate_limit needs positive max_requests and window_minutes")
	}

	if c.Evaluation.RollupMaxDepth <= 0 {
		return fmt.Errorf("evaluation.rollup_max_depth must be positive, got %d", c.Evaluation.RollupMaxDepth)
	}
	return nil
}
