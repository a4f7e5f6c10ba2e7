package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/env"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ServiceName = "ludo-lobby"

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

type DatabaseConfiguration struct {
	URL          string        `env:"DATABASE_URL,required,notEmpty"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	LockTimeout  time.Duration `env:"LOCK_TIMEOUT" envDefault:"5s"`
}

type AuthConfiguration struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type CacheConfiguration struct {
	Backend  string        `env:"CACHE_BACKEND" envDefault:"none"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"5s"`
	RedisURL string        `env:"REDIS_URL"`
}

type TelemetryConfiguration struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint string `env:"OTEL_ENDPOINT"`
}

type Config struct {
	Logger *zap.Logger `env:"-"`

	Port            int           `env:"PORT" envDefault:"8080"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:8081" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`

	Database  DatabaseConfiguration
	Auth      AuthConfiguration
	Cache     CacheConfiguration
	Telemetry TelemetryConfiguration
}

func Load() (Config, error) {
	config, err := env.Parse[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finish(config)
}

// LoadFrom reads the configuration from the given environment instead of the
// process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	config, err := env.ParseFrom[Config](environment)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return finish(config)
}

func finish(config Config) (Config, error) {
	if err := config.validate(); err != nil {
		return Config{}, err
	}

	logger, err := newLogger(config.LogLevel, config.LogFormat)
	if err != nil {
		return Config{}, err
	}
	config.Logger = logger

	return config, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT - '%d'", c.Port)
	}

	if c.Database.LockTimeout < 0 {
		return fmt.Errorf("invalid LOCK_TIMEOUT - '%s'", c.Database.LockTimeout)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is '%s'", CacheBackendRedis)
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND - '%s'", c.Cache.Backend)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}

	return nil
}

func newLogger(level string, format string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL - '%s': %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json", "":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT - '%s'", format)
	}
	cfg.Level = atomicLevel

	return cfg.Build()
}
