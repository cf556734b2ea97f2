// Package config loads the service configuration from a YAML file,
// an optional .env file and CADASTRO_* environment variables, in that
// order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CADASTRO_DB_HOST.
// envconfig falls back to the unprefixed name (DB_HOST) when the prefixed
// variable is not set.
const EnvPrefix = "CADASTRO"

type Config struct {
	GRPCPort int    `yaml:"GRPC_PORT" envconfig:"GRPC_PORT"`
	HTTPPort int    `yaml:"HTTP_PORT" envconfig:"HTTP_PORT"`
	Env      string `yaml:"ENV" envconfig:"ENV"`
	LogLevel string `yaml:"LOG_LEVEL" envconfig:"LOG_LEVEL"`

	DBDriver         string        `yaml:"DB_DRIVER" envconfig:"DB_DRIVER"`
	DBHost           string        `yaml:"DB_HOST" envconfig:"DB_HOST"`
	DBPort           int           `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBUser           string        `yaml:"DB_USER" envconfig:"DB_USER"`
	DBPassword       string        `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBName           string        `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBSSLMode        string        `yaml:"DB_SSLMODE" envconfig:"DB_SSLMODE"`
	DBDSN            string        `yaml:"DB_DSN" envconfig:"DB_DSN"`
	DBMaxOpenConns   int           `yaml:"DB_MAX_OPEN_CONNS" envconfig:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns   int           `yaml:"DB_MAX_IDLE_CONNS" envconfig:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLife    time.Duration `yaml:"DB_CONN_MAX_LIFETIME" envconfig:"DB_CONN_MAX_LIFETIME"`
	DBConnectTimeout time.Duration `yaml:"DB_CONNECT_TIMEOUT" envconfig:"DB_CONNECT_TIMEOUT"`

	KafkaEnabled bool     `yaml:"KAFKA_ENABLED" envconfig:"KAFKA_ENABLED"`
	KafkaBrokers []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC" envconfig:"TOPIC"`

	RedisAddr   string        `yaml:"REDIS_ADDR" envconfig:"REDIS_ADDR"`
	CEPCacheTTL time.Duration `yaml:"CEP_CACHE_TTL" envconfig:"CEP_CACHE_TTL"`
	CEPTimeout  time.Duration `yaml:"CEP_TIMEOUT" envconfig:"CEP_TIMEOUT"`
	CepLaURL    string        `yaml:"CEPLA_URL" envconfig:"CEPLA_URL"`
	ViaCEPURL   string        `yaml:"VIACEP_URL" envconfig:"VIACEP_URL"`

	RateLimitPerMinute int `yaml:"RATE_LIMIT_PER_MINUTE" envconfig:"RATE_LIMIT_PER_MINUTE"`
}

// Default returns the configuration used for keys that no source sets.
func Default() Config {
	return Config{
		GRPCPort:           50051,
		HTTPPort:           8080,
		Env:                "development",
		LogLevel:           "info",
		DBDriver:           "postgres",
		DBHost:             "localhost",
		DBPort:             5432,
		DBUser:             "postgres",
		DBName:             "cadastro",
		DBSSLMode:          "disable",
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     5,
		DBConnMaxLife:      30 * time.Minute,
		DBConnectTimeout:   30 * time.Second,
		Topic:              "cadastro.events",
		CEPCacheTTL:        24 * time.Hour,
		CEPTimeout:         2 * time.Second,
		RateLimitPerMinute: 600,
	}
}

// Load reads path (skipped when empty or missing), then envFile (skipped
// when missing), then the environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(file, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT %d", c.GRPCPort)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ")
	}
	switch c.DBDriver {
	case "postgres":
	case "sqlite":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}
