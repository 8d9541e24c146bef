// Package config loads process-wide settings from the environment (optionally
// seeded from a .env file) and holds the static tuning constants.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"

	EventsRedis = "redis"
	EventsLocal = "local"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	StoreDriver  string `mapstructure:"store_driver"`
	EventsDriver string `mapstructure:"events_driver"`

	DatabaseURL string `mapstructure:"database_url"`
	DBHost      string `mapstructure:"db_host"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`
	DBPort      string `mapstructure:"db_port"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	AppID          string        `mapstructure:"agora_app_id"`
	AppCertificate string        `mapstructure:"agora_app_cert"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	MatchAttempts  int           `mapstructure:"match_attempts"`
}

var keys = []string{
	"mode", "port", "log_level",
	"store_driver", "events_driver",
	"database_url", "db_host", "db_user", "db_password", "db_name", "db_port",
	"redis_addr", "redis_password", "redis_db",
	"agora_app_id", "agora_app_cert", "token_ttl", "match_attempts",
}

// Load reads .env (if present) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debug().Err(err).Str("module", "config").Msg("no .env file loaded")
	}

	v := viper.New()
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("store_driver", StorePostgres)
	v.SetDefault("events_driver", EventsRedis)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "user")
	v.SetDefault("db_password", "password")
	v.SetDefault("db_name", "debatematchdb")
	v.SetDefault("db_port", "5432")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("token_ttl", DefaultTokenTTL)
	v.SetDefault("match_attempts", DefaultMatchAttempts)

	v.AutomaticEnv()
	// AutomaticEnv only affects Get; Unmarshal needs every key bound explicitly.
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.EventsDriver {
	case EventsRedis, EventsLocal:
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", c.EventsDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.MatchAttempts <= 0 {
		c.MatchAttempts = DefaultMatchAttempts
	}
	return nil
}

// PostgresURL returns DATABASE_URL, or a DSN assembled from the DB_* variables.
func (c *Config) PostgresURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// NeedsRedis reports whether any component connects to Redis.
func (c *Config) NeedsRedis() bool {
	return c.StoreDriver == StoreRedis || c.EventsDriver == EventsRedis
}

// CredentialsConfigured reports whether credential signing material is set.
func (c *Config) CredentialsConfigured() bool {
	return c.AppID != "" && c.AppCertificate != ""
}

// SetupLogger configures the global zerolog logger: console output in debug
// mode, JSON otherwise.
func SetupLogger(mode, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if mode == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
