package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresDSN turns a postgres:// URL into a key=value DSN. Anything that is not a
// URL is returned unchanged.
func PostgresDSN(databaseURL string) (string, error) {
	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return databaseURL, nil
	}
	dsn, err := pq.ParseURL(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	return dsn, nil
}

// OpenPostgres connects to PostgreSQL and migrates the rooms table.
func OpenPostgres(databaseURL string, debug bool) (*Service, error) {
	dsn, err := PostgresDSN(databaseURL)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, unavailable(err)
	}

	s := NewStorageService(db)
	if err := s.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// OpenRedis connects to Redis and checks the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, unavailable(err)
	}
	return rdb, nil
}
