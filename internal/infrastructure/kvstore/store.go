// Package kvstore persists the client session under fixed keys. Backends:
// an in-memory map, a JSON file, a SQLite table through gorm, and Redis.
package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"expopanel/internal/domain/session"
	"expopanel/internal/shared/config"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Store is a session.Storage that may own resources.
type Store interface {
	session.Storage
	Close() error
}

// New opens the backend selected by cfg.Storage.
func New(ctx context.Context, cfg *config.SessionConfig, redisCfg *config.RedisConfig) (Store, error) {
	switch strings.ToLower(cfg.Storage) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(cfg.FilePath), nil
	case BackendSQLite:
		return OpenSQLiteStore(cfg.SQLitePath)
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.GetAddr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client, redisCfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown session storage %q", cfg.Storage)
	}
}
