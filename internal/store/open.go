package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/justchokingaround/cicidraci/internal/config"
	"github.com/justchokingaround/cicidraci/internal/database"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open builds the KV selected by cfg.Store.Backend. The returned closer
// releases the backend's connections.
func Open(cfg *config.Config, logger *slog.Logger) (KV, io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Store.Backend {
	case "memory":
		logger.Debug("using in-memory view state")
		return NewMemory(), closerFunc(func() error { return nil }), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug("using redis view state", "addr", cfg.Redis.Addr)
		return NewRedis(client, cfg.Redis.Prefix), client, nil

	case "sqlite", "":
		db, err := database.Open(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using sqlite view state", "path", cfg.Database.Path)
		return NewSQLite(db), closerFunc(func() error { return database.Close(db) }), nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
