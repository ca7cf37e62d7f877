package app

import (
	"context"
	"fmt"
	"time"

	"authbridge/internal/cache"
	"authbridge/internal/config"
	"authbridge/internal/db"
	"authbridge/internal/logger"
	"authbridge/internal/redis"
)

const sweepInterval = time.Minute

type Infra struct {
	DB    *db.DB        // nil without DATABASE_DSN
	Redis *redis.Client // nil with the memory cache
	Cache cache.Cache

	stopSweep context.CancelFunc
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	switch cfg.CacheBackend {
	case "redis":
		redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		infra.Redis = redisClient
		infra.Cache = cache.NewRedis(redisClient.Client)
		logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})

	case "memory", "":
		mem := cache.NewMemory()
		sweepCtx, cancel := context.WithCancel(context.Background())
		go mem.Run(sweepCtx, sweepInterval)
		infra.Cache = mem
		infra.stopSweep = cancel
		logger.Info("memory cache ready", nil)

	default:
		return nil, fmt.Errorf("app: unknown cache backend %q", cfg.CacheBackend)
	}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.DB = database
		logger.Info("database ready", nil)
	}

	return infra, nil
}

func (i *Infra) Close() error {
	if i.stopSweep != nil {
		i.stopSweep()
	}

	var firstErr error
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
