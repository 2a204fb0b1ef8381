package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/memo/internal/config"
	boltInfra "github.com/fastygo/memo/internal/infrastructure/bolt"
	"github.com/fastygo/memo/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/memo/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/memo/internal/infrastructure/redis"
	"github.com/fastygo/memo/internal/services/lifecycle"
	"github.com/fastygo/memo/repository"
	boltRepo "github.com/fastygo/memo/repository/bolt"
	"github.com/fastygo/memo/repository/memory"
	pgRepo "github.com/fastygo/memo/repository/postgres"
	redisRepo "github.com/fastygo/memo/repository/redis"
)

// openSessionStore connects the configured session backend and registers
// its shutdown with manager.
func openSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger, manager *lifecycle.Manager) (repository.SessionRepository, error) {
	ttl := cfg.Session.TTL

	switch cfg.Session.Backend {
	case config.BackendMemory:
		log.Warn("memory session store selected; sessions end on restart")
		return memory.NewSessionRepository(ttl), nil

	case config.BackendBolt:
		db, err := boltInfra.Open(cfg.Bolt.Path, cfg.Bolt.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		manager.Closer("bolt", db.Close)
		log.Info("bolt session store opened", zap.String("path", cfg.Bolt.Path))
		return boltRepo.NewSessionRepository(db, cfg.Bolt.Bucket, ttl), nil

	case config.BackendRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		manager.Closer("redis", client.Close)
		log.Info("redis session store connected")
		return redisRepo.NewSessionRepository(client, ttl, redisRepo.WithPrefix(cfg.Redis.KeyPrefix)), nil

	case config.BackendPostgres:
		if err := pgInfra.RunMigrations(cfg, log); err != nil {
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		return pgRepo.NewSessionRepository(pool, ttl), nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// storeChecks is what the health monitor probes.
func storeChecks(cfg *config.Config, sessions repository.SessionRepository) map[string]monitor.Check {
	return map[string]monitor.Check{
		"sessions:" + cfg.Session.Backend: sessions.Ping,
	}
}
