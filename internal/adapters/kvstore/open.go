package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strictpm/core/internal/infrastructure/config"
	"github.com/strictpm/core/internal/infrastructure/database"
	"github.com/strictpm/core/internal/ports"
)

// Open connects the backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil

	case config.DriverSQLite:
		return NewSQLiteStore(cfg.Storage.SQLitePath)

	case config.DriverPostgres:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, err
		}
		return &ownedPostgresStore{PostgresStore: NewPostgresStore(db.DB), db: db}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.GetAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.GetAddr(), err)
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// ownedPostgresStore closes the connection it was opened with.
type ownedPostgresStore struct {
	*PostgresStore
	db *database.DB
}

func (s *ownedPostgresStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *ownedPostgresStore) Close() error {
	return s.db.Close()
}
