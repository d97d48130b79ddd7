package store

import (
	"context"
	"fmt"

	"mangrovewatch/backend/config"
	"mangrovewatch/common"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// Open builds the backend selected by cfg.StoreBackend. The returned close
// function releases any connections and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	noop := func() error { return nil }
	log.WithField("backend", cfg.StoreBackend).Debug("Opening session store")

	switch cfg.StoreBackend {
	case "memory":
		return NewMemory(), noop, nil
	case "file", "":
		f, err := OpenFile(cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case "mysql":
		db, err := common.DBConnect(ctx, common.DBParams{
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			Name:     cfg.DBName,
		})
		if err != nil {
			return nil, noop, err
		}
		m := NewMySQL(db)
		if err := m.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return m, db.Close, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedis(client, cfg.RedisPrefix), client.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
}
