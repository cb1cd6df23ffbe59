package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trotyl/uestc-sdk-go/pkg/config"
)

const pingTimeout = 3 * time.Second

// NewRedis returns a Redis client for search snapshots after verifying the connection.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}

	return client, nil
}

// NewSnapshotClient connects only when snapshots are enabled. A nil client disables snapshots.
func NewSnapshotClient(snapshot config.SnapshotConfig, cfg config.RedisConfig) (*redis.Client, error) {
	if !snapshot.Enabled {
		return nil, nil
	}
	return NewRedis(cfg)
}
