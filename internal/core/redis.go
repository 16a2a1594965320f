// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/invoice-manager/internal/config"
)

type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

const denyListPrefix = "denylist:access:"

// TokenDenyList remembers revoked access-token IDs until they would have
// expired anyway.
type TokenDenyList struct {
	client *redis.Client
}

func NewTokenDenyList(client *redis.Client) *TokenDenyList {
	return &TokenDenyList{client: client}
}

func (d *TokenDenyList) Add(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 || jti == "" {
		return nil
	}

	if err := d.client.Set(ctx, denyListPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("deny token: %w", err)
	}

	return nil
}

func (d *TokenDenyList) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denyListPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check deny list: %w", err)
	}

	return n > 0, nil
}
