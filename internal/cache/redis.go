package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"stoik/internal/domain"
	applog "stoik/internal/log"
)

const dashboardKey = "stoik:dashboard"

// Redis caches the dashboard as a JSON value with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and pings it before returning.
func NewRedis(addr string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	applog.L().Info("cache.redis.connected", zap.String("addr", addr), zap.String("ping", pong))

	return NewRedisFromClient(client, ttl), nil
}

func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) GetDashboard(ctx context.Context) (*domain.DashboardStats, error) {
	raw, err := r.client.Get(ctx, dashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var stats domain.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *Redis) SetDashboard(ctx context.Context, stats *domain.DashboardStats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dashboardKey, b, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, dashboardKey).Err()
}

func (r *Redis) Close() error {
	err := r.client.Close()
	applog.L().Info("cache.redis.closed")
	return err
}
