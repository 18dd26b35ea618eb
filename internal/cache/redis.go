package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"interviewdesk/internal/domain"
)

type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects and pings once so a bad address fails at startup.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, date string) ([]domain.Slot, bool, error) {
	raw, err := r.client.Get(ctx, key(r.prefix, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var slots []domain.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("decode cached slots: %w", err)
	}
	return slots, true, nil
}

func (r *Redis) Set(ctx context.Context, date string, slots []domain.Slot) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	if err := r.client.Set(ctx, key(r.prefix, date), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, dates ...string) error {
	if len(dates) == 0 {
		return nil
	}
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = key(r.prefix, d)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
