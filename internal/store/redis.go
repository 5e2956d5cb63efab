package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

// RedisStore keeps the latest snapshot in Redis under a key prefix
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tennis"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient connects to the server at redisURL and verifies it answers
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) key(name string) string {
	return r.prefix + ":" + name
}

// Save replaces snapshot, digest and choices in one transaction
func (r *RedisStore) Save(ctx context.Context, snapshot *models.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	choices, err := json.Marshal(snapshot.Choices)
	if err != nil {
		return fmt.Errorf("failed to encode choices: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key("snapshot"), data, 0)
		pipe.Set(ctx, r.key("digest"), snapshot.Digest, 0)
		pipe.Set(ctx, r.key("choices"), choices, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Latest(ctx context.Context) (*models.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key("snapshot")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}
