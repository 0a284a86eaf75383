package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hooklab/content-intelligence-service/internal/config"
)

// RedisStorage keeps gzip-compressed documents under plain string keys
type RedisStorage struct {
	blobDocuments
	client *redis.Client
}

type redisBlobs struct {
	client *redis.Client
}

func (r redisBlobs) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r redisBlobs) put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// NewRedisStorage connects to cfg.RedisAddr
func NewRedisStorage(cfg config.StorageConfig) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(cfg))
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStorageFromClient(client, cfg.Key), nil
}

// NewRedisStorageFromClient wraps an existing client
func NewRedisStorageFromClient(client *redis.Client, key string) *RedisStorage {
	return &RedisStorage{
		blobDocuments: blobDocuments{blobs: redisBlobs{client: client}, key: key, compress: true},
		client:        client,
	}
}

// Close closes the Redis client
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
