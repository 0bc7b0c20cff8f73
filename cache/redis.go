package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DefaultKeyPrefix namespaces keys written by the Redis cache
const DefaultKeyPrefix = "wgapi:"

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Address   string
	Password  string
	Database  int
	KeyPrefix string
}

// Redis shares cached responses between processes. Keys are stored without
// a TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

// Get implements Cache
func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	val, err := r.client.Get(ctx, r.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get error: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(val, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("invalid cached entry for %s: %w", key, err)
	}
	return entry, true, nil
}

// Put implements Cache. SETNX keeps the first stored response.
func (r *Redis) Put(ctx context.Context, key string, entry Entry) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := r.client.SetNX(ctx, r.makeKey(key), val, 0).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}

// makeKey hashes the request key; query strings can exceed sane key sizes
func (r *Redis) makeKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return r.prefix + hex.EncodeToString(sum[:])
}
