package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Digital-Creators-Team/lotto-ledger/config"
)

// ErrKeyNotFound is returned, wrapped, when a key is missing.
var ErrKeyNotFound = errors.New("key not found")

// advanceScript sets KEYS[1] to ARGV[1] unless it already holds a larger
// number. When it moves, the remaining ARGV pairs are written to the hash
// KEYS[2] in the same step.
var advanceScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local n = tonumber(ARGV[1])
if n < cur then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1])
if #ARGV > 1 then
	redis.call("HSET", KEYS[2], unpack(ARGV, 2))
end
return 1
`)

// Client is the subset of Redis the ledger stores need.
type Client struct {
	client *redis.Client
}

// New connects and pings; it fails fast when Redis is unreachable.
func New(cfg config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}
	return &Client{client: client}, nil
}

// Wrap adopts an existing go-redis client.
func Wrap(client *redis.Client) *Client {
	return &Client{client: client}
}

// Get reads a string value.
func (r *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// GetJSON reads and decodes a JSON value.
func (r *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("redis decode %s: %w", key, err)
	}
	return nil
}

// Set writes a value; a zero ttl keeps it forever.
func (r *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value as JSON and writes it.
func (r *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	return r.Set(ctx, key, data, ttl)
}

// SetNX writes value only if key is absent and reports whether it did.
func (r *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// AdvanceMax moves a numeric pointer forward, never back. When it moves,
// fields (field/value pairs) are written to hashKey atomically with it.
func (r *Client) AdvanceMax(ctx context.Context, key string, n int64, hashKey string, fields ...interface{}) (bool, error) {
	args := append([]interface{}{n}, fields...)
	moved, err := advanceScript.Run(ctx, r.client, []string{key, hashKey}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("redis advance %s: %w", key, err)
	}
	return moved == 1, nil
}

// HIncrBy adds delta to a hash field.
func (r *Client) HIncrBy(ctx context.Context, key, field string, delta int64) error {
	if err := r.client.HIncrBy(ctx, key, field, delta).Err(); err != nil {
		return fmt.Errorf("redis hincrby %s.%s: %w", key, field, err)
	}
	return nil
}

// HGetAll reads a whole hash; a missing key is an empty map.
func (r *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	val, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", key, err)
	}
	return val, nil
}

// Close releases the connection pool.
func (r *Client) Close() error {
	return r.client.Close()
}
