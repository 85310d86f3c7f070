package cache

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mercator-hq/copycheck/pkg/config"
)

const scanBatch = 200

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis store from cache configuration. No connection is
// made until the first command; use Ping to check reachability.
func NewRedis(cfg config.CacheConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		MaxRetries:   -1,
	})
	return &Redis{client: client, prefix: cfg.KeyPrefix, ttl: cfg.TTL}
}

// Ping checks that the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return &BackendError{Backend: "redis", Op: "ping", Cause: err}
	}
	return nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, namespace, id string) (string, bool, error) {
	value, err := r.client.Get(ctx, Key(r.prefix, namespace, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &BackendError{Backend: "redis", Op: "get", Cause: err}
	}
	return value, true, nil
}

// Set implements Store. A zero ttl uses the configured TTL.
func (r *Redis) Set(ctx context.Context, namespace, id, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = r.ttl
	}
	if err := r.client.Set(ctx, Key(r.prefix, namespace, id), value, ttl).Err(); err != nil {
		return &BackendError{Backend: "redis", Op: "set", Cause: err}
	}
	return nil
}

// Delete removes one entry and reports whether it existed.
func (r *Redis) Delete(ctx context.Context, namespace, id string) (bool, error) {
	n, err := r.client.Del(ctx, Key(r.prefix, namespace, id)).Result()
	if err != nil {
		return false, &BackendError{Backend: "redis", Op: "delete", Cause: err}
	}
	return n > 0, nil
}

// Flush deletes every key under the store's prefix and returns the number
// removed. Keys of other applications sharing the database are untouched.
func (r *Redis) Flush(ctx context.Context) (int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		n, err := r.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return removed, &BackendError{Backend: "redis", Op: "flush", Cause: err}
		}
		removed += int(n)
	}
	return removed, nil
}

// Stats returns the number of keys under the prefix and the server's
// keyspace hit and miss counters.
func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return Stats{Backend: "redis"}, err
	}

	info, err := r.client.Info(ctx, "stats").Result()
	if err != nil {
		return Stats{Backend: "redis"}, &BackendError{Backend: "redis", Op: "info", Cause: err}
	}
	hits, misses := parseKeyspaceStats(info)

	return Stats{
		Enabled: true,
		Backend: "redis",
		Keys:    int64(len(keys)),
		Hits:    hits,
		Misses:  misses,
		TTL:     r.ttl.String(),
	}, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, &BackendError{Backend: "redis", Op: "scan", Cause: err}
	}
	return keys, nil
}

// parseKeyspaceStats extracts keyspace_hits and keyspace_misses from the
// output of INFO stats.
func parseKeyspaceStats(info string) (hits, misses int64) {
	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		switch name {
		case "keyspace_hits":
			hits = n
		case "keyspace_misses":
			misses = n
		}
	}
	return hits, misses
}
