package runstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisRunPrefix = "run:"

// RedisStore is a Redis-backed run store for multi-instance deployments,
// where any instance may serve the status of a run submitted to another.
// Finished runs expire server-side after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates the connection. Empty means no auth.
	Password string

	// DB selects the logical Redis database.
	DB int

	// TTL bounds run retention. Zero means DefaultTTL.
	TTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisRunKey(id string) string {
	return redisRunPrefix + id
}

// Get retrieves a run by ID. Returns nil, nil if absent or expired.
func (s *RedisStore) Get(ctx context.Context, id string) (*Run, error) {
	data, err := s.client.Get(ctx, redisRunKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	return &run, nil
}

// Put stores a run as JSON with the store's TTL.
func (s *RedisStore) Put(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.client.Set(ctx, redisRunKey(run.ID), data, s.ttl).Err()
}

// List scans all run keys and returns the runs, newest first.
func (s *RedisStore) List(ctx context.Context) ([]*Run, error) {
	var runs []*Run
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisRunPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan runs: %w", err)
		}
		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue // expired between scan and get
			}
			if err != nil {
				return nil, fmt.Errorf("get run: %w", err)
			}
			var run Run
			if err := json.Unmarshal(data, &run); err != nil {
				continue // skip undecodable records
			}
			runs = append(runs, &run)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Delete removes a run.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisRunKey(id)).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
