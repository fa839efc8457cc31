package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starford/designa/internal/contact"
)

const markerKeyPrefix = "designa:marker:"

// RedisMarkers keeps success markers in Redis. Keys carry a Redis TTL for
// cleanup, and the stored expiry is still compared on read.
type RedisMarkers struct {
	client *redis.Client
}

var _ contact.MarkerStore = (*RedisMarkers)(nil)

// NewRedisMarkers connects to Redis and verifies the connection.
func NewRedisMarkers(ctx context.Context, address, password string, db int) (*RedisMarkers, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: connect to redis: %w", err)
	}
	return &RedisMarkers{client: client}, nil
}

// NewRedisMarkersFromClient wraps an existing client.
func NewRedisMarkersFromClient(client *redis.Client) *RedisMarkers {
	return &RedisMarkers{client: client}
}

// PutMarker implements contact.MarkerStore. The key lives for ttl from the
// write; validity is decided by the stored expiry, which is relative to
// submittedAt and not to the Redis clock.
func (r *RedisMarkers) PutMarker(ctx context.Context, visitorID string, submittedAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	expires := submittedAt.Add(ttl)
	if err := r.client.Set(ctx, markerKeyPrefix+visitorID, strconv.FormatInt(expires.UnixNano(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("store: put marker: %w", err)
	}
	return nil
}

// ValidMarker implements contact.MarkerStore.
func (r *RedisMarkers) ValidMarker(ctx context.Context, visitorID string, now time.Time) (bool, error) {
	val, err := r.client.Get(ctx, markerKeyPrefix+visitorID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: get marker: %w", err)
	}
	expires, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("store: marker %s: %w", visitorID, err)
	}
	return now.UnixNano() < expires, nil
}

// SweepExpired is a no-op: Redis expires keys itself.
func (r *RedisMarkers) SweepExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Ping checks the connection.
func (r *RedisMarkers) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisMarkers) Close() error {
	return r.client.Close()
}
