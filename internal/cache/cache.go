package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel errors
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// ErrNoValue is returned by Fetch when the supplier produced no value.
// Misses are not cached, so the next Fetch invokes the supplier again.
var ErrNoValue = errors.New("cache: supplier returned no value")

// Supplier fetches the value for a key on a cache miss. Returning a nil
// value signals that the underlying record does not exist.
type Supplier func() (any, error)

// Cache is a read-through cache for a single resource type. Keys are built
// as "<prefix>_<id>" and entries expire after the configured TTL. Each
// resource gets its own instance, constructed at startup and injected into
// its handlers.
type Cache struct {
	rdb    *redis.Client // Redis client
	prefix string        // Resource key prefix, e.g. "image"
	ttl    time.Duration // Entry time-to-live
}

// New creates a Cache for one resource with its key prefix and TTL
func New(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Key builds the cache key for an id
func (c *Cache) Key(id string) string {
	return c.prefix + "_" + id
}

// Fetch returns the cached value for id, unmarshaling it into dest. On a
// miss it invokes supplier, stores the result under the key with the TTL,
// and unmarshals it into dest. Two concurrent misses for the same key may
// both invoke the supplier; writes invalidate explicitly, so the window is
// bounded staleness, not a correctness problem.
func (c *Cache) Fetch(ctx context.Context, id string, dest any, supplier Supplier) error {
	key := c.Key(id)
	val, err := c.rdb.Get(ctx, key).Result() // Try the cache first
	if err == nil {
		return json.Unmarshal([]byte(val), dest) // Cache hit, unmarshal into dest
	}
	if err != redis.Nil {
		// Redis failure degrades to a plain supplier call
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
	}
	value, err := supplier() // Cache miss, fetch from the source
	if err != nil {
		return err // Surface the downstream failure directly
	}
	if value == nil {
		return ErrNoValue // Nothing to cache
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err
	}
	// Store with TTL; a failed store only costs a re-fetch later
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
	return json.Unmarshal(b, dest) // Return the freshly fetched value
}

// Delete evicts the entry for id, keeping the cache consistent with
// persistence after a mutation
func (c *Cache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.Key(id)).Err() // Delete key from Redis
}

// Flush clears every entry belonging to this resource
func (c *Cache) Flush(ctx context.Context) error {
	keys, err := c.rdb.Keys(ctx, c.prefix+"_*").Result() // Collect this resource's keys
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil // Nothing to clear
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete them all
}
