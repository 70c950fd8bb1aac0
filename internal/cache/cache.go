package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached response stays valid. There is no explicit
// invalidation on re-ingestion; stale answers age out on their own.
const DefaultTTL = time.Hour

const keyPrefix = "chat:"

// Commands is the subset of redis commands the cache needs. *redis.Client
// satisfies it; tests substitute fakes.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ResponseCache maps (project, normalized query) to a previously generated
// answer. A backing-store outage degrades to always-miss; Get and Put never
// surface an error to the chat path.
type ResponseCache struct {
	client Commands
	ttl    time.Duration
}

// New creates a ResponseCache over a redis client. A nil client yields a
// cache that always misses, which is the "cache not configured" mode.
func New(client Commands, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// NewFromURL connects to redis using a URL like redis://host:6379/0 and
// verifies the connection.
func NewFromURL(ctx context.Context, url string, ttl time.Duration) (*ResponseCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return New(client, ttl), nil
}

// Fingerprint derives the deterministic cache key for a query within a
// project. Queries differing only in case or surrounding whitespace collide
// on purpose; the same query under two projects never does.
func Fingerprint(projectID, query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(projectID + ":" + normalized))
	return hex.EncodeToString(sum[:])
}

// Get looks up a cached response. The second return is false on a miss, on
// an unconfigured cache, and on any backing-store failure.
func (c *ResponseCache) Get(ctx context.Context, projectID, query string) (string, bool) {
	if c.client == nil {
		return "", false
	}

	key := keyPrefix + Fingerprint(projectID, query)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache get failed, treating as miss: %v", err)
		}
		return "", false
	}

	return val, true
}

// Put stores a response with the configured TTL. Last write wins. Failures
// are logged and swallowed; caching is never worth failing a request over.
func (c *ResponseCache) Put(ctx context.Context, projectID, query, response string) {
	if c.client == nil {
		return
	}

	key := keyPrefix + Fingerprint(projectID, query)
	if err := c.client.Set(ctx, key, response, c.ttl).Err(); err != nil {
		log.Printf("cache put failed: %v", err)
	}
}
