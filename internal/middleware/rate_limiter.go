package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storefront/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateStore counts hits per key in fixed windows.
type RateStore interface {
	// Hit records one request and returns the count in the current window
	// and when that window ends.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// ── Redis store ───────────────────────────────────────────────────────────────

// RedisRateStore shares counters across every API instance.
type RedisRateStore struct{ rdb *redis.Client }

func NewRedisRateStore(rdb *redis.Client) *RedisRateStore { return &RedisRateStore{rdb: rdb} }

func (s *RedisRateStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	bucket := time.Now().Truncate(window)
	k := "ratelimit:" + key + ":" + strconv.FormatInt(bucket.Unix(), 10)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}
	return incr.Val(), bucket.Add(window), nil
}

// ── In-memory store ───────────────────────────────────────────────────────────

type memEntry struct {
	count     int64
	windowEnd time.Time
}

// MemoryRateStore is a single-process fallback used when Redis is unavailable.
type MemoryRateStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time
}

func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{entries: make(map[string]*memEntry), now: time.Now}
}

func (s *MemoryRateStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &memEntry{windowEnd: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd, nil
}

// Purge drops expired windows. Call periodically from a background goroutine.
func (s *MemoryRateStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for k, e := range s.entries {
		if now.After(e.windowEnd) {
			delete(s.entries, k)
			purged++
		}
	}
	return purged
}

// ── Middleware ────────────────────────────────────────────────────────────────

// RateLimiter allows limit requests per client IP per window under the given
// name. Store errors fail open.
func RateLimiter(store RateStore, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, resetAt, err := store.Hit(c.Request.Context(), name+":"+c.ClientIP(), window)
		if err != nil {
			log.Warn().Err(err).Str("limiter", name).Msg("rate limiter store unavailable")
			c.Next()
			return
		}
		if count > int64(limit) {
			retry := int(time.Until(resetAt).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}
