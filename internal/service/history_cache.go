package service

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	historyCacheKey = "pricing:recent-history"
	historyGenKey   = "pricing:recent-history:gen"

	// MaxHistoryLimit caps GetRecentHistory; the cache always holds this many entries.
	MaxHistoryLimit = 50
)

// historyCache keeps the newest MaxHistoryLimit catalog-wide price changes in
// Redis. Every pricing mutation invalidates it and bumps a generation counter;
// a reader only writes back a list loaded under the current generation.
// A nil cache or nil client is a no-op.
type historyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newHistoryCache(rdb *redis.Client, ttl time.Duration) *historyCache {
	if rdb == nil {
		return nil
	}
	return &historyCache{rdb: rdb, ttl: ttl}
}

func (c *historyCache) get(ctx context.Context) ([]dto.PriceHistoryEntry, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, historyCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("history cache: read failed")
		}
		return nil, false
	}
	var entries []dto.PriceHistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// generation returns the current invalidation counter (0 when unset or unavailable).
func (c *historyCache) generation(ctx context.Context) int64 {
	if c == nil {
		return 0
	}
	gen, err := c.rdb.Get(ctx, historyGenKey).Int64()
	if err != nil && err != redis.Nil {
		log.Warn().Err(err).Msg("history cache: generation read failed")
	}
	return gen
}

// set stores entries only if no invalidation happened since gen was read.
func (c *historyCache) set(ctx context.Context, gen int64, entries []dto.PriceHistoryEntry) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, historyGenKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, historyCacheKey, raw, c.ttl)
			return nil
		})
		return err
	}, historyGenKey)
	if err != nil && err != redis.TxFailedErr {
		log.Warn().Err(err).Msg("history cache: write failed")
	}
}

func (c *historyCache) invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, historyGenKey)
		pipe.Del(ctx, historyCacheKey)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("history cache: invalidate failed")
	}
}
