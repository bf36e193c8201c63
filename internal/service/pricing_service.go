package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultHistoryLimit is used when GetRecentHistory is called with limit <= 0.
const DefaultHistoryLimit = 5

var (
	hundred      = decimal.NewFromInt(100)
	minusHundred = decimal.NewFromInt(-100)
)

// PricingService applies catalog-wide price mutations and keeps the bounded
// per-product change log. Each bulk operation is all-or-nothing.
type PricingService interface {
	BulkAdjustByPercent(ctx context.Context, percent decimal.Decimal) (int, error)
	BulkDiscount(ctx context.Context, amount decimal.Decimal) (int, error)
	ResetAllPrices(ctx context.Context) (int, error)
	Undo(ctx context.Context) (int, error)
	GetRecentHistory(ctx context.Context, limit int) ([]dto.PriceHistoryEntry, error)
	BackfillOriginalPrices(ctx context.Context) (int64, error)
}

type pricingService struct {
	repo  repository.ProductRepository
	cache *historyCache
	now   func() time.Time
}

// NewPricingService builds the pricing engine. rdb may be nil, which disables
// the recent-history cache.
func NewPricingService(repo repository.ProductRepository, rdb *redis.Client, cacheTTL time.Duration) PricingService {
	return &pricingService{
		repo:  repo,
		cache: newHistoryCache(rdb, cacheTTL),
		now:   time.Now,
	}
}

// ── Mutations ────────────────────────────────────────────────────────────────

func (s *pricingService) BulkAdjustByPercent(ctx context.Context, percent decimal.Decimal) (int, error) {
	if percent.IsZero() {
		return 0, apperror.Validation("percent must be non-zero")
	}
	if percent.LessThan(minusHundred) {
		return 0, apperror.Validation("percent must not be below -100")
	}
	factor := hundred.Add(percent)
	return s.mutateAll(ctx, "bulk_adjust_percent", func(p *model.Product, now time.Time) bool {
		next := p.Price.Mul(factor).Shift(-2).Round(2)
		s.record(p, next, now)
		return true
	})
}

func (s *pricingService) BulkDiscount(ctx context.Context, amount decimal.Decimal) (int, error) {
	if amount.IsZero() {
		return 0, apperror.Validation("amount must be non-zero")
	}
	return s.mutateAll(ctx, "bulk_discount", func(p *model.Product, now time.Time) bool {
		next := decimal.Max(decimal.Zero, p.Price.Sub(amount).Round(2))
		s.record(p, next, now)
		return true
	})
}

// ResetAllPrices restores every product that has an original price. The reset
// is itself logged, so it can be undone.
func (s *pricingService) ResetAllPrices(ctx context.Context) (int, error) {
	return s.mutateAll(ctx, "reset_prices", func(p *model.Product, now time.Time) bool {
		if p.OriginalPrice == nil {
			return false
		}
		s.record(p, *p.OriginalPrice, now)
		return true
	})
}

// Undo reverts the newest logged change of every product that has one.
// The reverted entry is discarded and the undo is not logged.
func (s *pricingService) Undo(ctx context.Context) (int, error) {
	return s.mutateAll(ctx, "undo", func(p *model.Product, _ time.Time) bool {
		last, ok := p.PriceHistory.Pop()
		if !ok {
			return false
		}
		p.Price = last.Old
		return true
	})
}

func (s *pricingService) record(p *model.Product, next decimal.Decimal, now time.Time) {
	p.PriceHistory.Push(model.PriceChange{Old: p.Price, New: next, At: now})
	p.Price = next
}

// mutateAll locks and scans the whole catalog in one transaction, applies fn
// to each product and persists the ones fn reports as changed. Every entry
// written by one call shares the same timestamp.
func (s *pricingService) mutateAll(ctx context.Context, op string, fn func(p *model.Product, now time.Time) bool) (int, error) {
	now := s.now().UTC()
	var count int

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		count = 0
		products, err := s.repo.ListForUpdateTx(tx)
		if err != nil {
			return err
		}
		for i := range products {
			p := &products[i]
			if !fn(p, now) {
				continue
			}
			if err := s.repo.SavePricingTx(tx, p); err != nil {
				return fmt.Errorf("product %d: %w", p.ID, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.invalidate(ctx)
	log.Info().Str("op", op).Int("count", count).Msg("pricing: bulk operation committed")
	return count, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

// GetRecentHistory returns the newest changes across the catalog, newest first.
// Equal timestamps order by product id ascending, then newest-first within a product.
func (s *pricingService) GetRecentHistory(ctx context.Context, limit int) ([]dto.PriceHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	entries, ok := s.cache.get(ctx)
	if !ok {
		gen := s.cache.generation(ctx)
		var err error
		entries, err = s.loadRecentHistory(ctx)
		if err != nil {
			return nil, fmt.Errorf("recent history: %w", err)
		}
		s.cache.set(ctx, gen, entries)
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *pricingService) loadRecentHistory(ctx context.Context) ([]dto.PriceHistoryEntry, error) {
	products, err := s.repo.ListWithHistory(ctx)
	if err != nil {
		return nil, err
	}

	type flatEntry struct {
		productID uint
		name      string
		pos       int
		change    model.PriceChange
	}
	var flat []flatEntry
	for _, p := range products {
		for i, c := range p.PriceHistory.Entries() {
			flat = append(flat, flatEntry{productID: p.ID, name: p.Name, pos: i, change: c})
		}
	}

	sort.Slice(flat, func(i, j int) bool {
		a, b := flat[i], flat[j]
		if !a.change.At.Equal(b.change.At) {
			return a.change.At.After(b.change.At)
		}
		if a.productID != b.productID {
			return a.productID < b.productID
		}
		return a.pos > b.pos
	})

	if len(flat) > MaxHistoryLimit {
		flat = flat[:MaxHistoryLimit]
	}
	out := make([]dto.PriceHistoryEntry, len(flat))
	for i, e := range flat {
		out[i] = dto.PriceHistoryEntry{
			ProductID: e.productID,
			Name:      e.name,
			Old:       e.change.Old,
			New:       e.change.New,
			Timestamp: e.change.At.UTC().Format(time.RFC3339Nano),
		}
	}
	return out, nil
}

// BackfillOriginalPrices records the current price as the original of every
// product that has none yet. Run once at startup.
func (s *pricingService) BackfillOriginalPrices(ctx context.Context) (int64, error) {
	n, err := s.repo.BackfillOriginalPrices(ctx)
	if err != nil {
		return 0, fmt.Errorf("backfill original prices: %w", err)
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("pricing: original prices backfilled")
	}
	return n, nil
}
