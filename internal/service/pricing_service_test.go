package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPricing returns a pricing service whose clock advances one second per call.
func newTestPricing(repo *stubProductRepo) (*pricingService, *time.Time) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewPricingService(repo, nil, time.Minute).(*pricingService)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, &clock
}

func product(id uint, name, price string) model.Product {
	return model.Product{ID: id, Name: name, Price: dec(price), OriginalPrice: decPtr(price)}
}

func assertPrice(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want price %s, got %s", want, got)
}

func TestPricing_FullScenario(t *testing.T) {
	repo := newStubProductRepo(product(1, "P", "100"))
	svc, _ := newTestPricing(repo)
	ctx := context.Background()

	n, err := svc.BulkAdjustByPercent(ctx, dec("10"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p := repo.get(1)
	assertPrice(t, "110", p.Price)
	require.Equal(t, 1, p.PriceHistory.Len())
	t1 := p.PriceHistory.Entries()[0]
	assertPrice(t, "100", t1.Old)
	assertPrice(t, "110", t1.New)

	_, err = svc.BulkDiscount(ctx, dec("5"))
	require.NoError(t, err)
	p = repo.get(1)
	assertPrice(t, "105", p.Price)
	require.Equal(t, 2, p.PriceHistory.Len())

	n, err = svc.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p = repo.get(1)
	assertPrice(t, "110", p.Price)
	require.Equal(t, 1, p.PriceHistory.Len())
	assert.Equal(t, t1.At, p.PriceHistory.Entries()[0].At)

	n, err = svc.ResetAllPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p = repo.get(1)
	assertPrice(t, "100", p.Price)
	entries := p.PriceHistory.Entries()
	require.Len(t, entries, 2)
	assertPrice(t, "110", entries[1].Old)
	assertPrice(t, "100", entries[1].New)
	assertPrice(t, "100", *p.OriginalPrice)
}

func TestPricing_ZeroInputsRejected(t *testing.T) {
	repo := newStubProductRepo(product(1, "P", "10"))
	svc, _ := newTestPricing(repo)

	_, err := svc.BulkAdjustByPercent(context.Background(), decimal.Zero)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = svc.BulkDiscount(context.Background(), dec("0.00"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Equal(t, 0, repo.saves)
	assertPrice(t, "10", repo.get(1).Price)
	assert.Equal(t, 0, repo.get(1).PriceHistory.Len())
}

func TestPricing_PercentBelowMinusHundredRejected(t *testing.T) {
	repo := newStubProductRepo(product(1, "P", "10"))
	svc, _ := newTestPricing(repo)

	_, err := svc.BulkAdjustByPercent(context.Background(), dec("-100.5"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	n, err := svc.BulkAdjustByPercent(context.Background(), dec("-100"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertPrice(t, "0", repo.get(1).Price)
}

func TestPricing_PercentRoundsHalfAwayFromZero(t *testing.T) {
	repo := newStubProductRepo(
		product(1, "A", "19.99"),
		product(2, "B", "0.05"),
		product(3, "C", "10.01"),
	)
	svc, _ := newTestPricing(repo)

	_, err := svc.BulkAdjustByPercent(context.Background(), dec("15"))
	require.NoError(t, err)

	assertPrice(t, "22.99", repo.get(1).Price) // 22.9885
	assertPrice(t, "0.06", repo.get(2).Price)  // 0.0575
	assertPrice(t, "11.51", repo.get(3).Price) // 11.5115
}

func TestPricing_DiscountFloorsAtZero(t *testing.T) {
	repo := newStubProductRepo(product(1, "Cheap", "3.50"), product(2, "Pricey", "20"))
	svc, _ := newTestPricing(repo)

	n, err := svc.BulkDiscount(context.Background(), dec("5"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assertPrice(t, "0", repo.get(1).Price)
	assertPrice(t, "15", repo.get(2).Price)

	last, ok := repo.get(1).PriceHistory.Last()
	require.True(t, ok)
	assertPrice(t, "3.50", last.Old)
	assertPrice(t, "0", last.New)
}

func TestPricing_HistoryKeepsFiveNewest(t *testing.T) {
	repo := newStubProductRepo(product(1, "P", "100"))
	svc, _ := newTestPricing(repo)

	for i := 0; i < 7; i++ {
		_, err := svc.BulkAdjustByPercent(context.Background(), dec("1"))
		require.NoError(t, err)
	}

	entries := repo.get(1).PriceHistory.Entries()
	require.Len(t, entries, model.PriceHistoryCapacity)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].At.Before(entries[i].At))
		assert.True(t, entries[i-1].New.Equal(entries[i].Old))
	}
	assert.True(t, entries[4].New.Equal(repo.get(1).Price))
}

func TestPricing_OneTimestampPerOperation(t *testing.T) {
	repo := newStubProductRepo(product(1, "A", "1"), product(2, "B", "2"))
	svc, _ := newTestPricing(repo)

	_, err := svc.BulkDiscount(context.Background(), dec("0.5"))
	require.NoError(t, err)

	a, _ := repo.get(1).PriceHistory.Last()
	b, _ := repo.get(2).PriceHistory.Last()
	assert.Equal(t, a.At, b.At)
}

func TestPricing_UndoWithoutHistoryIsNoop(t *testing.T) {
	repo := newStubProductRepo(product(1, "P", "10"))
	svc, _ := newTestPricing(repo)

	n, err := svc.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assertPrice(t, "10", repo.get(1).Price)
}

func TestPricing_UndoCountsOnlyProductsWithHistory(t *testing.T) {
	withHistory := product(1, "A", "110")
	withHistory.PriceHistory = model.NewPriceHistory(model.PriceChange{Old: dec("100"), New: dec("110"), At: time.Now()})
	repo := newStubProductRepo(withHistory, product(2, "B", "5"))
	svc, _ := newTestPricing(repo)

	n, err := svc.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertPrice(t, "100", repo.get(1).Price)
	assert.Equal(t, 0, repo.get(1).PriceHistory.Len())
}

func TestPricing_ResetSkipsProductsWithoutOriginal(t *testing.T) {
	noOriginal := model.Product{ID: 2, Name: "New", Price: dec("7")}
	repo := newStubProductRepo(product(1, "A", "10"), noOriginal)
	svc, _ := newTestPricing(repo)

	_, err := svc.BulkAdjustByPercent(context.Background(), dec("50"))
	require.NoError(t, err)

	n, err := svc.ResetAllPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertPrice(t, "10", repo.get(1).Price)
	assertPrice(t, "10.5", repo.get(2).Price)
}

func TestPricing_ResetIsIdempotentOnPrice(t *testing.T) {
	repo := newStubProductRepo(product(1, "A", "10"))
	svc, _ := newTestPricing(repo)

	_, err := svc.ResetAllPrices(context.Background())
	require.NoError(t, err)
	_, err = svc.ResetAllPrices(context.Background())
	require.NoError(t, err)

	p := repo.get(1)
	assertPrice(t, "10", p.Price)
	assert.Equal(t, 2, p.PriceHistory.Len())
}

func TestPricing_StoreErrorIsWrapped(t *testing.T) {
	repo := newStubProductRepo(product(1, "A", "10"))
	repo.failList = errStore
	svc, _ := newTestPricing(repo)

	n, err := svc.BulkAdjustByPercent(context.Background(), dec("10"))
	assert.ErrorIs(t, err, errStore)
	assert.Contains(t, err.Error(), "bulk_adjust_percent")
	assert.Equal(t, 0, n)
}

func TestPricing_RecentHistoryOrdering(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := product(2, "A", "1")
	a.PriceHistory = model.NewPriceHistory(
		model.PriceChange{Old: dec("1"), New: dec("2"), At: t0},
		model.PriceChange{Old: dec("2"), New: dec("3"), At: t0.Add(2 * time.Second)},
	)
	b := product(1, "B", "1")
	b.PriceHistory = model.NewPriceHistory(
		model.PriceChange{Old: dec("5"), New: dec("6"), At: t0.Add(2 * time.Second)},
		model.PriceChange{Old: dec("6"), New: dec("7"), At: t0.Add(time.Second)},
	)
	repo := newStubProductRepo(a, b)
	svc, _ := newTestPricing(repo)

	got, err := svc.GetRecentHistory(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Same timestamp: lower product id first.
	assert.Equal(t, uint(1), got[0].ProductID)
	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, uint(2), got[1].ProductID)
	assertPrice(t, "3", got[1].New)
	assert.Equal(t, uint(1), got[2].ProductID)
	assertPrice(t, "7", got[2].New)
	assert.Equal(t, uint(2), got[3].ProductID)
	assert.Equal(t, t0.Format(time.RFC3339Nano), got[3].Timestamp)
}

func TestPricing_RecentHistoryTieWithinProductNewestFirst(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := product(1, "A", "1")
	p.PriceHistory = model.NewPriceHistory(
		model.PriceChange{Old: dec("1"), New: dec("2"), At: ts},
		model.PriceChange{Old: dec("2"), New: dec("3"), At: ts},
	)
	svc, _ := newTestPricing(newStubProductRepo(p))

	got, err := svc.GetRecentHistory(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assertPrice(t, "3", got[0].New)
	assertPrice(t, "2", got[1].New)
}

func TestPricing_RecentHistoryLimit(t *testing.T) {
	repo := newStubProductRepo(product(1, "A", "10"), product(2, "B", "20"))
	svc, _ := newTestPricing(repo)
	for i := 0; i < 4; i++ {
		_, err := svc.BulkAdjustByPercent(context.Background(), dec("1"))
		require.NoError(t, err)
	}

	got, err := svc.GetRecentHistory(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultHistoryLimit)

	got, err = svc.GetRecentHistory(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = svc.GetRecentHistory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, got, 8)
}

func TestPricing_RecentHistoryEmptyCatalog(t *testing.T) {
	svc, _ := newTestPricing(newStubProductRepo())
	got, err := svc.GetRecentHistory(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPricing_BackfillOriginalPrices(t *testing.T) {
	repo := newStubProductRepo(
		model.Product{ID: 1, Name: "A", Price: dec("12.50")},
		product(2, "B", "3"),
	)
	svc, _ := newTestPricing(repo)

	n, err := svc.BackfillOriginalPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NotNil(t, repo.get(1).OriginalPrice)
	assertPrice(t, "12.50", *repo.get(1).OriginalPrice)

	n, err = svc.BackfillOriginalPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
