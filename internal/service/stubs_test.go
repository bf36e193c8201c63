package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Product stub ──────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository. Reads return copies, so a
// service only changes state through the repository methods.
type stubProductRepo struct {
	products map[uint]model.Product
	nextID   uint
	saves    int
	failSave error
	failList error
}

func newStubProductRepo(products ...model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uint]model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
		if p.ID > r.nextID {
			r.nextID = p.ID
		}
	}
	return r
}

func (r *stubProductRepo) get(id uint) model.Product { return r.products[id] }

func (r *stubProductRepo) sorted() []model.Product {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var matched []model.Product
	for _, p := range r.sorted() {
		if filter.Search == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			matched = append(matched, p)
		}
	}
	start := (filter.Page - 1) * filter.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) ListWithHistory(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.sorted() {
		if p.PriceHistory.Len() > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) BackfillOriginalPrices(_ context.Context) (int64, error) {
	var n int64
	for id, p := range r.products {
		if p.OriginalPrice == nil {
			price := p.Price
			p.OriginalPrice = &price
			r.products[id] = p
			n++
		}
	}
	return n, nil
}

func (r *stubProductRepo) ListForUpdateTx(_ *gorm.DB) ([]model.Product, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	return r.sorted(), nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uint) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) SavePricingTx(_ *gorm.DB, p *model.Product) error {
	if r.failSave != nil {
		return r.failSave
	}
	stored := r.products[p.ID]
	stored.Price = p.Price
	stored.PriceHistory = p.PriceHistory
	r.products[p.ID] = stored
	r.saves++
	return nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uint, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	r.products[id] = p
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Order stub ────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uint]*model.Order
	items  []model.OrderItem
	nextID uint
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uint]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	stored := *o
	r.orders[o.ID] = &stored
	return nil
}

func (r *stubOrderRepo) CreateItemTx(_ *gorm.DB, item *model.OrderItem) error {
	item.ID = uint(len(r.items) + 1)
	r.items = append(r.items, *item)
	if o, ok := r.orders[item.OrderID]; ok {
		o.Items = append(o.Items, *item)
	}
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uint) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uint, status model.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for id := r.nextID; id >= 1; id-- {
		if o, ok := r.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── Stock movement stub ───────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, _ repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── User stub ─────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newStubUserRepo(users ...model.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[uint]*model.User)}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) { return int64(len(r.users)), nil }

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Category stub ─────────────────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories []model.Category
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	c.ID = uint(len(r.categories) + 1)
	r.categories = append(r.categories, *c)
	return nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	return r.categories, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			cp := c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Dashboard stub ────────────────────────────────────────────────────────────

type stubDashboardRepo struct {
	products, orders, customers int64
	revenue                     decimal.Decimal
	revenueStatus               model.OrderStatus
	last                        []model.Order
	byHour                      []repository.HourCount
}

func (r *stubDashboardRepo) CountProducts(context.Context) (int64, error)  { return r.products, nil }
func (r *stubDashboardRepo) CountOrders(context.Context) (int64, error)    { return r.orders, nil }
func (r *stubDashboardRepo) CountCustomers(context.Context) (int64, error) { return r.customers, nil }
func (r *stubDashboardRepo) Revenue(_ context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	r.revenueStatus = status
	return r.revenue, nil
}
func (r *stubDashboardRepo) LastOrders(_ context.Context, n int) ([]model.Order, error) {
	if len(r.last) > n {
		return r.last[:n], nil
	}
	return r.last, nil
}
func (r *stubDashboardRepo) OrdersByHour(context.Context) ([]repository.HourCount, error) {
	return r.byHour, nil
}

var _ repository.DashboardRepository = (*stubDashboardRepo)(nil)

// ── Notifier stub ─────────────────────────────────────────────────────────────

type stubNotifier struct {
	payloads []worker.OrderConfirmationPayload
	err      error
}

func (n *stubNotifier) EnqueueOrderConfirmation(_ context.Context, p worker.OrderConfirmationPayload) error {
	if n.err != nil {
		return n.err
	}
	n.payloads = append(n.payloads, p)
	return nil
}

var _ OrderNotifier = (*stubNotifier)(nil)

var errStore = errors.New("connection reset")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
