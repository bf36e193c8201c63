package repository

import (
	"context"
	"strings"

	"storefront/internal/dto"
	"storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// so unit tests can swap in an in-memory stub.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uint) error

	// ListWithHistory returns every product whose price history is non-empty.
	ListWithHistory(ctx context.Context) ([]model.Product, error)

	// BackfillOriginalPrices sets original_price = price wherever it is NULL.
	BackfillOriginalPrices(ctx context.Context) (int64, error)

	// Used inside transactions — callers must pass the tx instance.
	// The *ForUpdate variants take row locks held until the tx ends.
	ListForUpdateTx(tx *gorm.DB) ([]model.Product, error)
	FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Product, error)
	SavePricingTx(tx *gorm.DB, p *model.Product) error
	UpdateStockTx(tx *gorm.DB, id uint, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Every whitespace-separated term must match name or description.
	for _, term := range strings.Fields(filter.Search) {
		like := "%" + term + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	err := q.Order("id ASC").Limit(filter.PerPage).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) ListWithHistory(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("jsonb_array_length(price_history) > 0").
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) BackfillOriginalPrices(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("original_price IS NULL").
		Update("original_price", gorm.Expr("price"))
	return res.RowsAffected, res.Error
}

func (r *productRepo) ListForUpdateTx(tx *gorm.DB) ([]model.Product, error) {
	var products []model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDForUpdateTx(tx *gorm.DB, id uint) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *productRepo) SavePricingTx(tx *gorm.DB, p *model.Product) error {
	return tx.Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"price":         p.Price,
		"price_history": p.PriceHistory,
	}).Error
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uint, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}
