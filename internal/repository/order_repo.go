package repository

import (
	"context"

	"storefront/internal/dto"
	"storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// CreateTx inserts the order row only; items are written with CreateItemTx.
	CreateTx(tx *gorm.DB, o *model.Order) error
	CreateItemTx(tx *gorm.DB, item *model.OrderItem) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uint, status model.OrderStatus) error
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Omit(clause.Associations).Create(o).Error
}

func (r *orderRepo) CreateItemTx(tx *gorm.DB, item *model.OrderItem) error {
	return tx.Omit(clause.Associations).Create(item).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&o, id).Error
	return &o, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Search != "" {
		q = q.Where("status ILIKE ?", "%"+filter.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PerPage
	err := q.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(filter.PerPage).
		Find(&orders).Error
	return orders, total, err
}
