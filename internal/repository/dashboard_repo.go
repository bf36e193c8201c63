package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HourCount is the number of orders placed in one hour of the day (0-23).
type HourCount struct {
	Hour  int
	Count int64
}

// DashboardRepository runs the read-only aggregate queries behind the admin dashboard.
type DashboardRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	// Revenue sums the totals of orders in the given status.
	Revenue(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error)
	LastOrders(ctx context.Context, n int) ([]model.Order, error)
	OrdersByHour(ctx context.Context) ([]HourCount, error)
}

type dashboardRepo struct{ db *gorm.DB }

func NewDashboardRepository(db *gorm.DB) DashboardRepository { return &dashboardRepo{db: db} }

func (r *dashboardRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleCustomer).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) Revenue(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ?", status).
		Select("SUM(total)").
		Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *dashboardRepo) LastOrders(ctx context.Context, n int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("User").
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&orders).Error
	return orders, err
}

func (r *dashboardRepo) OrdersByHour(ctx context.Context) ([]HourCount, error) {
	var rows []HourCount
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("CAST(EXTRACT(HOUR FROM created_at) AS INTEGER) AS hour, COUNT(*) AS count").
		Group("hour").
		Order("hour").
		Scan(&rows).Error
	return rows, err
}
