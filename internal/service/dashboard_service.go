package service

import (
	"context"
	"time"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const lastOrdersCount = 5

type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	LastOrders(ctx context.Context) (*dto.LastOrdersResponse, error)
	ActiveTimes(ctx context.Context) (*dto.ActiveTimesResponse, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// Stats counts products, orders and customers; revenue covers paid orders only.
func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	products, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.Revenue(ctx, model.OrderPaid)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardStatsResponse{
		TotalProducts: products,
		TotalOrders:   orders,
		TotalUsers:    customers,
		TotalRevenue:  revenue.Round(2),
	}, nil
}

func (s *dashboardService) LastOrders(ctx context.Context) (*dto.LastOrdersResponse, error) {
	orders, err := s.repo.LastOrders(ctx, lastOrdersCount)
	if err != nil {
		return nil, err
	}
	resp := &dto.LastOrdersResponse{Orders: make([]dto.LastOrder, len(orders))}
	for i, o := range orders {
		user := ""
		if o.User != nil {
			user = o.User.Email
		}
		resp.Orders[i] = dto.LastOrder{
			ID:        o.ID,
			User:      user,
			Total:     o.Total,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return resp, nil
}

// ActiveTimes always returns 24 buckets, hours without orders included.
func (s *dashboardService) ActiveTimes(ctx context.Context) (*dto.ActiveTimesResponse, error) {
	rows, err := s.repo.OrdersByHour(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.ActiveTimesResponse{ActiveTimes: make([]dto.HourCount, 24)}
	for h := range resp.ActiveTimes {
		resp.ActiveTimes[h].Hour = h
	}
	for _, r := range rows {
		if r.Hour >= 0 && r.Hour < 24 {
			resp.ActiveTimes[r.Hour].Count = r.Count
		}
	}
	return resp, nil
}
