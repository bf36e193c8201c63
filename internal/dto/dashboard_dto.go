package dto

import "github.com/shopspring/decimal"

type DashboardStatsResponse struct {
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	TotalUsers    int64           `json:"total_users"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type LastOrder struct {
	ID        uint            `json:"id"`
	User      string          `json:"user"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

type LastOrdersResponse struct {
	Orders []LastOrder `json:"orders"`
}

type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type ActiveTimesResponse struct {
	ActiveTimes []HourCount `json:"active_times"`
}
