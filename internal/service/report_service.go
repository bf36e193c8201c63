package service

import (
	"context"
	"io"
	"time"

	"storefront/internal/dto"
	"storefront/internal/infra"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// reportPageSize bounds each page fetched while building a report.
const reportPageSize = 100

// ReportService renders admin PDF reports straight to a writer.
type ReportService interface {
	ProductsPDF(ctx context.Context, w io.Writer) error
	OrdersPDF(ctx context.Context, w io.Writer) error
}

type reportService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewReportService(products repository.ProductRepository, orders repository.OrderRepository) ReportService {
	return &reportService{products: products, orders: orders}
}

func (s *reportService) ProductsPDF(ctx context.Context, w io.Writer) error {
	var all []model.Product
	for page := 1; ; page++ {
		batch, total, err := s.products.List(ctx, dto.ProductFilter{Page: page, PerPage: reportPageSize})
		if err != nil {
			return err
		}
		all = append(all, batch...)
		if len(batch) == 0 || int64(len(all)) >= total {
			break
		}
	}
	return infra.RenderProductsReport(w, all, time.Now())
}

func (s *reportService) OrdersPDF(ctx context.Context, w io.Writer) error {
	var all []model.Order
	for page := 1; ; page++ {
		batch, total, err := s.orders.List(ctx, dto.OrderFilter{Page: page, PerPage: reportPageSize})
		if err != nil {
			return err
		}
		all = append(all, batch...)
		if len(batch) == 0 || int64(len(all)) >= total {
			break
		}
	}
	return infra.RenderOrdersReport(w, all, time.Now())
}
