package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/dto"
	"storefront/internal/infra"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, userID uint, req dto.PlaceOrderRequest) (uint, error)
	SetOrderStatus(ctx context.Context, orderID uint, status string) error
	GetOrder(ctx context.Context, orderID uint) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
}

// OrderNotifier queues the confirmation mail of a committed order.
// Satisfied by *worker.Dispatcher.
type OrderNotifier interface {
	EnqueueOrderConfirmation(ctx context.Context, payload worker.OrderConfirmationPayload) error
}

type orderService struct {
	repo      repository.OrderRepository
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	notifier  OrderNotifier
}

// NewOrderService wires order placement. notifier may be nil.
func NewOrderService(
	repo repository.OrderRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	users repository.UserRepository,
	notifier OrderNotifier,
) OrderService {
	return &orderService{
		repo:      repo,
		products:  products,
		movements: movements,
		users:     users,
		notifier:  notifier,
	}
}

// ── PlaceOrder ───────────────────────────────────────────────────────────────
// One transaction:
//   1. insert the order (pending, caller's total)
//   2. per item: lock the product, insert the line with the caller's price
//      snapshot, decrement stock, record the stock movement
// Stock is decremented without a floor check and may go negative.
// After commit the confirmation mail is queued best-effort.

func (s *orderService) PlaceOrder(ctx context.Context, userID uint, req dto.PlaceOrderRequest) (uint, error) {
	if len(req.Items) == 0 {
		return 0, apperror.Validation("order must contain at least one item")
	}
	computed := decimal.Zero
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return 0, apperror.Validation("item %d: quantity must be positive", i)
		}
		if it.Price.IsNegative() {
			return 0, apperror.Validation("item %d: price must not be negative", i)
		}
		computed = computed.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	total := req.Total.Round(2)
	if !total.Equal(computed.Round(2)) {
		return 0, apperror.Validation("total %s does not match the items (%s)", total.StringFixed(2), computed.Round(2).StringFixed(2))
	}

	var order model.Order
	lines := make([]infra.ReceiptLine, 0, len(req.Items))

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lines = lines[:0]
		order = model.Order{UserID: userID, Total: total, Status: model.OrderPending}
		if err := s.repo.CreateTx(tx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, it := range req.Items {
			p, err := s.products.FindByIDForUpdateTx(tx, it.ProductID)
			if err != nil {
				return notFound(err, "product %d not found", it.ProductID)
			}

			item := model.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			}
			if err := s.repo.CreateItemTx(tx, &item); err != nil {
				return fmt.Errorf("create item for product %d: %w", it.ProductID, err)
			}
			order.Items = append(order.Items, item)

			if err := s.products.UpdateStockTx(tx, p.ID, -it.Quantity); err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", p.ID, err)
			}
			orderID := order.ID
			if err := s.movements.CreateTx(tx, &model.StockMovement{
				ProductID:   p.ID,
				Kind:        model.MovementOrder,
				Delta:       -it.Quantity,
				StockBefore: p.Stock,
				StockAfter:  p.Stock - it.Quantity,
				Reason:      fmt.Sprintf("order #%d", order.ID),
				OrderID:     &orderID,
			}); err != nil {
				return fmt.Errorf("record stock movement: %w", err)
			}

			lines = append(lines, infra.ReceiptLine{Name: p.Name, Quantity: it.Quantity, Price: it.Price})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint("order_id", order.ID).Uint("user_id", userID).
		Int("items", len(order.Items)).Str("total", total.StringFixed(2)).
		Msg("order placed")

	s.queueConfirmation(ctx, &order, lines)
	return order.ID, nil
}

// queueConfirmation never fails the order: errors are logged and dropped.
func (s *orderService) queueConfirmation(ctx context.Context, order *model.Order, lines []infra.ReceiptLine) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.FindByID(ctx, order.UserID)
	if err != nil {
		log.Warn().Err(err).Uint("order_id", order.ID).Msg("order confirmation: user lookup failed")
		return
	}
	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}
	payload := worker.OrderConfirmationPayload{
		ToEmail: user.Email,
		Receipt: infra.Receipt{
			OrderID:      order.ID,
			CustomerName: user.Name,
			PlacedAt:     placedAt,
			Total:        order.Total,
			Lines:        lines,
		},
	}
	if err := s.notifier.EnqueueOrderConfirmation(ctx, payload); err != nil {
		log.Warn().Err(err).Uint("order_id", order.ID).Msg("order confirmation: enqueue failed")
	}
}

// ── Status ───────────────────────────────────────────────────────────────────

func (s *orderService) SetOrderStatus(ctx context.Context, orderID uint, status string) error {
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return apperror.Validation("invalid status %q", status)
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return notFound(err, "order %d not found", orderID)
	}
	if !order.Status.CanTransitionTo(next) {
		return apperror.Conflict("order %d cannot move from %s to %s", orderID, order.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return notFound(err, "order %d not found", orderID)
	}
	log.Info().Uint("order_id", orderID).Str("from", string(order.Status)).Str("to", string(next)).Msg("order status updated")
	return nil
}

// ── Read side ────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order %d not found", orderID)
	}
	resp := orderToResponse(order)
	return &resp, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		items[i] = orderToResponse(&orders[i])
	}
	return &dto.OrderListResponse{Items: items, Total: total}, nil
}

func orderToResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range o.Items {
		item := dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		}
		if it.Product != nil {
			item.Product = it.Product.Name
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
