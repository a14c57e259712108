package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
	"github.com/imrishuroy/go-payment-gateway/internal/validation"
)

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type Orders struct {
	store  store.Store
	logger *zap.Logger
}

func NewOrders(s store.Store, logger *zap.Logger) *Orders {
	return &Orders{store: s, logger: logger}
}

func (s *Orders) Create(ctx context.Context, merchant *domain.Merchant, req validation.CreateOrderRequest) (*OrderResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	order := &domain.Order{
		ID:         generateID("order_"),
		MerchantID: merchant.ID,
		Amount:     req.Amount,
		Currency:   currency,
		Receipt:    req.Receipt,
		Status:     domain.OrderStatusCreated,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.Info("created order",
		zap.String("order_id", order.ID),
		zap.String("merchant_id", merchant.ID.String()))
	return toOrderResponse(order), nil
}

func (s *Orders) Get(ctx context.Context, merchant *domain.Merchant, orderID string) (*OrderResponse, error) {
	order, err := s.getOwned(ctx, merchant, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

func (s *Orders) List(ctx context.Context, merchant *domain.Merchant) ([]*OrderResponse, error) {
	orders, err := s.store.ListOrders(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

func (s *Orders) getOwned(ctx context.Context, merchant *domain.Merchant, orderID string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.MerchantID != merchant.ID {
		return nil, notFound("Order not found")
	}
	return order, nil
}

func toOrderResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:        o.ID,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Receipt:   o.Receipt,
		Status:    o.Status,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
