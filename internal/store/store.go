package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
)

// ErrNotFound is returned for any lookup of an entity that does not exist.
var ErrNotFound = errors.New("not found")

// Store is the durable source of truth for all gateway entities. Workers
// read-modify-write individual records through it; it provides durability,
// not locking.
type Store interface {
	CreateMerchant(ctx context.Context, m *domain.Merchant) error
	GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetMerchantByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error)

	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, merchantID uuid.UUID) ([]*domain.Order, error)

	CreatePayment(ctx context.Context, p *domain.Payment) error
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	UpdatePayment(ctx context.Context, p *domain.Payment) error
	ListPayments(ctx context.Context, merchantID uuid.UUID) ([]*domain.Payment, error)

	CreateRefund(ctx context.Context, r *domain.Refund) error
	GetRefund(ctx context.Context, id string) (*domain.Refund, error)
	UpdateRefund(ctx context.Context, r *domain.Refund) error
	// TotalRefunded sums the amounts of all refunds recorded against a
	// payment, pending ones included.
	TotalRefunded(ctx context.Context, paymentID string) (int64, error)

	CreateWebhookLog(ctx context.Context, w *domain.WebhookLog) error
	GetWebhookLog(ctx context.Context, id uuid.UUID) (*domain.WebhookLog, error)
	UpdateWebhookLog(ctx context.Context, w *domain.WebhookLog) error
	ListWebhookLogs(ctx context.Context, merchantID uuid.UUID) ([]*domain.WebhookLog, error)

	GetIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) (*domain.IdempotencyKey, error)
	PutIdempotencyKey(ctx context.Context, k *domain.IdempotencyKey) error
	DeleteIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) error
}
