package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
)

// Memory is a mutex-guarded in-memory Store. It is the default backend in
// dev mode and the backend the test suite runs against. All getters return
// copies so callers never share mutable state with the store.
type Memory struct {
	mu          sync.RWMutex
	merchants   map[uuid.UUID]*domain.Merchant
	orders      map[string]*domain.Order
	payments    map[string]*domain.Payment
	refunds     map[string]*domain.Refund
	webhookLogs map[uuid.UUID]*domain.WebhookLog
	idempotency map[idempKey]*domain.IdempotencyKey
}

type idempKey struct {
	merchantID uuid.UUID
	key        string
}

func NewMemory() *Memory {
	return &Memory{
		merchants:   make(map[uuid.UUID]*domain.Merchant),
		orders:      make(map[string]*domain.Order),
		payments:    make(map[string]*domain.Payment),
		refunds:     make(map[string]*domain.Refund),
		webhookLogs: make(map[uuid.UUID]*domain.WebhookLog),
		idempotency: make(map[idempKey]*domain.IdempotencyKey),
	}
}

func (s *Memory) CreateMerchant(_ context.Context, m *domain.Merchant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.merchants[m.ID] = &cp
	return nil
}

func (s *Memory) GetMerchant(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.merchants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Memory) GetMerchantByAPIKey(_ context.Context, apiKey string) (*domain.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.merchants {
		if m.APIKey == apiKey {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) CreateOrder(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *Memory) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *Memory) ListOrders(_ context.Context, merchantID uuid.UUID) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Order
	for _, o := range s.orders {
		if o.MerchantID == merchantID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) CreatePayment(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *Memory) GetPayment(_ context.Context, id string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Memory) UpdatePayment(_ context.Context, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *Memory) ListPayments(_ context.Context, merchantID uuid.UUID) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range s.payments {
		if p.MerchantID == merchantID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) CreateRefund(_ context.Context, r *domain.Refund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.refunds[r.ID] = &cp
	return nil
}

func (s *Memory) GetRefund(_ context.Context, id string) (*domain.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.refunds[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Memory) UpdateRefund(_ context.Context, r *domain.Refund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refunds[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	s.refunds[r.ID] = &cp
	return nil
}

func (s *Memory) TotalRefunded(_ context.Context, paymentID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, r := range s.refunds {
		if r.PaymentID == paymentID {
			total += r.Amount
		}
	}
	return total, nil
}

func (s *Memory) CreateWebhookLog(_ context.Context, w *domain.WebhookLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.webhookLogs[w.ID] = &cp
	return nil
}

func (s *Memory) GetWebhookLog(_ context.Context, id uuid.UUID) (*domain.WebhookLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.webhookLogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *Memory) UpdateWebhookLog(_ context.Context, w *domain.WebhookLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.webhookLogs[w.ID]; !ok {
		return ErrNotFound
	}
	cp := *w
	s.webhookLogs[w.ID] = &cp
	return nil
}

func (s *Memory) ListWebhookLogs(_ context.Context, merchantID uuid.UUID) ([]*domain.WebhookLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.WebhookLog
	for _, w := range s.webhookLogs {
		if w.MerchantID == merchantID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) GetIdempotencyKey(_ context.Context, merchantID uuid.UUID, key string) (*domain.IdempotencyKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.idempotency[idempKey{merchantID, key}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (s *Memory) PutIdempotencyKey(_ context.Context, k *domain.IdempotencyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *k
	s.idempotency[idempKey{k.MerchantID, k.Key}] = &cp
	return nil
}

func (s *Memory) DeleteIdempotencyKey(_ context.Context, merchantID uuid.UUID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.idempotency, idempKey{merchantID, key})
	return nil
}
