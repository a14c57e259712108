package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{db: pool}, nil
}

func (s *Postgres) Close() {
	s.db.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS merchants (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	api_key TEXT NOT NULL UNIQUE,
	api_secret TEXT NOT NULL,
	webhook_url TEXT NOT NULL DEFAULT '',
	webhook_secret TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
	id VARCHAR(64) PRIMARY KEY,
	merchant_id UUID NOT NULL REFERENCES merchants(id),
	amount BIGINT NOT NULL,
	currency VARCHAR(3) NOT NULL,
	receipt TEXT NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS payments (
	id VARCHAR(64) PRIMARY KEY,
	order_id VARCHAR(64) NOT NULL REFERENCES orders(id),
	merchant_id UUID NOT NULL REFERENCES merchants(id),
	amount BIGINT NOT NULL,
	currency VARCHAR(3) NOT NULL,
	method VARCHAR(20) NOT NULL,
	vpa TEXT NOT NULL DEFAULT '',
	card_number VARCHAR(20) NOT NULL DEFAULT '',
	card_expiry VARCHAR(7) NOT NULL DEFAULT '',
	card_cvv VARCHAR(4) NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	captured BOOLEAN NOT NULL DEFAULT FALSE,
	error_code VARCHAR(50) NOT NULL DEFAULT '',
	error_description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS refunds (
	id VARCHAR(64) PRIMARY KEY,
	payment_id VARCHAR(64) NOT NULL REFERENCES payments(id),
	merchant_id UUID NOT NULL REFERENCES merchants(id),
	amount BIGINT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	status VARCHAR(20) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS webhook_logs (
	id UUID PRIMARY KEY,
	merchant_id UUID NOT NULL REFERENCES merchants(id),
	event VARCHAR(50) NOT NULL,
	payload JSONB NOT NULL,
	status VARCHAR(20) NOT NULL,
	attempts INTEGER NOT NULL DEFAULT 0,
	last_attempt_at TIMESTAMPTZ,
	next_retry_at TIMESTAMPTZ,
	response_code INTEGER NOT NULL DEFAULT 0,
	response_body TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS idempotency_keys (
	key VARCHAR(255) NOT NULL,
	merchant_id UUID NOT NULL REFERENCES merchants(id),
	response JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (key, merchant_id)
);
`

func (s *Postgres) CreateMerchant(ctx context.Context, m *domain.Merchant) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO merchants (id, name, email, api_key, api_secret, webhook_url, webhook_secret, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Name, m.Email, m.APIKey, m.APISecret, m.WebhookURL, m.WebhookSecret, m.CreatedAt)
	return err
}

const merchantCols = `id, name, email, api_key, api_secret, webhook_url, webhook_secret, created_at`

func (s *Postgres) scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.APIKey, &m.APISecret, &m.WebhookURL, &m.WebhookSecret, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Postgres) GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	return s.scanMerchant(s.db.QueryRow(ctx,
		`SELECT `+merchantCols+` FROM merchants WHERE id = $1`, id))
}

func (s *Postgres) GetMerchantByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error) {
	return s.scanMerchant(s.db.QueryRow(ctx,
		`SELECT `+merchantCols+` FROM merchants WHERE api_key = $1`, apiKey))
}

func (s *Postgres) CreateOrder(ctx context.Context, o *domain.Order) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO orders (id, merchant_id, amount, currency, receipt, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.MerchantID, o.Amount, o.Currency, o.Receipt, o.Status, o.CreatedAt)
	return err
}

func (s *Postgres) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRow(ctx,
		`SELECT id, merchant_id, amount, currency, receipt, status, created_at
		 FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.MerchantID, &o.Amount, &o.Currency, &o.Receipt, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Postgres) ListOrders(ctx context.Context, merchantID uuid.UUID) ([]*domain.Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, merchant_id, amount, currency, receipt, status, created_at
		 FROM orders WHERE merchant_id = $1 ORDER BY created_at DESC`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.MerchantID, &o.Amount, &o.Currency, &o.Receipt, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

const paymentCols = `id, order_id, merchant_id, amount, currency, method, vpa, card_number, card_expiry, card_cvv,
	status, captured, error_code, error_description, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.MerchantID, &p.Amount, &p.Currency, &p.Method, &p.VPA,
		&p.CardNumber, &p.CardExpiry, &p.CardCVV, &p.Status, &p.Captured,
		&p.ErrorCode, &p.ErrorDescription, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) CreatePayment(ctx context.Context, p *domain.Payment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO payments (`+paymentCols+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.OrderID, p.MerchantID, p.Amount, p.Currency, p.Method, p.VPA,
		p.CardNumber, p.CardExpiry, p.CardCVV, p.Status, p.Captured,
		p.ErrorCode, p.ErrorDescription, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Postgres) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return scanPayment(s.db.QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE id = $1`, id))
}

func (s *Postgres) UpdatePayment(ctx context.Context, p *domain.Payment) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE payments SET status = $2, captured = $3, error_code = $4, error_description = $5, updated_at = $6
		 WHERE id = $1`,
		p.ID, p.Status, p.Captured, p.ErrorCode, p.ErrorDescription, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListPayments(ctx context.Context, merchantID uuid.UUID) ([]*domain.Payment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+paymentCols+` FROM payments WHERE merchant_id = $1 ORDER BY created_at DESC`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) CreateRefund(ctx context.Context, r *domain.Refund) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO refunds (id, payment_id, merchant_id, amount, reason, status, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.PaymentID, r.MerchantID, r.Amount, r.Reason, r.Status, r.CreatedAt, r.ProcessedAt)
	return err
}

func (s *Postgres) GetRefund(ctx context.Context, id string) (*domain.Refund, error) {
	var r domain.Refund
	err := s.db.QueryRow(ctx,
		`SELECT id, payment_id, merchant_id, amount, reason, status, created_at, processed_at
		 FROM refunds WHERE id = $1`, id).
		Scan(&r.ID, &r.PaymentID, &r.MerchantID, &r.Amount, &r.Reason, &r.Status, &r.CreatedAt, &r.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Postgres) UpdateRefund(ctx context.Context, r *domain.Refund) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE refunds SET status = $2, processed_at = $3 WHERE id = $1`,
		r.ID, r.Status, r.ProcessedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) TotalRefunded(ctx context.Context, paymentID string) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM refunds WHERE payment_id = $1`, paymentID).
		Scan(&total)
	return total, err
}

const webhookCols = `id, merchant_id, event, payload, status, attempts, last_attempt_at, next_retry_at,
	response_code, response_body, created_at`

func scanWebhookLog(row pgx.Row) (*domain.WebhookLog, error) {
	var w domain.WebhookLog
	err := row.Scan(&w.ID, &w.MerchantID, &w.Event, &w.Payload, &w.Status, &w.Attempts,
		&w.LastAttemptAt, &w.NextRetryAt, &w.ResponseCode, &w.ResponseBody, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Postgres) CreateWebhookLog(ctx context.Context, w *domain.WebhookLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO webhook_logs (`+webhookCols+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		w.ID, w.MerchantID, w.Event, w.Payload, w.Status, w.Attempts,
		w.LastAttemptAt, w.NextRetryAt, w.ResponseCode, w.ResponseBody, w.CreatedAt)
	return err
}

func (s *Postgres) GetWebhookLog(ctx context.Context, id uuid.UUID) (*domain.WebhookLog, error) {
	return scanWebhookLog(s.db.QueryRow(ctx,
		`SELECT `+webhookCols+` FROM webhook_logs WHERE id = $1`, id))
}

func (s *Postgres) UpdateWebhookLog(ctx context.Context, w *domain.WebhookLog) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE webhook_logs SET status = $2, attempts = $3, last_attempt_at = $4, next_retry_at = $5,
		 response_code = $6, response_body = $7 WHERE id = $1`,
		w.ID, w.Status, w.Attempts, w.LastAttemptAt, w.NextRetryAt, w.ResponseCode, w.ResponseBody)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListWebhookLogs(ctx context.Context, merchantID uuid.UUID) ([]*domain.WebhookLog, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+webhookCols+` FROM webhook_logs WHERE merchant_id = $1 ORDER BY created_at DESC`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.WebhookLog
	for rows.Next() {
		w, err := scanWebhookLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Postgres) GetIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) (*domain.IdempotencyKey, error) {
	var k domain.IdempotencyKey
	err := s.db.QueryRow(ctx,
		`SELECT key, merchant_id, response, created_at, expires_at
		 FROM idempotency_keys WHERE merchant_id = $1 AND key = $2`, merchantID, key).
		Scan(&k.Key, &k.MerchantID, &k.Response, &k.CreatedAt, &k.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (s *Postgres) PutIdempotencyKey(ctx context.Context, k *domain.IdempotencyKey) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO idempotency_keys (key, merchant_id, response, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key, merchant_id) DO UPDATE SET response = $3, created_at = $4, expires_at = $5`,
		k.Key, k.MerchantID, k.Response, k.CreatedAt, k.ExpiresAt)
	return err
}

func (s *Postgres) DeleteIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE merchant_id = $1 AND key = $2`, merchantID, key)
	return err
}
