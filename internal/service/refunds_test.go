package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/validation"
)

// settledPayment creates a payment and moves it to success so refunds can
// run against it.
func (f *serviceFixture) settledPayment(t *testing.T, amount int64) *domain.Payment {
	t.Helper()
	ctx := context.Background()
	order := f.createOrder(t, amount)

	raw, err := f.payments.Create(ctx, f.merchant, validation.CreatePaymentRequest{
		OrderID: order.ID, Method: domain.MethodUPI, VPA: "a@upi",
	}, "")
	require.NoError(t, err)
	var created PaymentResponse
	require.NoError(t, json.Unmarshal(raw, &created))

	payment, err := f.store.GetPayment(ctx, created.ID)
	require.NoError(t, err)
	payment.Status = domain.PaymentStatusSuccess
	require.NoError(t, f.store.UpdatePayment(ctx, payment))

	// Drain the settlement job so queue assertions see only refund traffic.
	_, err = f.queue.Dequeue(ctx, queue.PaymentJobs, time.Second)
	require.NoError(t, err)
	return payment
}

func TestRefundsCreate(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.settledPayment(t, 1000)
	ctx := context.Background()

	resp, err := f.refunds.Create(ctx, f.merchant, payment.ID, validation.CreateRefundRequest{
		Amount: 400,
		Reason: "customer request",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^rfnd_[0-9A-Za-z]{16}$`, resp.ID)
	assert.Equal(t, domain.RefundStatusPending, resp.Status)
	assert.Equal(t, int64(400), resp.Amount)

	body, err := f.queue.Dequeue(ctx, queue.RefundJobs, time.Second)
	require.NoError(t, err)
	var job queue.RefundJob
	require.NoError(t, json.Unmarshal(body, &job))
	assert.Equal(t, resp.ID, job.RefundID)
}

func TestRefundsCreateRejectsOverRefund(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.settledPayment(t, 1000)
	ctx := context.Background()

	_, err := f.refunds.Create(ctx, f.merchant, payment.ID, validation.CreateRefundRequest{Amount: 600})
	require.NoError(t, err)

	// 600 already reserved while pending; another 600 would exceed 1000.
	_, err = f.refunds.Create(ctx, f.merchant, payment.ID, validation.CreateRefundRequest{Amount: 600})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "BAD_REQUEST_ERROR", svcErr.Code)

	// The remainder is still refundable.
	_, err = f.refunds.Create(ctx, f.merchant, payment.ID, validation.CreateRefundRequest{Amount: 400})
	require.NoError(t, err)

	_, err = f.refunds.Create(ctx, f.merchant, payment.ID, validation.CreateRefundRequest{Amount: 1})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "BAD_REQUEST_ERROR", svcErr.Code)
}

func TestRefundsCreateRejectsUnsettledPayment(t *testing.T) {
	f := newServiceFixture(t)
	order := f.createOrder(t, 1000)
	ctx := context.Background()

	raw, err := f.payments.Create(ctx, f.merchant, validation.CreatePaymentRequest{
		OrderID: order.ID, Method: domain.MethodUPI, VPA: "a@upi",
	}, "")
	require.NoError(t, err)
	var created PaymentResponse
	require.NoError(t, json.Unmarshal(raw, &created))

	_, err = f.refunds.Create(ctx, f.merchant, created.ID, validation.CreateRefundRequest{Amount: 100})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "BAD_REQUEST_ERROR", svcErr.Code)

	// The rejected request left nothing behind.
	n, err := f.queue.Pending(ctx, queue.RefundJobs)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefundsGetOwnership(t *testing.T) {
	f := newServiceFixture(t)
	payment := f.settledPayment(t, 1000)
	ctx := context.Background()

	resp, err := f.refunds.Create(ctx, f.merchant, payment.ID, validation.CreateRefundRequest{Amount: 100})
	require.NoError(t, err)

	got, err := f.refunds.Get(ctx, f.merchant, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	other := newServiceFixture(t).merchant
	_, err = f.refunds.Get(ctx, other, resp.ID)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "NOT_FOUND_ERROR", svcErr.Code)
}
