package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/service"
	"github.com/imrishuroy/go-payment-gateway/internal/validation"
)

// Handlers groups the services behind the REST API.
type Handlers struct {
	Orders   *service.Orders
	Payments *service.Payments
	Refunds  *service.Refunds
	Webhooks *service.Webhooks
	Logger   *zap.Logger

	validate *validatorv10.Validate
}

func NewHandlers(orders *service.Orders, payments *service.Payments, refunds *service.Refunds, webhooks *service.Webhooks, logger *zap.Logger) *Handlers {
	return &Handlers{
		Orders:   orders,
		Payments: payments,
		Refunds:  refunds,
		Webhooks: webhooks,
		Logger:   logger,
		validate: validation.New(),
	}
}

// writeError maps service errors to the gateway error envelope; anything
// unexpected becomes an opaque 500.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.Status, gin.H{
			"error": gin.H{
				"code":        svcErr.Code,
				"description": svcErr.Description,
			},
		})
		return
	}
	h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":        "SERVER_ERROR",
			"description": "Internal server error",
		},
	})
}

func (h *Handlers) CreateOrder(c *gin.Context) {
	var req validation.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	resp, err := h.Orders.Create(c.Request.Context(), currentMerchant(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handlers) GetOrder(c *gin.Context) {
	resp, err := h.Orders.Get(c.Request.Context(), currentMerchant(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) ListOrders(c *gin.Context) {
	resp, err := h.Orders.List(c.Request.Context(), currentMerchant(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(resp), "items": resp})
}

func (h *Handlers) CreatePayment(c *gin.Context) {
	var req validation.CreatePaymentRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	response, err := h.Payments.Create(c.Request.Context(), currentMerchant(c), req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	// The serialized response is written verbatim so idempotent replays are
	// byte-identical to the first response.
	c.Data(http.StatusCreated, "application/json", response)
}

func (h *Handlers) GetPayment(c *gin.Context) {
	resp, err := h.Payments.Get(c.Request.Context(), currentMerchant(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) ListPayments(c *gin.Context) {
	resp, err := h.Payments.List(c.Request.Context(), currentMerchant(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(resp), "items": resp})
}

func (h *Handlers) CapturePayment(c *gin.Context) {
	resp, err := h.Payments.Capture(c.Request.Context(), currentMerchant(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) CreateRefund(c *gin.Context) {
	var req validation.CreateRefundRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}
	resp, err := h.Refunds.Create(c.Request.Context(), currentMerchant(c), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handlers) GetRefund(c *gin.Context) {
	resp, err := h.Refunds.Get(c.Request.Context(), currentMerchant(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) ListWebhooks(c *gin.Context) {
	resp, err := h.Webhooks.List(c.Request.Context(), currentMerchant(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(resp), "items": resp})
}

func (h *Handlers) RetryWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":        "NOT_FOUND_ERROR",
				"description": "Webhook not found",
			},
		})
		return
	}
	resp, err := h.Webhooks.Retry(c.Request.Context(), currentMerchant(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) JobStatus(c *gin.Context) {
	resp, err := h.Webhooks.JobStatus(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
