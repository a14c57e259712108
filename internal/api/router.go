package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

// NewRouter wires the REST surface. Everything under /api/v1 requires a
// merchant API key; /healthz and /metrics are open.
func NewRouter(h *Handlers, st store.Store, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.Use(APIKeyAuth(st, logger))
	{
		v1.POST("/orders", h.CreateOrder)
		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/:id", h.GetOrder)

		v1.POST("/payments", h.CreatePayment)
		v1.GET("/payments", h.ListPayments)
		v1.GET("/payments/:id", h.GetPayment)
		v1.POST("/payments/:id/capture", h.CapturePayment)
		v1.POST("/payments/:id/refunds", h.CreateRefund)

		v1.GET("/refunds/:id", h.GetRefund)

		v1.GET("/webhooks", h.ListWebhooks)
		v1.POST("/webhooks/:id/retry", h.RetryWebhook)

		v1.GET("/jobs/status", h.JobStatus)
	}
	return r
}
