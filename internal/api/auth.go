package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/domain"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
)

const merchantContextKey = "merchant"

// APIKeyAuth authenticates requests by the X-Api-Key header and stores the
// merchant on the request context.
func APIKeyAuth(s store.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Api-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":        "AUTHENTICATION_ERROR",
					"description": "API key is missing",
				},
			})
			return
		}
		merchant, err := s.GetMerchantByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Error("merchant lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":        "AUTHENTICATION_ERROR",
					"description": "Invalid API key",
				},
			})
			return
		}
		c.Set(merchantContextKey, merchant)
		c.Next()
	}
}

func currentMerchant(c *gin.Context) *domain.Merchant {
	return c.MustGet(merchantContextKey).(*domain.Merchant)
}
