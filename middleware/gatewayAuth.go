package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"bengkelbot/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GatewayAuthMiddleware authenticates requests with the shared gateway token.
// The token is accepted either as a bearer token or in X-Gateway-Token.
func GatewayAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.AppConfig.GatewayToken
		if expected == "" {
			zap.L().Warn("gateway token not configured, rejecting request")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "gateway auth not configured"})
			return
		}

		token := c.GetHeader("X-Gateway-Token")
		if token == "" {
			auth := c.GetHeader("Authorization")
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			zap.L().Warn("gateway auth failed", zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid gateway token"})
			return
		}
		c.Next()
	}
}
