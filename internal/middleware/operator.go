package middleware

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/fundraising_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// RequireOperator admits only authenticated callers whose address is listed.
// It must run after AuthMiddleware. Unparseable entries are ignored.
func RequireOperator(operators []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(operators))
	for _, raw := range operators {
		if address, ok := utils.NormalizeAddress(raw); ok {
			allowed[address] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)

		caller, ok := GetCallerAddressFromContext(c)
		if !ok {
			logger.Warn("Operator route reached without an authenticated caller")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if _, ok := allowed[caller]; !ok {
			logger.Warn("Caller is not an operator", slog.String("caller_address", caller))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator access required"})
			return
		}
		c.Next()
	}
}
