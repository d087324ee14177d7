package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"market-chat-service/internal/auth"
)

// AccountIDKey is the context key the middleware stores the caller identity under.
const AccountIDKey = "accountID"

// AuthMiddleware validates the Authorization header through the identity verifier.
func AuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		accountID, err := verifier.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(AccountIDKey, accountID)
		c.Next()
	}
}
