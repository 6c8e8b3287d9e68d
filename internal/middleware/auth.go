package middleware

import (
	"caption_contest/internal/utils" // JWT utility functions
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// TokenAuthMiddleware validates signed tokens and attaches the authenticated
// identity to the request context. The token is read from the authorization
// header as-is, without a "Bearer " prefix. A missing header fails with 401;
// a token that does not verify fails with 400 — both are literal contracts
// of the API.
func TokenAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("authorization") // Get authorization header
		// Check if the token is present
		if token == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token not provided. Access denied."})
			return
		}
		claims, err := utils.ParseJWT(token, secret) // Verify signature and expiry
		if err != nil {
			// Log the verification failure, never its details to the client
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Warn("Authorization error")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Token invalid."})
			return
		}
		c.Set("userID", claims.UserID)   // Store userID in context
		c.Set("userEmail", claims.Email) // Store email in context
		c.Next()                         // Proceed to the next handler
	}
}
