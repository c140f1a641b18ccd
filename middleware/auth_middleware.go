package middleware

import (
	"errors"
	"net/http"

	"tasktracker/utils/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid bearer token, from the Authorization
// header or the token query parameter. The token subject is stored under
// "subject" in the context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := token.ExtractAndValidateToken(c, secret)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrAuthHeaderMissing), errors.Is(err, token.ErrInvalidAuthFormat):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": token.ErrInvalidToken.Error()})
			}
			return
		}

		c.Set("subject", claims.Subject)

		c.Next()
	}
}
