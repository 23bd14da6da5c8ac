package middleware

import (
	"github.com/gin-gonic/gin"

	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/interfaces/http/response"
)

// RequireAuth rejects API calls without a resolved identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			response.AbortWithError(c, domainerrors.Unauthenticated("Sign in to continue."))
			return
		}
		c.Next()
	}
}
